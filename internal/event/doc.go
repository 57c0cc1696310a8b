// Package event 提供等待者注册/单播唤醒的通知原语。
//
// Event 维护一个 FIFO 等待者队列：Listen 注册并返回 Waiter，
// NotifyOne 唤醒队首等待者（无等待者时为空操作，通知不被暂存——
// 先 NotifyOne 后 Listen 不会唤醒后来者）。
//
// 无丢失唤醒保证：Listen 返回之后发出的 NotifyOne 一定能到达该
// 等待者——唤醒通过关闭 channel 送达，即使等待者尚未开始接收。
//
// Cancel 注销等待者；若通知已经送达但尚未被消费，Cancel 会把它
// 转发给下一个等待者，取消不会吞掉唤醒。
//
// 内部队列由短临界区的 sync.Mutex 保护，锁永不跨越挂起点持有。
package event
