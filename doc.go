// Package xalock 提供保护单个值的异步互斥锁。
//
// 与 sync.Mutex 不同，Lock 把受保护的值和锁本身绑定在一起，
// 只有持有 Guard 才能访问值；阻塞式获取（Acquire）支持 context
// 超时和取消，等待时只挂起当前 goroutine，不占用额外资源。
//
// # 与 sync.Mutex / xkit xkeylock 的区别
//
//	特性          xalock                sync.Mutex         xkeylock
//	─────────────────────────────────────────────────────────────────
//	保护对象      单个值（泛型 T）       调用方自律          按 key 互斥
//	Context       ✓ Acquire 支持        ✗                  ✓
//	TryAcquire    ✓ 返回 nil 表示占用   ✓ TryLock          ✓
//	公平性        最终公平（0.5ms 升级） 饥饿模式（1ms）     FIFO（channel）
//	句柄语义      Guard 可跨 goroutine  锁定者需同 goroutine 解锁  Handle
//
// # 特性
//
//   - 值语义句柄：Lock 本身只是共享状态的引用，直接复制或 Clone 均
//     得到指向同一把锁的新引用，可自由分发给任意多个 goroutine
//   - Guard 独立生存期：Guard 持有自己的锁引用，可以移入其他
//     goroutine，在产生它的 Lock 变量离开作用域后继续有效
//   - 最终公平：乐观重试获取在持续竞争下可能饿死早到的等待者，
//     等待超过阈值（默认 0.5ms）后升级为公平交接——释放时锁被
//     直接让渡给队首等待者，新到请求无法插队
//   - Unlock 幂等：首次返回 nil，后续返回 [ErrLockNotHeld]
//   - 非阻塞诊断：String/LogValue 使用非阻塞探测，锁被占用时渲染
//     固定哨兵 "<locked>"，自省永不挂起、永不死锁
//   - 无毒化（no poisoning）：临界区 panic 时 defer 的 Unlock 照常
//     执行，锁保持可用，值停留在中断时的状态
//
// # 快速开始
//
//	l, err := xalock.New(0)
//	if err != nil {
//	    return err
//	}
//
//	g, err := l.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer g.Unlock()
//
//	*g.Value()++
//
// 典型的多 goroutine 计数：
//
//	l, _ := xalock.New(0)
//	var eg errgroup.Group
//	for range 10 {
//	    eg.Go(func() error {
//	        g, err := l.Acquire(ctx)
//	        if err != nil {
//	            return err
//	        }
//	        defer g.Unlock()
//	        *g.Value()++
//	        return nil
//	    })
//	}
//	_ = eg.Wait() // *g.Value() == 10
//
// # 获取协议
//
// Acquire 的等待循环顺序是承重结构，不可简化：
//
//  1. 尝试原子抢占（CAS 置位持有标志）
//  2. 失败则先向通知原语注册为等待者
//  3. 注册完成后再次尝试抢占（封堵第 1、2 步之间的释放窗口）
//  4. 仍失败才挂起，被唤醒后回到第 1 步
//
// 先注册后复查保证了任何落在两次检查之间的释放通知都能到达本
// 等待者，不存在丢失唤醒。
//
// # 公平性
//
// 纯乐观重试在持续竞争下不公平：新到请求可以反复赢得 CAS，饿死
// 更早的等待者。xalock 跟踪每个等待者的累计等待时长，超过
// [DefaultStarvationThreshold]（可用 [WithStarvationThreshold] 调整）
// 后登记为饥饿等待者。只要存在饥饿等待者，TryAcquire 与新到的
// Acquire 都无法抢占，释放的锁按 FIFO 顺序交接给饥饿队列头部。
// 升级后的保证：任何晚于升级时刻到达的请求都不会先于该等待者获得锁。
//
// 闸门关闭期间被唤醒的乐观等待者无法抢占，它会把消费掉的通知
// 转发给下一个等待者并自己加入饥饿队列——交接链在任何交错下
// 都不会因通知被吞掉而断裂。
//
// # 取消语义
//
// 等待中的 Acquire 被 ctx 取消时返回 ctx.Err()，并干净注销：
// 若唤醒通知已经送达该等待者，通知会被转发给下一个存活等待者，
// 取消不会吞掉交接。
//
// 设计决策: 锁是非可重入的，与 sync.Mutex 一致。同一 goroutine
// 持有 Guard 期间再次 Acquire 会死锁（除非 ctx 带 deadline），
// 由调用方负责避免。
package xalock
