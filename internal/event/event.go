package event

import (
	"container/list"
	"sync"
)

// Event 是等待者注册表。零值不可用，必须通过 New 创建。
type Event struct {
	mu      sync.Mutex
	waiters list.List // 元素为 *Waiter，FIFO
}

// Waiter 表示一次等待注册。
// 每个 Waiter 只能被唤醒一次；消费唤醒后应重新 Listen。
type Waiter struct {
	ev       *Event
	ch       chan struct{}
	elem     *list.Element // 出队后置 nil
	notified bool
}

// New 创建一个新的 Event。
func New() *Event {
	return &Event{}
}

// Listen 注册为等待者，返回的 Waiter 位于队尾。
func (e *Event) Listen() *Waiter {
	w := &Waiter{ev: e, ch: make(chan struct{})}
	e.mu.Lock()
	w.elem = e.waiters.PushBack(w)
	e.mu.Unlock()
	return w
}

// NotifyOne 唤醒队首等待者。无等待者时为空操作，通知不暂存。
func (e *Event) NotifyOne() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifyOneLocked()
}

// Len 返回当前注册的等待者数量，仅用于诊断和测试。
func (e *Event) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.waiters.Len()
}

func (e *Event) notifyOneLocked() {
	front := e.waiters.Front()
	if front == nil {
		return
	}
	w := front.Value.(*Waiter)
	e.waiters.Remove(front)
	w.elem = nil
	w.notified = true
	close(w.ch)
}

// Ready 返回唤醒信号 channel。通知送达时该 channel 被关闭，
// 可与 ctx.Done() 一起 select。
func (w *Waiter) Ready() <-chan struct{} {
	return w.ch
}

// Cancel 注销等待者。
// 尚未被唤醒时直接出队；若通知已经送达但调用方未消费（竞态中
// 取消或在等待前已通过其他途径成功），通知被转发给下一个等待者。
// Cancel 最多调用一次，消费过唤醒的 Waiter 不应再 Cancel。
func (w *Waiter) Cancel() {
	e := w.ev
	e.mu.Lock()
	defer e.mu.Unlock()

	if w.elem != nil {
		e.waiters.Remove(w.elem)
		w.elem = nil
		return
	}
	if w.notified {
		w.notified = false
		e.notifyOneLocked()
	}
}
