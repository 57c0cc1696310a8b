package xalock

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Guard 表示一次成功的锁获取，是访问受保护值的唯一入口。
// 同一时刻每把锁至多存在一个存活的 Guard。
//
// Guard 持有自己的锁引用：可以移入其他 goroutine，在产生它的
// Lock 变量离开作用域后继续有效。
// Unlock 是幂等的：第一次调用释放锁并返回 nil，后续调用返回
// [ErrLockNotHeld]。
type Guard[T any] struct {
	lock       Lock[T]
	acquiredAt time.Time // 仅在启用指标时设置
	released   atomic.Bool
}

// Value 返回受保护值的指针，读写均通过它进行。
// 仅在 Guard 存活期间有效；Unlock 之后调用会 panic。
//
// 安全性论证（唯一的访问点，一次说清）：value 只通过存活的 Guard
// 读写，而持有标志的 false→true 迁移由构造该 Guard 的获取独占，
// release 语义的清除保证临界区内的写对下一个获取者可见，因此
// 对 value 的访问天然互斥且有序，无需额外同步。
// 调用方不得在 Unlock 之后继续使用先前取得的指针。
func (g *Guard[T]) Value() *T {
	if g.released.Load() {
		panic("xalock: guard already released")
	}
	return &g.lock.inner.value
}

// Source 返回产生此 Guard 的锁的引用。
// 便于在不透传原句柄的情况下再次共享或重新获取；
// Unlock 之后调用仍返回有效引用。
func (g *Guard[T]) Source() Lock[T] {
	return g.lock
}

// Unlock 释放锁：清除持有标志并唤醒一个等待者。
// 幂等：第一次调用返回 nil，后续调用返回 [ErrLockNotHeld]。
//
// 临界区内代码 panic 时，defer 的 Unlock 在栈展开期间照常执行，
// 锁保持可用；值停留在中断时的状态，不做毒化标记。
func (g *Guard[T]) Unlock() error {
	if !g.released.CompareAndSwap(false, true) {
		return ErrLockNotHeld
	}
	in := g.lock.inner
	if in.metrics != nil {
		in.metrics.RecordRelease(context.Background(), time.Since(g.acquiredAt))
	}
	in.release()
	return nil
}

// String 渲染受保护的值；Guard 已释放时渲染固定哨兵。
func (g *Guard[T]) String() string {
	if g.released.Load() {
		return "Guard(<released>)"
	}
	return fmt.Sprintf("%v", g.lock.inner.value)
}

var _ fmt.Stringer = (*Guard[int])(nil)
