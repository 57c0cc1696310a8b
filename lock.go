package xalock

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/omeyang/xalock/internal/event"
)

// state 布局：bit0 为持有标志，state>>1 为饥饿等待者计数。
// 持有标志的迁移只有 false→true（获取）和 true→false（释放），
// 均为原子操作；饥饿计数非零时 CompareAndSwap(0, heldBit) 必然
// 失败，这就是公平交接的闸门——新到请求无法插队。
const heldBit uint64 = 1

// lockedSentinel 诊断探测在锁被占用时渲染的哨兵。
const lockedSentinel = "<locked>"

// Lock 是保护单个值的异步互斥锁句柄。
//
// Lock 是值类型的共享引用：直接复制或 Clone 得到指向同一把锁的
// 新引用，而不是值的拷贝。零值不可用，必须通过 [New] 创建。
// 所有方法都是并发安全的。
type Lock[T any] struct {
	inner *inner[T]
}

// inner 是所有句柄与 Guard 共同持有的共享状态块。
// 生命周期由 GC 管理（原实现中的引用计数由此承担）。
type inner[T any] struct {
	state   atomic.Uint64
	waiters *event.Event
	opts    options
	metrics *Metrics
	value   T
}

// New 创建一把新锁，初始未持有，保护 value。
// 配置无效时返回错误（如非正的饥饿阈值）。
func New[T any](value T, opts ...Option) (Lock[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := o.validate(); err != nil {
		return Lock[T]{}, err
	}
	m, err := NewMetrics(o.meterProvider)
	if err != nil {
		return Lock[T]{}, err
	}
	return Lock[T]{inner: &inner[T]{
		waiters: event.New(),
		opts:    o,
		metrics: m,
		value:   value,
	}}, nil
}

// Clone 返回指向同一把锁的新引用。
// 永不阻塞、永不失败；与直接复制 Lock 值等价，保留此方法是为了
// 在调用处显式表达"共享同一把锁"的意图。
func (l Lock[T]) Clone() Lock[T] {
	return l
}

// TryAcquire 非阻塞获取锁。
// 成功返回 Guard；锁被占用或存在饥饿等待者时返回 nil。
// 占用以空结果而非错误表达，永不挂起。
func (l Lock[T]) TryAcquire() *Guard[T] {
	if !l.inner.state.CompareAndSwap(0, heldBit) {
		return nil
	}
	return l.grant(context.Background(), false, false, 0)
}

// Acquire 阻塞式获取锁，成功后返回 Guard。
// 支持 ctx 超时/取消，取消时返回 ctx.Err() 并干净注销等待。
// ctx 不得为 nil，否则 panic。
//
// 等待循环的顺序（尝试→注册→复查→挂起）是无丢失唤醒的前提，
// 详见包文档"获取协议"。
func (l Lock[T]) Acquire(ctx context.Context) (*Guard[T], error) {
	if ctx == nil {
		panic("xalock: nil Context")
	}
	// 快速检查：ctx 已取消时不参与竞争。
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.inner.state.CompareAndSwap(0, heldBit) {
		return l.grant(ctx, false, false, 0), nil
	}
	return l.acquireSlow(ctx)
}

// acquireSlow 是竞争路径：乐观重试，等待超过阈值后升级为饥饿
// 等待者，走公平交接。
func (l Lock[T]) acquireSlow(ctx context.Context) (*Guard[T], error) {
	in := l.inner
	start := time.Now()

	// 乐观阶段。
	for {
		// 注册必须先于复查：保证两次检查之间发生的释放通知
		// 仍能到达本等待者。
		w := in.waiters.Listen()
		if in.state.CompareAndSwap(0, heldBit) {
			w.Cancel()
			return l.grant(ctx, true, false, time.Since(start)), nil
		}
		// 闸门已关闭（存在饥饿等待者）时乐观重试不可能成功，
		// 不再挂起，直接加入饥饿队列。Cancel 会转发已送达的通知。
		if in.state.Load()>>1 != 0 {
			w.Cancel()
			break
		}
		select {
		case <-w.Ready():
		case <-ctx.Done():
			w.Cancel()
			return nil, ctx.Err()
		}
		// 唤醒后先判定饥饿再重试：等待已超阈值的请求改走公平
		// 交接，不再参与开放竞争（锁空闲时在饥饿阶段立即取得）。
		if time.Since(start) >= in.opts.starvationThreshold {
			break
		}
		if in.state.CompareAndSwap(0, heldBit) {
			return l.grant(ctx, true, false, time.Since(start)), nil
		}
		// CAS 因闸门失败时，刚消费掉的通知本属于某个饥饿等待者：
		// 必须转发，否则唤醒被吞掉，交接链断裂（锁空闲却无人再发
		// 通知）。转发后本等待者同样加入饥饿队列，不再重新注册。
		if in.state.Load()>>1 != 0 {
			in.waiters.NotifyOne()
			break
		}
	}

	// 饥饿阶段：登记饥饿计数关闭抢占闸门，按 FIFO 唤醒顺序交接。
	in.escalate(ctx, time.Since(start))
	for {
		if s := in.state.Load(); s&heldBit == 0 {
			// 取锁与注销饥饿计数一步完成。
			if in.state.CompareAndSwap(s, (s-2)|heldBit) {
				return l.grant(ctx, true, true, time.Since(start)), nil
			}
			continue
		}
		w := in.waiters.Listen()
		// 注册后复查，封堵 Load 与 Listen 之间的释放窗口。
		if s := in.state.Load(); s&heldBit == 0 {
			if in.state.CompareAndSwap(s, (s-2)|heldBit) {
				w.Cancel()
				return l.grant(ctx, true, true, time.Since(start)), nil
			}
			w.Cancel()
			continue
		}
		select {
		case <-w.Ready():
		case <-ctx.Done():
			// 注销饥饿计数并转发可能已送达的唤醒，
			// 指定接收者被取消时交接必须重新指派。
			in.state.Add(^uint64(1)) // -2
			w.Cancel()
			return nil, ctx.Err()
		}
	}
}

// escalate 登记一个饥饿等待者并记录慢路径观测信号。
func (in *inner[T]) escalate(ctx context.Context, waited time.Duration) {
	in.state.Add(2)
	in.metrics.RecordStarvation(ctx)
	addStarvationEvent(ctx, waited, in.opts.starvationThreshold)
	if in.opts.logger != nil {
		in.opts.logger.LogAttrs(ctx, slog.LevelDebug,
			"xalock: acquire starved, switching to fair handoff",
			slog.Duration(attrKeyWaited, waited),
			slog.Duration(attrKeyThreshold, in.opts.starvationThreshold))
	}
}

// grant 构造 Guard 并记录获取指标。
func (l Lock[T]) grant(ctx context.Context, contended, starved bool, wait time.Duration) *Guard[T] {
	in := l.inner
	in.metrics.RecordAcquire(ctx, contended, starved, wait)
	g := &Guard[T]{lock: l}
	if in.metrics != nil {
		// 仅在启用指标时取时间戳，避免快路径上的时钟调用。
		g.acquiredAt = time.Now()
	}
	return g
}

// release 清除持有标志（release 语义：临界区内的写对下一个获取者
// 可见）并唤醒一个等待者；无等待者时唤醒为空操作。
func (in *inner[T]) release() {
	in.state.Add(^uint64(0)) // -1：bit0 由 1 变 0，饥饿计数不变
	in.waiters.NotifyOne()
}

// String 非阻塞渲染锁的当前状态：未持有时渲染受保护的值，
// 被占用（或存在待交接的饥饿等待者）时渲染哨兵。
// 永不挂起，自检不会死锁——值的 String 方法若再探测本锁，
// 只会得到哨兵。
func (l Lock[T]) String() string {
	in := l.inner
	// 裸探测绕过 Guard 与指标，不计入获取统计。
	if !in.state.CompareAndSwap(0, heldBit) {
		return "Lock(" + lockedSentinel + ")"
	}
	s := fmt.Sprintf("Lock(%v)", in.value)
	in.release()
	return s
}

// LogValue 实现 slog.LogValuer，使用与 String 相同的非阻塞探测。
// 值在持有探测锁期间格式化为字符串，避免 handler 异步解析时
// 越过临界区读取。
func (l Lock[T]) LogValue() slog.Value {
	in := l.inner
	if !in.state.CompareAndSwap(0, heldBit) {
		return slog.GroupValue(slog.Bool(attrKeyHeld, true))
	}
	v := fmt.Sprintf("%v", in.value)
	in.release()
	return slog.GroupValue(
		slog.Bool(attrKeyHeld, false),
		slog.String(attrKeyValue, v),
	)
}

// 编译期接口检查。
var (
	_ fmt.Stringer   = Lock[int]{}
	_ slog.LogValuer = Lock[int]{}
)
