package xalock

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Trace 相关常量
// =============================================================================

// eventNameStarved 饥饿升级的 span 事件名称
const eventNameStarved = "xalock.starved"

// Span 事件属性名称（Metrics 也复用这些常量，确保 trace 与 metrics 键名一致）
const (
	attrContended = "xalock.contended"
	attrStarved   = "xalock.starved"
	attrWaited    = "xalock.waited_seconds"
	attrThreshold = "xalock.threshold_seconds"
)

// addStarvationEvent 在调用方当前 span 上记录饥饿升级事件。
//
// 设计决策: 不为锁操作创建独立 span——获取通常在微秒级完成，
// 逐操作建 span 的开销远超其价值。只有罕见的慢路径（饥饿升级）
// 值得在既有 trace 上留下标记。
func addStarvationEvent(ctx context.Context, waited, threshold time.Duration) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(eventNameStarved, trace.WithAttributes(
		attribute.Float64(attrWaited, waited.Seconds()),
		attribute.Float64(attrThreshold, threshold.Seconds()),
	))
}
