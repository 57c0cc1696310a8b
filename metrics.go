package xalock

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// 设计决策: 指标前缀使用 "xalock.*"，与 OTel Meter scope name 保持
// 一致（Meter("xalock")）。如需统一命名空间，应在采集端处理。
const (
	// metricNameAcquireTotal 获取锁次数计数器
	metricNameAcquireTotal = "xalock.acquire.total"
	// metricNameAcquireDuration 竞争路径获取耗时直方图
	metricNameAcquireDuration = "xalock.acquire.duration"
	// metricNameStarvationTotal 饥饿升级次数计数器
	metricNameStarvationTotal = "xalock.starvation.total"
	// metricNameReleaseTotal 释放次数计数器
	metricNameReleaseTotal = "xalock.release.total"
	// metricNameHoldDuration 持锁时长直方图
	metricNameHoldDuration = "xalock.hold.duration"
)

const (
	// meterName OTel Meter scope 名称
	meterName = "xalock"
	// instrumentationVersion 仪表化版本号
	instrumentationVersion = "1.0.0"
)

// durationBuckets 耗时直方图的桶边界。
// 锁操作以微秒计，桶从 1µs 起。
var durationBuckets = []float64{
	0.000001, 0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.1, 1.0,
}

// Metrics 锁指标收集器。
// 所有 Record* 方法对 nil 接收者安全（不收集指标时为空操作）。
type Metrics struct {
	meter           metric.Meter
	acquireTotal    metric.Int64Counter
	acquireDuration metric.Float64Histogram
	starvationTotal metric.Int64Counter
	releaseTotal    metric.Int64Counter
	holdDuration    metric.Float64Histogram
}

// NewMetrics 创建指标收集器。
// 如果 meterProvider 为 nil，返回 nil（不收集指标）。
func NewMetrics(meterProvider metric.MeterProvider) (*Metrics, error) {
	if meterProvider == nil {
		return nil, nil
	}

	m := &Metrics{}
	m.meter = meterProvider.Meter(meterName,
		metric.WithInstrumentationVersion(instrumentationVersion),
	)

	var err error
	if m.acquireTotal, err = m.meter.Int64Counter(metricNameAcquireTotal,
		metric.WithDescription("锁获取次数"), metric.WithUnit("{acquire}")); err != nil {
		return nil, err
	}
	if m.starvationTotal, err = m.meter.Int64Counter(metricNameStarvationTotal,
		metric.WithDescription("等待者升级为公平交接的次数"), metric.WithUnit("{escalation}")); err != nil {
		return nil, err
	}
	if m.releaseTotal, err = m.meter.Int64Counter(metricNameReleaseTotal,
		metric.WithDescription("锁释放次数"), metric.WithUnit("{release}")); err != nil {
		return nil, err
	}
	if m.acquireDuration, err = m.meter.Float64Histogram(metricNameAcquireDuration,
		metric.WithDescription("竞争路径的获取等待耗时"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, err
	}
	if m.holdDuration, err = m.meter.Float64Histogram(metricNameHoldDuration,
		metric.WithDescription("持锁时长"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordAcquire 记录一次成功获取。
// contended 表示走了慢路径，starved 表示经由公平交接取得；
// wait 仅在 contended 时有意义。
func (m *Metrics) RecordAcquire(ctx context.Context, contended, starved bool, wait time.Duration) {
	if m == nil {
		return
	}

	// 使用 context.WithoutCancel 确保即使 ctx 被取消，指标仍能记录。
	metricsCtx := context.WithoutCancel(ctx)

	attrs := []attribute.KeyValue{
		attribute.Bool(attrContended, contended),
		attribute.Bool(attrStarved, starved),
	}
	m.acquireTotal.Add(metricsCtx, 1, metric.WithAttributes(attrs...))
	if contended {
		m.acquireDuration.Record(metricsCtx, wait.Seconds(), metric.WithAttributes(attrs...))
	}
}

// RecordStarvation 记录一次饥饿升级。
func (m *Metrics) RecordStarvation(ctx context.Context) {
	if m == nil {
		return
	}
	m.starvationTotal.Add(context.WithoutCancel(ctx), 1)
}

// RecordRelease 记录一次释放及本次持锁时长。
func (m *Metrics) RecordRelease(ctx context.Context, hold time.Duration) {
	if m == nil {
		return
	}
	metricsCtx := context.WithoutCancel(ctx)
	m.releaseTotal.Add(metricsCtx, 1)
	m.holdDuration.Record(metricsCtx, hold.Seconds())
}
