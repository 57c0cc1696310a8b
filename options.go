package xalock

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// DefaultStarvationThreshold 等待者升级为公平交接的默认阈值。
// 乐观重试在平均情况下更快，0.5ms 的上界保证持续竞争下没有
// 等待者被无限推迟。
const DefaultStarvationThreshold = 500 * time.Microsecond

// Option 定义 Lock 可选配置。
type Option func(*options)

type options struct {
	starvationThreshold time.Duration
	logger              *slog.Logger
	meterProvider       metric.MeterProvider
}

func defaultOptions() options {
	return options{
		starvationThreshold: DefaultStarvationThreshold,
	}
}

// WithStarvationThreshold 设置等待者升级为公平交接的阈值。
// 阈值越小越接近严格 FIFO，越大越偏向吞吐。
// d 必须为正，否则 New 返回 [ErrInvalidThreshold]。
func WithStarvationThreshold(d time.Duration) Option {
	return func(o *options) {
		o.starvationThreshold = d
	}
}

// WithLogger 设置日志记录器。
// 仅慢路径（饥饿升级）以 Debug 级别记录，快路径永不记日志。
// 默认 nil，不记录。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMeterProvider 设置 OpenTelemetry MeterProvider。
// 用于收集获取/释放/饥饿相关指标。
// 如果不设置，不会收集指标。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

func (o *options) validate() error {
	if o.starvationThreshold <= 0 {
		return fmt.Errorf("%w: must be positive, got %v",
			ErrInvalidThreshold, o.starvationThreshold)
	}
	return nil
}
