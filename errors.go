package xalock

import "errors"

var (
	// ErrLockNotHeld 表示 Guard 已经释放。
	// Unlock 第二次及后续调用时返回此错误。
	ErrLockNotHeld = errors.New("xalock: lock not held")

	// ErrInvalidThreshold 表示饥饿升级阈值配置无效。
	// New 在阈值非正时返回此错误。
	ErrInvalidThreshold = errors.New("xalock: invalid starvation threshold")
)
