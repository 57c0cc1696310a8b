package xalock

// =============================================================================
// 日志属性键常量
// =============================================================================

const (
	attrKeyWaited    = "waited"
	attrKeyThreshold = "threshold"
	attrKeyHeld      = "held"
	attrKeyValue     = "value"
)
