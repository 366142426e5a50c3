package types

// UsageResponse 存储用量汇总. 只统计活跃文件，回收站中的文件不占配额.
type UsageResponse struct {
	UsedBytes      int64 `json:"used_bytes"`
	CeilingBytes   int64 `json:"ceiling_bytes"`
	RemainingBytes int64 `json:"remaining_bytes"`
	// 人类可读形式，如 "1.5 GB"
	UsedDisplay      string `json:"used_display"`
	CeilingDisplay   string `json:"ceiling_display"`
	RemainingDisplay string `json:"remaining_display"`
}
