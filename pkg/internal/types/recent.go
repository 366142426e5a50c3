package types

import "time"

// MarkRecentRequest 登记一次文件访问.
type MarkRecentRequest struct {
	FileID string `binding:"required" json:"file_id" rule:"required"`
}

// RecentFileItem 最近访问条目，附带访问时间.
type RecentFileItem struct {
	File       FileInfo  `json:"file"`
	AccessedAt time.Time `json:"accessed_at"`
}

// RecentFilesResponse 最近访问列表，最新在前.
type RecentFilesResponse struct {
	Files []RecentFileItem `json:"files"`
}
