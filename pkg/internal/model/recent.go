package model

import (
	"time"
)

// RecentAccess 最近访问记录. 每个 (owner, file) 至多一条，访问时间更新为最新.
type RecentAccess struct {
	ID         uint      `gorm:"primaryKey"                                   json:"id"`
	Owner      string    `gorm:"size:255;index:idx_recent_owner_file,unique"  json:"owner"`
	FileID     string    `gorm:"size:26;index:idx_recent_owner_file,unique"   json:"file_id"`
	AccessedAt time.Time `gorm:"index"                                        json:"accessed_at"`
}
