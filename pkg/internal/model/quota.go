package model

import (
	"time"
)

// UserQuota 每个租户一行的配额账本. UsedBytes 只计入活跃（未进回收站）文件，
// 预留通过条件 UPDATE 完成，保证并发上传下不会超出上限.
type UserQuota struct {
	Owner     string    `gorm:"primaryKey;size:255" json:"owner"`
	UsedBytes int64     `gorm:"not null;default:0"  json:"used_bytes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
