package model

import (
	"time"

	"gorm.io/gorm"
)

// File 文件元数据模型. 字节内容存放在对象存储，ObjectKey 指向对应的对象.
// DeletedAt 非空表示文件在回收站中，配额在进入回收站时即释放.
type File struct {
	ID    string `gorm:"primaryKey;size:26"      json:"id"`
	Owner string `gorm:"size:255;index;not null" json:"owner"`
	// 所在文件夹ID，nil 表示位于根层级
	FolderID *string `gorm:"size:26;index"             json:"folder_id"`
	Name     string  `gorm:"size:512;index;not null"   json:"name"`
	// 对象存储键，在 owner 下唯一
	ObjectKey   string `gorm:"size:1024;index:idx_owner_key,unique" json:"object_key"`
	Size        int64  `gorm:"not null"                             json:"size"`
	ContentType string `gorm:"size:255"                             json:"content_type"`
	// 内容摘要，上传时边写边算
	MD5      string `gorm:"size:32"             json:"md5"`
	Favorite bool   `gorm:"index;default:false" json:"favorite"`
	// 软删除与审计
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// InTrash 报告文件是否在回收站中.
func (f *File) InTrash() bool {
	return f.DeletedAt.Valid
}
