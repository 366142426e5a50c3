// Package model 定义数据库模型，以扁平关系表为真源，树结构通过 ParentID 自引用表达.
package model

import (
	"time"
)

// Folder 文件夹模型，ParentID 为 nil 表示根层级.
type Folder struct {
	ID    string `gorm:"primaryKey;size:26"        json:"id"`
	Owner string `gorm:"size:255;index;not null"   json:"owner"`
	Name  string `gorm:"size:255;not null"         json:"name"`
	// 父文件夹ID，nil 表示位于根层级；同层允许同名
	ParentID  *string   `gorm:"size:26;index"       json:"parent_id"`
	Favorite  bool      `gorm:"index;default:false" json:"favorite"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
