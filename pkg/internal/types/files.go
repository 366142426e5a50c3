// Package types 定义 HTTP 层请求与响应结构.
package types

import "time"

// FileInfo 文件记录视图.
type FileInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	FolderID    *string    `json:"folder_id"` // nil 表示根层级
	Size        int64      `json:"size"`
	ContentType string     `json:"content_type,omitempty"`
	MD5         string     `json:"md5,omitempty"`
	Favorite    bool       `json:"favorite"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	TrashedAt   *time.Time `json:"trashed_at,omitempty"` // 非空表示在回收站中
}

// UploadFileResponse 上传结果.
type UploadFileResponse struct {
	File FileInfo `json:"file"`
}

// ListFilesResponse 文件列表.
type ListFilesResponse struct {
	Files []FileInfo `json:"files"`
}

// MoveFileRequest 移动文件请求. FolderID 为空表示移动到根层级.
type MoveFileRequest struct {
	FolderID *string `json:"folder_id"`
}

// RenameFileRequest 文件改名请求.
type RenameFileRequest struct {
	Name string `binding:"required" json:"name" rule:"required,safename,max=255"`
}

// CopyFileRequest 复制文件请求. FolderID 为空表示复制到源文件所在文件夹.
type CopyFileRequest struct {
	FolderID *string `json:"folder_id"`
}

// FavoriteResponse 收藏切换结果.
type FavoriteResponse struct {
	File FileInfo `json:"file"`
}
