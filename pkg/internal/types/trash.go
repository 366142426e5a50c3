package types

// TrashListResponse 回收站内容.
type TrashListResponse struct {
	Files []FileInfo `json:"files"`
}

// PurgeTrashResponse 清空或清理回收站的结果.
type PurgeTrashResponse struct {
	FilesRemoved int   `json:"files_removed"`
	BytesFreed   int64 `json:"bytes_freed"`
}
