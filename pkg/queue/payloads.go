package queue

// FileRef 标识一条文件记录及其对象位置.
type FileRef struct {
	FileID      string `json:"file_id"`
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	FolderID    string `json:"folder_id,omitempty"` // 空表示根层级
	ObjectKey   string `json:"object_key"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// FileStoredPayload 文件写入完成（对象已持久化，元数据已落库）.
type FileStoredPayload struct {
	File FileRef `json:"file"`
}

// FileMovedPayload 文件移动.
type FileMovedPayload struct {
	File         FileRef `json:"file"`
	FromFolderID string  `json:"from_folder_id,omitempty"`
}

// FileRenamedPayload 文件改名，对象键同步变更.
type FileRenamedPayload struct {
	File         FileRef `json:"file"`
	PreviousName string  `json:"previous_name"`
	PreviousKey  string  `json:"previous_key"`
}

// FileCopiedPayload 文件复制.
type FileCopiedPayload struct {
	File     FileRef `json:"file"`
	SourceID string  `json:"source_id"`
}

// FileTrashedPayload 文件进入回收站.
type FileTrashedPayload struct {
	File FileRef `json:"file"`
}

// FileRestoredPayload 文件从回收站恢复.
type FileRestoredPayload struct {
	File FileRef `json:"file"`
}

// FileDeletedPayload 文件被物理删除.
type FileDeletedPayload struct {
	File FileRef `json:"file"`
}

// FileAccessedPayload 文件被访问（下载或预览）.
type FileAccessedPayload struct {
	File FileRef `json:"file"`
}

// FolderPayload 文件夹生命周期事件.
type FolderPayload struct {
	FolderID string `json:"folder_id"`
	Owner    string `json:"owner"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// FolderDeletedPayload 文件夹及子树删除，附带被清除的文件数.
type FolderDeletedPayload struct {
	Folder       FolderPayload `json:"folder"`
	FilesRemoved int           `json:"files_removed"`
	BytesFreed   int64         `json:"bytes_freed"`
}

// TrashPurgedPayload 定时清除超期回收站文件.
type TrashPurgedPayload struct {
	Owner        string `json:"owner,omitempty"` // 空表示跨全部租户
	FilesRemoved int    `json:"files_removed"`
	BytesFreed   int64  `json:"bytes_freed"`
}
