package types

import "time"

// FolderInfo 文件夹视图.
type FolderInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id"` // nil 表示根层级
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateFolderRequest 创建文件夹请求. ParentID 为空表示创建在根层级.
type CreateFolderRequest struct {
	Name     string  `binding:"required" json:"name" rule:"required,safename,max=255"`
	ParentID *string `json:"parent_id"`
}

// RenameFolderRequest 文件夹改名请求.
type RenameFolderRequest struct {
	Name string `binding:"required" json:"name" rule:"required,safename,max=255"`
}

// MoveFolderRequest 移动文件夹请求. NewParentID 为空表示移动到根层级.
type MoveFolderRequest struct {
	NewParentID *string `json:"new_parent_id"`
}

// PathSegment 面包屑路径中的一段，根在前.
type PathSegment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FolderContentsResponse 单层列表内容：直接子文件夹与活跃文件.
type FolderContentsResponse struct {
	Folder  *FolderInfo  `json:"folder,omitempty"` // nil 表示根层级
	Path    []PathSegment `json:"path"`
	Folders []FolderInfo `json:"folders"`
	Files   []FileInfo   `json:"files"`
}

// ListFoldersResponse 文件夹列表.
type ListFoldersResponse struct {
	Folders []FolderInfo `json:"folders"`
}

// FolderFavoriteResponse 文件夹收藏切换结果.
type FolderFavoriteResponse struct {
	Folder FolderInfo `json:"folder"`
}

// FolderTree 以嵌套结构表示的子树：文件夹本身、其直接文件与递归展开的子文件夹.
type FolderTree struct {
	Folder   FolderInfo   `json:"folder"`
	Files    []FileInfo   `json:"files"`
	Children []FolderTree `json:"children"`
}

// DeleteFolderResponse 递归删除结果.
type DeleteFolderResponse struct {
	FoldersRemoved int   `json:"folders_removed"`
	FilesRemoved   int   `json:"files_removed"`
	BytesFreed     int64 `json:"bytes_freed"`
}
