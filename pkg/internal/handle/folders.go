package handle

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
)

// CreateFolder 创建文件夹，parent_id 为空时创建在根层级.
func CreateFolder(c *gin.Context) {
	var req types.CreateFolderRequest
	bindAndRun(c, "create folder", &req, func(owner string) (any, error) {
		svc := service.NewFolderService(c.Request.Context())

		return svc.Create(c.Request.Context(), owner, req.Name, req.ParentID)
	})
}

// ListRoot 列出根层级的直接子文件夹与文件.
func ListRoot(c *gin.Context) {
	bindAndRun(c, "list root", nil, func(owner string) (any, error) {
		svc := service.NewFolderService(c.Request.Context())

		return svc.List(c.Request.Context(), owner, nil)
	})
}

// ListFolder 列出指定文件夹的直接子文件夹与文件.
func ListFolder(c *gin.Context) {
	id := c.Param("id")
	bindAndRun(c, "list folder", nil, func(owner string) (any, error) {
		svc := service.NewFolderService(c.Request.Context())

		return svc.List(c.Request.Context(), owner, &id)
	})
}

// FolderPath 返回从根到指定文件夹的面包屑路径.
func FolderPath(c *gin.Context) {
	id := c.Param("id")
	bindAndRun(c, "folder path", nil, func(owner string) (any, error) {
		svc := service.NewFolderService(c.Request.Context())

		path, err := svc.Path(c.Request.Context(), owner, id)
		if err != nil {
			return nil, err
		}

		return gin.H{"path": path}, nil
	})
}

// FolderTree 物化指定文件夹的完整子树.
func FolderTree(c *gin.Context) {
	id := c.Param("id")
	bindAndRun(c, "folder tree", nil, func(owner string) (any, error) {
		svc := service.NewFolderService(c.Request.Context())

		return svc.Tree(c.Request.Context(), owner, id)
	})
}

// MarkFolderFavorite 标记文件夹为收藏，重复标记返回冲突.
func MarkFolderFavorite(c *gin.Context) {
	id := c.Param("id")
	bindAndRun(c, "mark folder favorite", nil, func(owner string) (any, error) {
		svc := service.NewFolderService(c.Request.Context())

		info, err := svc.SetFavorite(c.Request.Context(), owner, id, true)
		if err != nil {
			return nil, err
		}

		return types.FolderFavoriteResponse{Folder: info}, nil
	})
}

// UnmarkFolderFavorite 取消文件夹收藏，重复取消返回冲突.
func UnmarkFolderFavorite(c *gin.Context) {
	id := c.Param("id")
	bindAndRun(c, "unmark folder favorite", nil, func(owner string) (any, error) {
		svc := service.NewFolderService(c.Request.Context())

		info, err := svc.SetFavorite(c.Request.Context(), owner, id, false)
		if err != nil {
			return nil, err
		}

		return types.FolderFavoriteResponse{Folder: info}, nil
	})
}

// ListFolderFavorites 列出收藏的文件夹.
func ListFolderFavorites(c *gin.Context) {
	bindAndRun(c, "list folder favorites", nil, func(owner string) (any, error) {
		svc := service.NewFolderService(c.Request.Context())

		return svc.ListFavorites(c.Request.Context(), owner)
	})
}

// RenameFolder 重命名文件夹.
func RenameFolder(c *gin.Context) {
	id := c.Param("id")

	var req types.RenameFolderRequest
	bindAndRun(c, "rename folder", &req, func(owner string) (any, error) {
		svc := service.NewFolderService(c.Request.Context())

		return svc.Rename(c.Request.Context(), owner, id, req.Name)
	})
}

// MoveFolder 移动文件夹到新父级，new_parent_id 为空表示移动到根层级.
func MoveFolder(c *gin.Context) {
	id := c.Param("id")

	var req types.MoveFolderRequest
	bindAndRun(c, "move folder", &req, func(owner string) (any, error) {
		svc := service.NewFolderService(c.Request.Context())

		return svc.Move(c.Request.Context(), owner, id, req.NewParentID)
	})
}

// DeleteFolder 递归删除文件夹及其全部子树.
func DeleteFolder(c *gin.Context) {
	id := c.Param("id")
	bindAndRun(c, "delete folder", nil, func(owner string) (any, error) {
		svc := service.NewFolderService(c.Request.Context())

		return svc.Delete(c.Request.Context(), owner, id)
	})
}
