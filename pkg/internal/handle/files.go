package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/errs"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
)

// UploadFile 上传文件（multipart form，字段名 file，可多值成批），
// folder_id 为空表示根层级. 整批要么全部入库要么全部不落地.
func UploadFile(c *gin.Context) {
	owner, err := checkOwner(c)
	if err != nil {
		respondError(c, "upload file", err)

		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, "upload file", errs.InvalidArgument("invalid multipart form: %v", err))

		return
	}

	fhs := form.File["file"]
	if len(fhs) == 0 {
		respondError(c, "upload file", errs.InvalidArgument("missing file field"))

		return
	}

	var folderID *string
	if v := c.PostForm("folder_id"); v != "" {
		folderID = &v
	}

	items := make([]service.UploadItem, 0, len(fhs))

	for _, fh := range fhs {
		src, err := fh.Open()
		if err != nil {
			respondError(c, "upload file", errs.InvalidArgument("open upload %s: %v", fh.Filename, err))

			return
		}
		defer func() { _ = src.Close() }()

		name := fh.Filename
		// 单文件上传允许用表单字段改名
		if len(fhs) == 1 && c.PostForm("name") != "" {
			name = c.PostForm("name")
		}

		items = append(items, service.UploadItem{
			Name:        name,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     src,
		})
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.UploadMany(c.Request.Context(), owner, folderID, items)
	if err != nil {
		respondError(c, "upload file", err)

		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListFiles 列出某层级下的文件，folder_id 为空表示根层级的散文件.
func ListFiles(c *gin.Context) {
	var folderID *string
	if v := c.Query("folder_id"); v != "" {
		folderID = &v
	}

	bindAndRun(c, "list files", nil, func(owner string) (any, error) {
		svc := service.NewFileService(c.Request.Context())

		return svc.List(c.Request.Context(), owner, folderID)
	})
}

// MoveFile 移动文件到指定文件夹，folder_id 为空表示移动到根层级.
func MoveFile(c *gin.Context) {
	id := c.Param("id")

	var req types.MoveFileRequest
	bindAndRun(c, "move file", &req, func(owner string) (any, error) {
		svc := service.NewFileService(c.Request.Context())

		return svc.Move(c.Request.Context(), owner, id, req.FolderID)
	})
}

// RenameFile 重命名文件.
func RenameFile(c *gin.Context) {
	id := c.Param("id")

	var req types.RenameFileRequest
	bindAndRun(c, "rename file", &req, func(owner string) (any, error) {
		svc := service.NewFileService(c.Request.Context())

		return svc.Rename(c.Request.Context(), owner, id, req.Name)
	})
}

// CopyFile 复制文件，folder_id 为空表示复制到源文件所在文件夹.
func CopyFile(c *gin.Context) {
	id := c.Param("id")

	var req types.CopyFileRequest
	bindAndRun(c, "copy file", &req, func(owner string) (any, error) {
		svc := service.NewFileService(c.Request.Context())

		return svc.Copy(c.Request.Context(), owner, id, req.FolderID)
	})
}

// TrashFile 将文件移入回收站（软删除并释放配额）.
func TrashFile(c *gin.Context) {
	id := c.Param("id")
	bindAndRun(c, "trash file", nil, func(owner string) (any, error) {
		svc := service.NewFileService(c.Request.Context())

		return svc.Trash(c.Request.Context(), owner, id)
	})
}

// MarkFavorite 标记文件为收藏，重复标记返回冲突.
func MarkFavorite(c *gin.Context) {
	id := c.Param("id")
	bindAndRun(c, "mark favorite", nil, func(owner string) (any, error) {
		svc := service.NewFileService(c.Request.Context())

		info, err := svc.SetFavorite(c.Request.Context(), owner, id, true)
		if err != nil {
			return nil, err
		}

		return types.FavoriteResponse{File: info}, nil
	})
}

// UnmarkFavorite 取消文件收藏，重复取消返回冲突.
func UnmarkFavorite(c *gin.Context) {
	id := c.Param("id")
	bindAndRun(c, "unmark favorite", nil, func(owner string) (any, error) {
		svc := service.NewFileService(c.Request.Context())

		info, err := svc.SetFavorite(c.Request.Context(), owner, id, false)
		if err != nil {
			return nil, err
		}

		return types.FavoriteResponse{File: info}, nil
	})
}

// ListFavorites 列出当前租户收藏的全部活跃文件.
func ListFavorites(c *gin.Context) {
	bindAndRun(c, "list favorites", nil, func(owner string) (any, error) {
		svc := service.NewFileService(c.Request.Context())

		return svc.ListFavorites(c.Request.Context(), owner)
	})
}
