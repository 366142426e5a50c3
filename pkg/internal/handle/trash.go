package handle

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/service"
)

// ListTrash 列出回收站中的文件.
func ListTrash(c *gin.Context) {
	bindAndRun(c, "list trash", nil, func(owner string) (any, error) {
		svc := service.NewTrashService(c.Request.Context())

		return svc.List(c.Request.Context(), owner)
	})
}

// RestoreFile 从回收站恢复文件，原文件夹已删除时恢复到根层级.
func RestoreFile(c *gin.Context) {
	id := c.Param("id")
	bindAndRun(c, "restore file", nil, func(owner string) (any, error) {
		svc := service.NewTrashService(c.Request.Context())

		return svc.Restore(c.Request.Context(), owner, id)
	})
}

// PurgeFile 彻底删除回收站中的单个文件，元数据与对象一并清除.
func PurgeFile(c *gin.Context) {
	id := c.Param("id")
	bindAndRun(c, "purge file", nil, func(owner string) (any, error) {
		svc := service.NewTrashService(c.Request.Context())
		if err := svc.DeletePermanently(c.Request.Context(), owner, id); err != nil {
			return nil, err
		}

		return gin.H{"id": id, "purged": true}, nil
	})
}

// EmptyTrash 清空当前租户的回收站.
func EmptyTrash(c *gin.Context) {
	bindAndRun(c, "empty trash", nil, func(owner string) (any, error) {
		svc := service.NewTrashService(c.Request.Context())

		return svc.Empty(c.Request.Context(), owner)
	})
}
