package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/handle"
)

// RegisterTrashRoutes 注册回收站相关路由.
func RegisterTrashRoutes(g *gin.RouterGroup) {
	trashRoutes := g.Group("/trash")
	{
		// 回收站文件列表
		trashRoutes.GET("", handle.ListTrash)
		// 清空回收站
		trashRoutes.DELETE("", handle.EmptyTrash)

		// 单个文件操作
		fileGroup := trashRoutes.Group("/:id")
		{
			fileGroup.POST("/restore", handle.RestoreFile) // 恢复文件
			fileGroup.DELETE("", handle.PurgeFile)         // 永久删除文件
		}
	}
}
