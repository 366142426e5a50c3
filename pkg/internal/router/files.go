package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/handle"
)

// RegisterFilesRoutes 注册文件操作相关路由.
func RegisterFilesRoutes(g *gin.RouterGroup) {
	filesRoutes := g.Group("/files")
	{
		// 上传文件（multipart form）
		filesRoutes.POST("", handle.UploadFile)
		// 某层级的文件列表
		filesRoutes.GET("", handle.ListFiles)
		// 收藏列表
		filesRoutes.GET("/favorites", handle.ListFavorites)
		// 最近访问
		filesRoutes.POST("/recent", handle.MarkRecent)
		filesRoutes.GET("/recent", handle.ListRecent)
		// 配额用量
		filesRoutes.GET("/usage", handle.GetUsage)

		// 单个文件操作
		singleGroup := filesRoutes.Group("/:id")
		{
			// 下载文件
			singleGroup.GET("/download", handle.DownloadFile)
			// 移动文件
			singleGroup.POST("/move", handle.MoveFile)
			// 重命名文件
			singleGroup.POST("/rename", handle.RenameFile)
			// 复制文件
			singleGroup.POST("/copy", handle.CopyFile)
			// 移入回收站
			singleGroup.DELETE("", handle.TrashFile)
			// 收藏标记
			singleGroup.PUT("/favorite", handle.MarkFavorite)
			singleGroup.DELETE("/favorite", handle.UnmarkFavorite)
		}
	}
}
