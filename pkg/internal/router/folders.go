package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/handle"
)

// RegisterFoldersRoutes 注册文件夹树相关路由.
func RegisterFoldersRoutes(g *gin.RouterGroup) {
	folderRoutes := g.Group("/folders")
	{
		// 创建文件夹
		folderRoutes.POST("", handle.CreateFolder)
		// 根层级列表
		folderRoutes.GET("", handle.ListRoot)
		// 收藏文件夹列表
		folderRoutes.GET("/favorites", handle.ListFolderFavorites)

		// 单个文件夹操作
		singleGroup := folderRoutes.Group("/:id")
		{
			singleGroup.GET("", handle.ListFolder)      // 单层列表
			singleGroup.GET("/path", handle.FolderPath) // 面包屑路径
			singleGroup.GET("/tree", handle.FolderTree) // 完整子树
			singleGroup.POST("/rename", handle.RenameFolder)
			singleGroup.POST("/move", handle.MoveFolder)
			singleGroup.DELETE("", handle.DeleteFolder) // 递归删除
			// 收藏标记
			singleGroup.PUT("/favorite", handle.MarkFolderFavorite)
			singleGroup.DELETE("/favorite", handle.UnmarkFolderFavorite)
		}
	}
}
