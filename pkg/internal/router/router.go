// Package router 管理路由配置，将路径绑定到 pkg/internal/handle 提供的处理器.
package router

import (
	"github.com/gin-gonic/gin"
)

// Register 在传入的 gin 引擎上注册全部业务路由，统一挂载在 /api/v1 下.
func Register(engine *gin.Engine) {
	api := engine.Group("/api/v1")

	RegisterFoldersRoutes(api)
	RegisterFilesRoutes(api)
	RegisterTrashRoutes(api)
	RegisterHealthCheckRoute(api)
	RegisterSchedulerRoutes(api)
}
