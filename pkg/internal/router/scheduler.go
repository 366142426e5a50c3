package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/handle"
)

// RegisterSchedulerRoutes 注册调度器管理路由.
func RegisterSchedulerRoutes(g *gin.RouterGroup) {
	schedRoutes := g.Group("/scheduler")
	{
		schedRoutes.GET("/jobs", handle.SchedulerJobs)
		schedRoutes.GET("/jobs/:name", handle.SchedulerJobByName)
	}
}
