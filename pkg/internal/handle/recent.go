package handle

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
)

// MarkRecent 登记一次文件访问.
func MarkRecent(c *gin.Context) {
	var req types.MarkRecentRequest
	bindAndRun(c, "mark recent", &req, func(owner string) (any, error) {
		svc := service.NewRecentService(c.Request.Context())

		if err := svc.Mark(c.Request.Context(), owner, req.FileID); err != nil {
			return nil, err
		}

		return gin.H{"file_id": req.FileID, "marked": true}, nil
	})
}

// ListRecent 列出最近访问的文件，按访问时间倒序，最多 5 条.
func ListRecent(c *gin.Context) {
	bindAndRun(c, "list recent", nil, func(owner string) (any, error) {
		svc := service.NewRecentService(c.Request.Context())

		return svc.List(c.Request.Context(), owner)
	})
}

// GetUsage 返回当前租户的配额用量.
func GetUsage(c *gin.Context) {
	bindAndRun(c, "get usage", nil, func(owner string) (any, error) {
		svc := service.NewQuotaService(c.Request.Context())

		return svc.Usage(c.Request.Context(), owner)
	})
}
