package handle

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/service"
)

// DownloadFile 下载文件内容，同时记录一次最近访问.
func DownloadFile(c *gin.Context) {
	owner, err := checkOwner(c)
	if err != nil {
		respondError(c, "download file", err)

		return
	}

	id := c.Param("id")
	svc := service.NewFileService(c.Request.Context())

	info, rc, err := svc.Download(c.Request.Context(), owner, id)
	if err != nil {
		respondError(c, "download file", err)

		return
	}
	defer func() { _ = rc.Close() }()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", info.Name),
	}
	c.DataFromReader(http.StatusOK, info.Size, contentType, rc, extraHeaders)
}
