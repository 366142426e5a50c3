package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/configs"
)

// OwnerKey gin.Context 中存放请求方租户标识的键.
const OwnerKey = "owner"

// AuthMiddleware 基于 oauth2-proxy 注入的请求头做统一身份认证校验。
//   - 优先要求存在 X-Auth-Request-Email 或 X-Forwarded-Email
//   - 支持通过配置跳过某些路径（如 /metrics, /health）
//   - 开发模式可允许 query user 兜底（由 configs.auth.dev_allow_query 控制）.
//
// 通过校验后把租户标识写入 gin.Context，后续 handler 用 GetOwner 读取.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()

			return
		}

		email := strings.TrimSpace(c.GetHeader("X-Auth-Request-Email"))
		if email == "" {
			email = strings.TrimSpace(c.GetHeader("X-Forwarded-Email"))
		}

		if email == "" && conf.DevAllowQuery {
			email = strings.TrimSpace(c.Query("user"))
		}

		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

			return
		}

		c.Set(OwnerKey, email)
		c.Next()
	}
}

// GetOwner 返回当前请求的租户标识，认证关闭时允许 query 兜底.
func GetOwner(c *gin.Context) string {
	if v, ok := c.Get(OwnerKey); ok {
		if owner, ok := v.(string); ok {
			return owner
		}
	}

	return strings.TrimSpace(c.Query("user"))
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
