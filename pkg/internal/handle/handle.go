// Package handle 提供请求处理器的实现，负责参数绑定、租户提取与统一错误映射.
package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/errs"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/middleware"
	"github.com/yeisme/filevault/pkg/rule"
)

// checkOwner 提取当前请求的租户标识并校验格式为 email.
func checkOwner(c *gin.Context) (string, error) {
	owner := middleware.GetOwner(c)
	if owner == "" {
		return "", errs.Unauthorized("missing owner identity")
	}

	if err := rule.ValidateVar(owner, "required,email"); err != nil {
		return "", errs.Unauthorized("invalid owner identity: %v", err)
	}

	return owner, nil
}

// respondError 按错误类别映射 HTTP 状态码并记录日志.
func respondError(c *gin.Context, op string, err error) {
	status := errs.StatusCode(err)

	l := log.Logger()
	evt := l.Warn()
	if status >= http.StatusInternalServerError {
		evt = l.Error()
	}
	evt.Err(err).Str("op", op).Int("status", status).Msg("request failed")

	c.JSON(status, gin.H{"error": err.Error()})
}

// bindAndRun 封装公共流程：绑定请求体、租户校验、调用 service、统一返回.
func bindAndRun(c *gin.Context, op string, req any, call func(owner string) (any, error)) {
	if req != nil {
		if err := c.ShouldBindJSON(req); err != nil {
			respondError(c, op, errs.InvalidArgument("invalid request body: %v", err))

			return
		}
	}

	owner, err := checkOwner(c)
	if err != nil {
		respondError(c, op, err)

		return
	}

	resp, err := call(owner)
	if err != nil {
		respondError(c, op, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
