// Package errs 定义领域错误类别，基于 containerd/errdefs 的标准错误语义.
// 服务层返回这些类别的错误，HTTP 层通过 StatusCode 统一映射响应码.
package errs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/containerd/errdefs"
)

// 领域错误哨兵，每个类别包装一个 errdefs 标准错误.
var (
	// ErrInvalidArgument 请求参数缺失或格式错误.
	ErrInvalidArgument = errdefs.ErrInvalidArgument
	// ErrNotFound 目标资源不存在或不属于请求者.
	ErrNotFound = errdefs.ErrNotFound
	// ErrUnauthorized 请求者无权操作目标资源.
	ErrUnauthorized = errdefs.ErrPermissionDenied
	// ErrCycleDetected 文件夹移动会形成环.
	ErrCycleDetected = errdefs.ErrConflict
	// ErrQuotaExceeded 操作会超出存储配额上限.
	ErrQuotaExceeded = errdefs.ErrResourceExhausted
	// ErrInvalidState 资源处于不允许该操作的状态（如对未删除文件执行恢复）.
	ErrInvalidState = errdefs.ErrFailedPrecondition
	// ErrStorageFault 底层数据库或对象存储故障.
	ErrStorageFault = errdefs.ErrInternal
)

// InvalidArgument 构造参数错误.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument)
}

// NotFound 构造资源不存在错误.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Unauthorized 构造越权错误.
func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrUnauthorized)
}

// CycleDetected 构造文件夹环错误.
func CycleDetected(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrCycleDetected)
}

// QuotaExceeded 构造配额超限错误.
func QuotaExceeded(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrQuotaExceeded)
}

// InvalidState 构造状态冲突错误.
func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidState)
}

// StorageFault 包装底层存储错误，保留原始错误链.
func StorageFault(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageFault, err)
}

// IsNotFound 判断错误是否为资源不存在.
func IsNotFound(err error) bool { return errdefs.IsNotFound(err) }

// IsQuotaExceeded 判断错误是否为配额超限.
func IsQuotaExceeded(err error) bool { return errdefs.IsResourceExhausted(err) }

// IsCycleDetected 判断错误是否为文件夹环.
func IsCycleDetected(err error) bool { return errdefs.IsConflict(err) }

// IsInvalidArgument 判断错误是否为参数错误.
func IsInvalidArgument(err error) bool { return errdefs.IsInvalidArgument(err) }

// IsInvalidState 判断错误是否为状态冲突.
func IsInvalidState(err error) bool { return errdefs.IsFailedPrecondition(err) }

// StatusCode 把领域错误映射为 HTTP 状态码.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrCycleDetected):
		return http.StatusConflict
	case errors.Is(err, ErrQuotaExceeded):
		return http.StatusInsufficientStorage
	case errdefs.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
