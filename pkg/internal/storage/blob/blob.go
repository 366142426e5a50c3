// Package blob 提供对象存储的统一抽象，支持 S3 兼容服务和本地磁盘两种后端.
// 元数据层只通过 Store 接口访问字节内容，后端可按配置切换.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/metrics"
)

// ErrObjectNotFound 请求的对象不存在.
var ErrObjectNotFound = errors.New("object not found")

// Store 对象存储客户端接口.
type Store interface {
	// Put 写入对象，size 为内容字节数，必须与 r 的实际长度一致.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get 读取对象内容，调用方负责关闭返回的 ReadCloser.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete 删除对象. 删除不存在的对象不报错.
	Delete(ctx context.Context, key string) error
	// Copy 复制对象到新键，源对象保持不变.
	Copy(ctx context.Context, srcKey, dstKey string) error
	// Rename 移动对象到新键.
	Rename(ctx context.Context, srcKey, dstKey string) error
	// HealthCheck 验证后端可用性.
	HealthCheck(ctx context.Context) error
	// Close 释放后端资源.
	Close() error
}

// New 按配置创建对象存储客户端.
func New(ctx context.Context, cfg *configs.BlobConfig) (Store, error) {
	var (
		s   Store
		err error
	)

	switch cfg.Type {
	case configs.BlobTypeS3:
		s, err = newS3Store(ctx, &cfg.S3)
	case configs.BlobTypeLocal:
		s, err = newLocalStore(&cfg.Local)
	default:
		return nil, fmt.Errorf("unsupported blob store type: %s", cfg.Type)
	}

	if err != nil {
		return nil, err
	}

	return &instrumented{next: s}, nil
}

// instrumented 在每次操作后记录 Prometheus 计数.
type instrumented struct {
	next Store
}

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	metrics.BlobOperations.WithLabelValues(op, result).Inc()
}

func (i *instrumented) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	err := i.next.Put(ctx, key, r, size, contentType)
	observe("put", err)

	return err
}

func (i *instrumented) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := i.next.Get(ctx, key)
	observe("get", err)

	return rc, err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	err := i.next.Delete(ctx, key)
	observe("delete", err)

	return err
}

func (i *instrumented) Copy(ctx context.Context, srcKey, dstKey string) error {
	err := i.next.Copy(ctx, srcKey, dstKey)
	observe("copy", err)

	return err
}

func (i *instrumented) Rename(ctx context.Context, srcKey, dstKey string) error {
	err := i.next.Rename(ctx, srcKey, dstKey)
	observe("rename", err)

	return err
}

func (i *instrumented) HealthCheck(ctx context.Context) error {
	return i.next.HealthCheck(ctx)
}

func (i *instrumented) Close() error {
	return i.next.Close()
}
