package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	nlog "github.com/yeisme/filevault/pkg/log"

	"github.com/yeisme/filevault/pkg/configs"
)

// localStore 本地磁盘后端，对象键映射为根目录下的相对路径.
// 适合单机部署和测试，不做跨进程加锁.
type localStore struct {
	root string
}

func newLocalStore(cfg *configs.BlobLocalConfig) (*localStore, error) {
	root, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve blob dir %s: %w", cfg.Dir, err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir %s: %w", root, err)
	}

	l := nlog.With("blob")
	l.Info().Str("dir", root).Msg("local blob store ready")

	return &localStore{root: root}, nil
}

// path 将对象键映射为磁盘路径，拒绝逃逸根目录的键.
func (l *localStore) path(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}

	return filepath.Join(l.root, filepath.FromSlash(key)), nil
}

func (l *localStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", key, err)
	}

	// 先写临时文件再重命名，避免读到半写的对象
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}

	written, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("write object %s: %w", key, err)
	}

	if written != size {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("write object %s: size mismatch, want %d got %d", key, size, written)
	}

	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("finalize object %s: %w", key, err)
	}

	return nil
}

func (l *localStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s: %w", key, ErrObjectNotFound)
		}

		return nil, fmt.Errorf("open object %s: %w", key, err)
	}

	return f, nil
}

func (l *localStore) Delete(ctx context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object %s: %w", key, err)
	}

	return nil
}

func (l *localStore) Copy(ctx context.Context, srcKey, dstKey string) error {
	src, err := l.Get(ctx, srcKey)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := l.path(dstKey)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", dstKey, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create object %s: %w", dstKey, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)

		return fmt.Errorf("copy object %s -> %s: %w", srcKey, dstKey, err)
	}

	return out.Close()
}

func (l *localStore) Rename(ctx context.Context, srcKey, dstKey string) error {
	src, err := l.path(srcKey)
	if err != nil {
		return err
	}

	dst, err := l.path(dstKey)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", dstKey, err)
	}

	if err := os.Rename(src, dst); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("object %s: %w", srcKey, ErrObjectNotFound)
		}

		return fmt.Errorf("rename object %s -> %s: %w", srcKey, dstKey, err)
	}

	return nil
}

func (l *localStore) HealthCheck(ctx context.Context) error {
	if _, err := os.Stat(l.root); err != nil {
		return fmt.Errorf("blob dir unavailable: %w", err)
	}

	return nil
}

func (l *localStore) Close() error {
	return nil
}
