package service_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yeisme/filevault/pkg/configs"
	ctxPkg "github.com/yeisme/filevault/pkg/context"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/internal/storage/blob"
	"github.com/yeisme/filevault/pkg/internal/storage/db"
	"github.com/yeisme/filevault/pkg/internal/types"
)

const testOwner = "alice@example.com"

// newTestContext 构建携带 SQLite + 本地对象存储的测试上下文. MQ 为 nil，
// 事件发布自动退化为 no-op.
func newTestContext(t *testing.T) context.Context {
	t.Helper()

	dbCfg := configs.DBConfig{
		Type:         configs.SQLite,
		Database:     filepath.Join(t.TempDir(), "filevault"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}

	dbClient, err := db.New(context.Background(), &dbCfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	blobCfg := configs.BlobConfig{
		Type:  configs.BlobTypeLocal,
		Local: configs.BlobLocalConfig{Dir: t.TempDir()},
	}

	store, err := blob.New(context.Background(), &blobCfg)
	if err != nil {
		t.Fatalf("open test blob store: %v", err)
	}

	mgr := storage.NewManager(dbClient, store, nil)
	t.Cleanup(func() { _ = mgr.Close() })

	return ctxPkg.WithStorageManager(context.Background(), mgr)
}

// setQuotaCeiling 临时设置配额上限，测试结束后恢复.
func setQuotaCeiling(t *testing.T, n int64) {
	t.Helper()

	cfg := configs.GetConfig()
	old := cfg.Quota.CeilingBytes
	cfg.Quota.CeilingBytes = n

	t.Cleanup(func() { cfg.Quota.CeilingBytes = old })
}

// uploadFile 上传一段文本内容，失败即中止测试.
func uploadFile(t *testing.T, ctx context.Context, owner string, folderID *string, name, content string) types.FileInfo {
	t.Helper()

	svc := service.NewFileService(ctx)

	resp, err := svc.Upload(ctx, owner, folderID, name, "text/plain", int64(len(content)), strings.NewReader(content))
	if err != nil {
		t.Fatalf("upload %s: %v", name, err)
	}

	return resp.File
}

// createFolder 创建文件夹，失败即中止测试.
func createFolder(t *testing.T, ctx context.Context, owner, name string, parentID *string) types.FolderInfo {
	t.Helper()

	svc := service.NewFolderService(ctx)

	info, err := svc.Create(ctx, owner, name, parentID)
	if err != nil {
		t.Fatalf("create folder %s: %v", name, err)
	}

	return info
}
