package blob_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/storage/blob"
)

func newLocalStore(t *testing.T) blob.Store {
	t.Helper()

	cfg := configs.BlobConfig{
		Type:  configs.BlobTypeLocal,
		Local: configs.BlobLocalConfig{Dir: t.TempDir()},
	}

	store, err := blob.New(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("create local store: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func put(t *testing.T, store blob.Store, key, content string) {
	t.Helper()

	if err := store.Put(context.Background(), key, strings.NewReader(content), int64(len(content)), "text/plain"); err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
}

func get(t *testing.T, store blob.Store, key string) string {
	t.Helper()

	rc, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read %s: %v", key, err)
	}

	return string(data)
}

// TestLocalPutGetRoundTrip 测试写入后按键读回原始字节.
func TestLocalPutGetRoundTrip(t *testing.T) {
	store := newLocalStore(t)

	const key = "alice@example.com/2024/01/01HTESTULID-note.txt"

	put(t, store, key, "hello blob")

	if got := get(t, store, key); got != "hello blob" {
		t.Errorf("expected %q, got %q", "hello blob", got)
	}
}

// TestLocalGetMissing 测试读取不存在的对象返回 ErrObjectNotFound.
func TestLocalGetMissing(t *testing.T) {
	store := newLocalStore(t)

	_, err := store.Get(context.Background(), "nobody/2024/01/missing")
	if !errors.Is(err, blob.ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

// TestLocalSizeMismatch 测试声明长度与实际不符时写入失败且不留半成品.
func TestLocalSizeMismatch(t *testing.T) {
	store := newLocalStore(t)

	const key = "o/2024/01/short"

	err := store.Put(context.Background(), key, strings.NewReader("abc"), 10, "")
	if err == nil {
		t.Fatal("expected size mismatch error")
	}

	if _, err := store.Get(context.Background(), key); !errors.Is(err, blob.ErrObjectNotFound) {
		t.Errorf("expected no partial object, got %v", err)
	}
}

// TestLocalCopyAndRename 测试复制保留源对象而移动清除源对象.
func TestLocalCopyAndRename(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	put(t, store, "o/a", "payload")

	if err := store.Copy(ctx, "o/a", "o/b"); err != nil {
		t.Fatalf("copy: %v", err)
	}

	if get(t, store, "o/a") != "payload" || get(t, store, "o/b") != "payload" {
		t.Error("copy must leave both objects readable")
	}

	if err := store.Rename(ctx, "o/b", "o/c"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if _, err := store.Get(ctx, "o/b"); !errors.Is(err, blob.ErrObjectNotFound) {
		t.Errorf("expected source gone after rename, got %v", err)
	}

	if get(t, store, "o/c") != "payload" {
		t.Error("expected content at new key after rename")
	}
}

// TestLocalDeleteIdempotent 测试删除不存在的对象不报错.
func TestLocalDeleteIdempotent(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	put(t, store, "o/x", "x")

	if err := store.Delete(ctx, "o/x"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := store.Delete(ctx, "o/x"); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}
}

// TestLocalRejectsEscapingKeys 测试包含 .. 的键被拒绝.
func TestLocalRejectsEscapingKeys(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "../etc/passwd", "a/../../b"} {
		if err := store.Put(ctx, key, strings.NewReader("x"), 1, ""); err == nil {
			t.Errorf("expected rejection for key %q", key)
		}
	}
}
