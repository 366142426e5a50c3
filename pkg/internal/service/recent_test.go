package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yeisme/filevault/pkg/errs"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
)

// access 触发一次下载以记录访问，保证时间戳单调.
func access(t *testing.T, svc *service.FileService, ctx context.Context, owner, id string) {
	t.Helper()

	_, rc, err := svc.Download(ctx, owner, id)
	if err != nil {
		t.Fatalf("download %s: %v", id, err)
	}

	_ = rc.Close()

	time.Sleep(2 * time.Millisecond)
}

// TestRecentBounded 测试最近访问列表至多 5 条且最新在前.
func TestRecentBounded(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	recentSvc := service.NewRecentService(ctx)

	var files []types.FileInfo
	for i := 0; i < 7; i++ {
		f := uploadFile(t, ctx, testOwner, nil, fmt.Sprintf("f%d.txt", i), "x")
		files = append(files, f)
	}

	for i := range files {
		access(t, svc, ctx, testOwner, files[i].ID)
	}

	list, err := recentSvc.List(ctx, testOwner)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}

	if len(list.Files) != service.RecentLimit {
		t.Fatalf("expected %d entries, got %d", service.RecentLimit, len(list.Files))
	}

	// 最新访问在前：f6, f5, f4, f3, f2
	for i := 0; i < service.RecentLimit; i++ {
		want := files[len(files)-1-i].ID
		if list.Files[i].File.ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, list.Files[i].File.ID)
		}
	}
}

// TestRecentDeduplicates 测试重复访问同一文件只保留一条并刷新时间.
func TestRecentDeduplicates(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	recentSvc := service.NewRecentService(ctx)

	a := uploadFile(t, ctx, testOwner, nil, "a.txt", "a")
	b := uploadFile(t, ctx, testOwner, nil, "b.txt", "b")

	access(t, svc, ctx, testOwner, a.ID)
	access(t, svc, ctx, testOwner, b.ID)
	access(t, svc, ctx, testOwner, a.ID)

	list, err := recentSvc.List(ctx, testOwner)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}

	if len(list.Files) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list.Files))
	}

	if list.Files[0].File.ID != a.ID || list.Files[1].File.ID != b.ID {
		t.Errorf("expected order [a b], got [%s %s]", list.Files[0].File.ID, list.Files[1].File.ID)
	}
}

// TestRecentExcludesTrashed 测试回收站中的文件从最近访问列表消失.
func TestRecentExcludesTrashed(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	recentSvc := service.NewRecentService(ctx)

	keep := uploadFile(t, ctx, testOwner, nil, "keep.txt", "k")
	drop := uploadFile(t, ctx, testOwner, nil, "drop.txt", "d")

	access(t, svc, ctx, testOwner, keep.ID)
	access(t, svc, ctx, testOwner, drop.ID)

	if _, err := svc.Trash(ctx, testOwner, drop.ID); err != nil {
		t.Fatalf("trash: %v", err)
	}

	list, err := recentSvc.List(ctx, testOwner)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}

	if len(list.Files) != 1 || list.Files[0].File.ID != keep.ID {
		t.Errorf("expected only keep.txt, got %+v", list.Files)
	}
}

// TestRecentPerOwner 测试最近访问按租户隔离.
func TestRecentPerOwner(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	recentSvc := service.NewRecentService(ctx)

	mine := uploadFile(t, ctx, testOwner, nil, "mine.txt", "m")
	theirs := uploadFile(t, ctx, "bob@example.com", nil, "theirs.txt", "t")

	access(t, svc, ctx, testOwner, mine.ID)
	access(t, svc, ctx, "bob@example.com", theirs.ID)

	list, err := recentSvc.List(ctx, testOwner)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}

	if len(list.Files) != 1 || list.Files[0].File.ID != mine.ID {
		t.Errorf("expected only own file, got %+v", list.Files)
	}
}

// TestRecentConcurrentMarks 测试并发登记访问：写入与裁剪在同一事务内，
// 列表不会超过上限，也不会把刚写入的条目裁掉.
func TestRecentConcurrentMarks(t *testing.T) {
	ctx := newTestContext(t)
	recentSvc := service.NewRecentService(ctx)

	var files []types.FileInfo
	for i := 0; i < 8; i++ {
		files = append(files, uploadFile(t, ctx, testOwner, nil, fmt.Sprintf("m%d.txt", i), "x"))
	}

	var g errgroup.Group
	for i := range files {
		id := files[i].ID
		g.Go(func() error {
			return recentSvc.Mark(ctx, testOwner, id)
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("mark: %v", err)
	}

	list, err := recentSvc.List(ctx, testOwner)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}

	if len(list.Files) != service.RecentLimit {
		t.Fatalf("expected %d entries, got %d", service.RecentLimit, len(list.Files))
	}

	seen := make(map[string]bool, len(list.Files))
	for _, entry := range list.Files {
		if seen[entry.File.ID] {
			t.Errorf("duplicate entry for %s", entry.File.ID)
		}

		seen[entry.File.ID] = true
	}
}

// TestMarkRecentExplicit 测试显式登记访问：与下载登记共用一条记录，
// 不存在或已回收的文件被拒绝.
func TestMarkRecentExplicit(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	recentSvc := service.NewRecentService(ctx)

	file := uploadFile(t, ctx, testOwner, nil, "seen.txt", "s")

	access(t, svc, ctx, testOwner, file.ID)

	if err := recentSvc.Mark(ctx, testOwner, file.ID); err != nil {
		t.Fatalf("mark: %v", err)
	}

	list, err := recentSvc.List(ctx, testOwner)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}

	if len(list.Files) != 1 || list.Files[0].File.ID != file.ID {
		t.Errorf("expected single entry for repeated access, got %+v", list.Files)
	}

	if err := recentSvc.Mark(ctx, testOwner, "01ZZZZZZZZZZZZZZZZZZZZZZZZ"); !errs.IsNotFound(err) {
		t.Errorf("expected NotFound for unknown file, got %v", err)
	}

	if _, err := svc.Trash(ctx, testOwner, file.ID); err != nil {
		t.Fatalf("trash: %v", err)
	}

	if err := recentSvc.Mark(ctx, testOwner, file.ID); !errs.IsInvalidState(err) {
		t.Errorf("expected InvalidState for trashed file, got %v", err)
	}
}
