package service_test

import (
	"testing"
	"time"

	ctxPkg "github.com/yeisme/filevault/pkg/context"
	"github.com/yeisme/filevault/pkg/errs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/service"
)

// TestTrashAndRestore 测试回收与恢复的完整往返.
func TestTrashAndRestore(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	trashSvc := service.NewTrashService(ctx)

	const content = "restore me"

	docs := createFolder(t, ctx, testOwner, "docs", nil)
	file := uploadFile(t, ctx, testOwner, &docs.ID, "doc.txt", content)

	trashed, err := svc.Trash(ctx, testOwner, file.ID)
	if err != nil {
		t.Fatalf("trash: %v", err)
	}

	if trashed.TrashedAt == nil {
		t.Error("expected trashed_at to be set")
	}

	list, err := trashSvc.List(ctx, testOwner)
	if err != nil {
		t.Fatalf("list trash: %v", err)
	}

	if len(list.Files) != 1 || list.Files[0].ID != file.ID {
		t.Fatalf("expected file in trash, got %+v", list.Files)
	}

	restored, err := trashSvc.Restore(ctx, testOwner, file.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if restored.TrashedAt != nil {
		t.Error("expected trashed_at to be cleared")
	}

	if restored.FolderID == nil || *restored.FolderID != docs.ID {
		t.Errorf("expected restore into original folder %s, got %v", docs.ID, restored.FolderID)
	}

	if got := downloadString(t, svc, ctx, testOwner, file.ID); got != content {
		t.Errorf("expected %q after restore, got %q", content, got)
	}

	// 对活跃文件恢复是状态冲突
	if _, err := trashSvc.Restore(ctx, testOwner, file.ID); !errs.IsInvalidState(err) {
		t.Errorf("expected InvalidState for double restore, got %v", err)
	}
}

// TestRestoreToRootWhenFolderGone 测试原文件夹已删除时恢复到根层级.
func TestRestoreToRootWhenFolderGone(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	folderSvc := service.NewFolderService(ctx)
	trashSvc := service.NewTrashService(ctx)

	docs := createFolder(t, ctx, testOwner, "docs", nil)
	file := uploadFile(t, ctx, testOwner, &docs.ID, "doc.txt", "d")

	if _, err := svc.Trash(ctx, testOwner, file.ID); err != nil {
		t.Fatalf("trash: %v", err)
	}

	if _, err := folderSvc.Delete(ctx, testOwner, docs.ID); err != nil {
		t.Fatalf("delete folder: %v", err)
	}

	// 文件夹删除连回收站中的子文件一并清除了：文件已不存在
	if _, err := trashSvc.Restore(ctx, testOwner, file.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected NotFound after subtree purge, got %v", err)
	}

	// 换一种情况：文件在回收站期间其文件夹被单独清空（无子文件时删除）
	empty := createFolder(t, ctx, testOwner, "empty", nil)
	orphan := uploadFile(t, ctx, testOwner, &empty.ID, "orphan.txt", "o")

	if _, err := svc.Move(ctx, testOwner, orphan.ID, nil); err != nil {
		t.Fatalf("move to root: %v", err)
	}

	if _, err := svc.Move(ctx, testOwner, orphan.ID, &empty.ID); err != nil {
		t.Fatalf("move back: %v", err)
	}

	if _, err := svc.Trash(ctx, testOwner, orphan.ID); err != nil {
		t.Fatalf("trash: %v", err)
	}

	// 直接删掉空文件夹，留下指向它的回收站记录
	dbx := ctxPkg.GetDBClient(ctx).GetDB()
	if err := dbx.Where("id = ?", empty.ID).Delete(&model.Folder{}).Error; err != nil {
		t.Fatalf("drop folder row: %v", err)
	}

	restored, err := trashSvc.Restore(ctx, testOwner, orphan.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if restored.FolderID != nil {
		t.Errorf("expected restore to root when folder vanished, got %v", *restored.FolderID)
	}
}

// TestDeletePermanently 测试永久删除后记录与内容一并消失.
func TestDeletePermanently(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	trashSvc := service.NewTrashService(ctx)

	file := uploadFile(t, ctx, testOwner, nil, "gone.txt", "g")

	// 未进回收站不允许直接永久删除
	if err := trashSvc.DeletePermanently(ctx, testOwner, file.ID); !errs.IsInvalidState(err) {
		t.Fatalf("expected InvalidState for active file, got %v", err)
	}

	if _, err := svc.Trash(ctx, testOwner, file.ID); err != nil {
		t.Fatalf("trash: %v", err)
	}

	if err := trashSvc.DeletePermanently(ctx, testOwner, file.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}

	if _, err := trashSvc.Restore(ctx, testOwner, file.ID); !errs.IsNotFound(err) {
		t.Errorf("expected NotFound after purge, got %v", err)
	}

	list, err := trashSvc.List(ctx, testOwner)
	if err != nil {
		t.Fatalf("list trash: %v", err)
	}

	if len(list.Files) != 0 {
		t.Errorf("expected empty trash, got %+v", list.Files)
	}
}

// TestEmptyTrash 测试清空回收站.
func TestEmptyTrash(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	trashSvc := service.NewTrashService(ctx)

	a := uploadFile(t, ctx, testOwner, nil, "a.txt", "aa")
	b := uploadFile(t, ctx, testOwner, nil, "b.txt", "bbb")
	keep := uploadFile(t, ctx, testOwner, nil, "keep.txt", "k")

	for _, id := range []string{a.ID, b.ID} {
		if _, err := svc.Trash(ctx, testOwner, id); err != nil {
			t.Fatalf("trash %s: %v", id, err)
		}
	}

	resp, err := trashSvc.Empty(ctx, testOwner)
	if err != nil {
		t.Fatalf("empty: %v", err)
	}

	if resp.FilesRemoved != 2 || resp.BytesFreed != 5 {
		t.Errorf("unexpected purge summary: %+v", resp)
	}

	// 活跃文件不受影响
	if got := downloadString(t, svc, ctx, testOwner, keep.ID); got != "k" {
		t.Errorf("expected keep.txt intact, got %q", got)
	}
}

// TestAutoCleanOnlyExpired 测试定时清理只触及超过保留期的文件.
func TestAutoCleanOnlyExpired(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFileService(ctx)
	trashSvc := service.NewTrashService(ctx)

	old := uploadFile(t, ctx, testOwner, nil, "old.txt", "oo")
	fresh := uploadFile(t, ctx, testOwner, nil, "fresh.txt", "ff")

	for _, id := range []string{old.ID, fresh.ID} {
		if _, err := svc.Trash(ctx, testOwner, id); err != nil {
			t.Fatalf("trash %s: %v", id, err)
		}
	}

	// 把 old.txt 的回收时间拨到保留期之外
	dbx := ctxPkg.GetDBClient(ctx).GetDB()
	expired := time.Now().AddDate(0, 0, -40)

	if err := dbx.Unscoped().Model(&model.File{}).
		Where("id = ?", old.ID).
		Update("deleted_at", expired).Error; err != nil {
		t.Fatalf("age trash entry: %v", err)
	}

	cutoff := time.Now().AddDate(0, 0, -30)

	resp, err := trashSvc.AutoClean(ctx, testOwner, cutoff)
	if err != nil {
		t.Fatalf("auto clean: %v", err)
	}

	if resp.FilesRemoved != 1 || resp.BytesFreed != 2 {
		t.Errorf("unexpected clean summary: %+v", resp)
	}

	list, err := trashSvc.List(ctx, testOwner)
	if err != nil {
		t.Fatalf("list trash: %v", err)
	}

	if len(list.Files) != 1 || list.Files[0].ID != fresh.ID {
		t.Errorf("expected only fresh.txt to remain, got %+v", list.Files)
	}
}
