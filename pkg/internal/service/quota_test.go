package service_test

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/yeisme/filevault/pkg/errs"
	"github.com/yeisme/filevault/pkg/internal/service"
)

// TestUploadQuotaExceeded 测试超出上限的上传被拒绝且不留痕.
func TestUploadQuotaExceeded(t *testing.T) {
	ctx := newTestContext(t)
	setQuotaCeiling(t, 10)

	svc := service.NewFileService(ctx)
	quotaSvc := service.NewQuotaService(ctx)

	uploadFile(t, ctx, testOwner, nil, "small.txt", "12345678") // 8 字节

	content := "overflow" // 再放 8 字节就超了
	if _, err := svc.Upload(ctx, testOwner, nil, "big.txt", "", int64(len(content)), strings.NewReader(content)); !errs.IsQuotaExceeded(err) {
		t.Fatalf("expected QuotaExceeded, got %v", err)
	}

	usage, err := quotaSvc.Usage(ctx, testOwner)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}

	if usage.UsedBytes != 8 {
		t.Errorf("expected 8 used bytes after rejected upload, got %d", usage.UsedBytes)
	}
}

// TestUsageReport 测试配额用量汇总.
func TestUsageReport(t *testing.T) {
	ctx := newTestContext(t)
	setQuotaCeiling(t, 100)

	quotaSvc := service.NewQuotaService(ctx)

	// 未上传过的租户也能查询
	usage, err := quotaSvc.Usage(ctx, testOwner)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}

	if usage.UsedBytes != 0 || usage.CeilingBytes != 100 || usage.RemainingBytes != 100 {
		t.Errorf("unexpected empty usage: %+v", usage)
	}

	uploadFile(t, ctx, testOwner, nil, "a.txt", "1234567890") // 10 字节

	usage, err = quotaSvc.Usage(ctx, testOwner)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}

	if usage.UsedBytes != 10 || usage.RemainingBytes != 90 {
		t.Errorf("unexpected usage: %+v", usage)
	}
}

// TestConcurrentUploadsRespectCeiling 测试并发上传合计不会越过配额上限.
func TestConcurrentUploadsRespectCeiling(t *testing.T) {
	ctx := newTestContext(t)

	const (
		fileSize  = 10
		workers   = 8
		admitted  = 3
		ceiling   = fileSize*admitted + fileSize - 1 // 正好容纳 3 个
	)

	setQuotaCeiling(t, int64(ceiling))

	svc := service.NewFileService(ctx)

	var (
		g        errgroup.Group
		accepted atomic.Int64
	)

	for i := 0; i < workers; i++ {
		name := fmt.Sprintf("part-%d.bin", i)

		g.Go(func() error {
			content := strings.Repeat("x", fileSize)

			_, err := svc.Upload(ctx, testOwner, nil, name, "", fileSize, strings.NewReader(content))
			if err != nil {
				if errs.IsQuotaExceeded(err) {
					return nil
				}

				return err
			}

			accepted.Add(1)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent upload: %v", err)
	}

	if accepted.Load() != admitted {
		t.Errorf("expected %d uploads admitted, got %d", admitted, accepted.Load())
	}

	usage, err := service.NewQuotaService(ctx).Usage(ctx, testOwner)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}

	if usage.UsedBytes != fileSize*admitted {
		t.Errorf("expected %d used bytes, got %d", fileSize*admitted, usage.UsedBytes)
	}

	if usage.UsedBytes > int64(ceiling) {
		t.Errorf("usage %d exceeds ceiling %d", usage.UsedBytes, ceiling)
	}
}

// TestTrashReleasesAndRestoreReserves 测试回收释放配额、恢复重新占用、配额不足时恢复被拒.
func TestTrashReleasesAndRestoreReserves(t *testing.T) {
	ctx := newTestContext(t)
	setQuotaCeiling(t, 10)

	svc := service.NewFileService(ctx)
	trashSvc := service.NewTrashService(ctx)
	quotaSvc := service.NewQuotaService(ctx)

	first := uploadFile(t, ctx, testOwner, nil, "first.txt", "123456") // 6 字节

	if _, err := svc.Trash(ctx, testOwner, first.ID); err != nil {
		t.Fatalf("trash: %v", err)
	}

	usage, err := quotaSvc.Usage(ctx, testOwner)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}

	if usage.UsedBytes != 0 {
		t.Fatalf("expected trash to release quota, used=%d", usage.UsedBytes)
	}

	// 腾出的空间被新文件占用，恢复装不下
	uploadFile(t, ctx, testOwner, nil, "second.txt", "12345678") // 8 字节

	if _, err := trashSvc.Restore(ctx, testOwner, first.ID); !errs.IsQuotaExceeded(err) {
		t.Fatalf("expected QuotaExceeded on restore, got %v", err)
	}

	// 失败的恢复不落地：文件仍在回收站
	list, err := trashSvc.List(ctx, testOwner)
	if err != nil {
		t.Fatalf("list trash: %v", err)
	}

	if len(list.Files) != 1 || list.Files[0].ID != first.ID {
		t.Errorf("expected file to stay in trash, got %+v", list.Files)
	}
}

// TestUploadBatchAtomic 测试批量上传整批提交：超限时无任何落地.
func TestUploadBatchAtomic(t *testing.T) {
	ctx := newTestContext(t)
	setQuotaCeiling(t, 10)

	svc := service.NewFileService(ctx)

	over := []service.UploadItem{
		{Name: "a.txt", ContentType: "text/plain", Size: 6, Content: strings.NewReader("aaaaaa")},
		{Name: "b.txt", ContentType: "text/plain", Size: 6, Content: strings.NewReader("bbbbbb")},
	}

	if _, err := svc.UploadMany(ctx, testOwner, nil, over); !errs.IsQuotaExceeded(err) {
		t.Fatalf("expected QuotaExceeded for oversized batch, got %v", err)
	}

	usage, err := service.NewQuotaService(ctx).Usage(ctx, testOwner)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}

	if usage.UsedBytes != 0 {
		t.Errorf("expected zero usage after rejected batch, got %d", usage.UsedBytes)
	}

	list, err := svc.List(ctx, testOwner, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(list.Files) != 0 {
		t.Errorf("expected no files after rejected batch, got %+v", list.Files)
	}

	fits := []service.UploadItem{
		{Name: "a.txt", ContentType: "text/plain", Size: 4, Content: strings.NewReader("aaaa")},
		{Name: "b.txt", ContentType: "text/plain", Size: 4, Content: strings.NewReader("bbbb")},
	}

	resp, err := svc.UploadMany(ctx, testOwner, nil, fits)
	if err != nil {
		t.Fatalf("batch upload: %v", err)
	}

	if len(resp.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(resp.Files))
	}

	usage, err = service.NewQuotaService(ctx).Usage(ctx, testOwner)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}

	if usage.UsedBytes != 8 {
		t.Errorf("expected 8 used bytes, got %d", usage.UsedBytes)
	}
}
