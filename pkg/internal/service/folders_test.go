package service_test

import (
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/yeisme/filevault/pkg/errs"
	"github.com/yeisme/filevault/pkg/internal/service"
)

// TestCreateFolderTree 测试多层文件夹创建与父级校验.
func TestCreateFolderTree(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFolderService(ctx)

	reports := createFolder(t, ctx, testOwner, "Reports", nil)
	year := createFolder(t, ctx, testOwner, "2024", &reports.ID)

	if year.ParentID == nil || *year.ParentID != reports.ID {
		t.Errorf("expected 2024 parent to be %s, got %v", reports.ID, year.ParentID)
	}

	// 父级不存在
	missing := "01HMISSINGPARENT0000000000"
	if _, err := svc.Create(ctx, testOwner, "orphan", &missing); !errs.IsNotFound(err) {
		t.Errorf("expected NotFound for missing parent, got %v", err)
	}

	// 非法名称
	for _, name := range []string{"", ".", "..", "a/b", "a\\b"} {
		if _, err := svc.Create(ctx, testOwner, name, nil); !errs.IsInvalidArgument(err) {
			t.Errorf("expected InvalidArgument for name %q, got %v", name, err)
		}
	}
}

// TestMoveFolderCycleRejected 测试把文件夹移入自己的后代会被拒绝且树保持不变.
func TestMoveFolderCycleRejected(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFolderService(ctx)

	reports := createFolder(t, ctx, testOwner, "Reports", nil)
	year := createFolder(t, ctx, testOwner, "2024", &reports.ID)

	// Reports -> Reports/2024 会形成环
	if _, err := svc.Move(ctx, testOwner, reports.ID, &year.ID); !errs.IsCycleDetected(err) {
		t.Fatalf("expected CycleDetected, got %v", err)
	}

	// 移入自身同样被拒绝
	if _, err := svc.Move(ctx, testOwner, reports.ID, &reports.ID); !errs.IsCycleDetected(err) {
		t.Fatalf("expected CycleDetected for self move, got %v", err)
	}

	// 树保持原状
	contents, err := svc.List(ctx, testOwner, nil)
	if err != nil {
		t.Fatalf("list root: %v", err)
	}

	if len(contents.Folders) != 1 || contents.Folders[0].ID != reports.ID {
		t.Errorf("expected Reports to remain at root, got %+v", contents.Folders)
	}
}

// TestMoveFolderConcurrentReverse 测试两个方向相反的移动并发执行时，
// 至多一个成功，树始终保持无环.
func TestMoveFolderConcurrentReverse(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFolderService(ctx)

	const rounds = 100

	for i := 0; i < rounds; i++ {
		a := createFolder(t, ctx, testOwner, fmt.Sprintf("a-%d", i), nil)
		a1 := createFolder(t, ctx, testOwner, "a1", &a.ID)
		a2 := createFolder(t, ctx, testOwner, "a2", &a1.ID)

		b := createFolder(t, ctx, testOwner, fmt.Sprintf("b-%d", i), nil)
		b1 := createFolder(t, ctx, testOwner, "b1", &b.ID)
		b2 := createFolder(t, ctx, testOwner, "b2", &b1.ID)

		var g errgroup.Group
		results := make([]error, 2)

		g.Go(func() error {
			_, results[0] = svc.Move(ctx, testOwner, a.ID, &b2.ID)

			return nil
		})
		g.Go(func() error {
			_, results[1] = svc.Move(ctx, testOwner, b.ID, &a2.ID)

			return nil
		})
		_ = g.Wait()

		ok := 0

		for _, err := range results {
			switch {
			case err == nil:
				ok++
			case errs.IsCycleDetected(err):
			default:
				t.Fatalf("round %d: unexpected move error: %v", i, err)
			}
		}

		if ok == 2 {
			t.Fatalf("round %d: both reverse moves committed", i)
		}

		// 两个深层节点的祖先链都必须能走到根
		for _, id := range []string{a2.ID, b2.ID} {
			if _, err := svc.Path(ctx, testOwner, id); err != nil {
				t.Fatalf("round %d: ancestor chain broken for %s: %v", i, id, err)
			}
		}
	}
}

// TestMoveFolderToRoot 测试文件夹移动到根层级与合法移动.
func TestMoveFolderToRoot(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFolderService(ctx)

	reports := createFolder(t, ctx, testOwner, "Reports", nil)
	year := createFolder(t, ctx, testOwner, "2024", &reports.ID)

	moved, err := svc.Move(ctx, testOwner, year.ID, nil)
	if err != nil {
		t.Fatalf("move to root: %v", err)
	}

	if moved.ParentID != nil {
		t.Errorf("expected nil parent after move to root, got %v", *moved.ParentID)
	}

	// 再移回去
	moved, err = svc.Move(ctx, testOwner, year.ID, &reports.ID)
	if err != nil {
		t.Fatalf("move back: %v", err)
	}

	if moved.ParentID == nil || *moved.ParentID != reports.ID {
		t.Errorf("expected parent %s, got %v", reports.ID, moved.ParentID)
	}
}

// TestFolderPath 测试面包屑路径根在前.
func TestFolderPath(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFolderService(ctx)

	a := createFolder(t, ctx, testOwner, "a", nil)
	b := createFolder(t, ctx, testOwner, "b", &a.ID)
	c := createFolder(t, ctx, testOwner, "c", &b.ID)

	path, err := svc.Path(ctx, testOwner, c.ID)
	if err != nil {
		t.Fatalf("path: %v", err)
	}

	want := []string{a.ID, b.ID, c.ID}
	if len(path) != len(want) {
		t.Fatalf("expected %d segments, got %d", len(want), len(path))
	}

	for i, id := range want {
		if path[i].ID != id {
			t.Errorf("segment %d: expected %s, got %s", i, id, path[i].ID)
		}
	}
}

// TestListFolderContents 测试单层列表按名称排序且不含回收站文件.
func TestListFolderContents(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFolderService(ctx)
	fileSvc := service.NewFileService(ctx)

	docs := createFolder(t, ctx, testOwner, "docs", nil)
	createFolder(t, ctx, testOwner, "zeta", &docs.ID)
	createFolder(t, ctx, testOwner, "alpha", &docs.ID)

	b := uploadFile(t, ctx, testOwner, &docs.ID, "b.txt", "bb")
	uploadFile(t, ctx, testOwner, &docs.ID, "a.txt", "aa")

	if _, err := fileSvc.Trash(ctx, testOwner, b.ID); err != nil {
		t.Fatalf("trash: %v", err)
	}

	contents, err := svc.List(ctx, testOwner, &docs.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if contents.Folder == nil || contents.Folder.ID != docs.ID {
		t.Errorf("expected folder %s in response, got %+v", docs.ID, contents.Folder)
	}

	if len(contents.Folders) != 2 || contents.Folders[0].Name != "alpha" || contents.Folders[1].Name != "zeta" {
		t.Errorf("expected folders [alpha zeta], got %+v", contents.Folders)
	}

	if len(contents.Files) != 1 || contents.Files[0].Name != "a.txt" {
		t.Errorf("expected only a.txt (b.txt is in trash), got %+v", contents.Files)
	}
}

// TestListOtherOwnerInvisible 测试租户之间互不可见.
func TestListOtherOwnerInvisible(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFolderService(ctx)

	mine := createFolder(t, ctx, testOwner, "mine", nil)
	createFolder(t, ctx, "bob@example.com", "theirs", nil)

	contents, err := svc.List(ctx, testOwner, nil)
	if err != nil {
		t.Fatalf("list root: %v", err)
	}

	if len(contents.Folders) != 1 || contents.Folders[0].ID != mine.ID {
		t.Errorf("expected only own folder, got %+v", contents.Folders)
	}

	// 他人的文件夹按不存在处理
	if _, err := svc.List(ctx, "bob@example.com", &mine.ID); !errs.IsNotFound(err) {
		t.Errorf("expected NotFound for foreign folder, got %v", err)
	}
}

// TestDeleteFolderRecursive 测试递归删除：子树整体消失，活跃文件的配额归还.
func TestDeleteFolderRecursive(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFolderService(ctx)
	quotaSvc := service.NewQuotaService(ctx)

	root := createFolder(t, ctx, testOwner, "project", nil)
	sub := createFolder(t, ctx, testOwner, "assets", &root.ID)

	uploadFile(t, ctx, testOwner, &root.ID, "readme.md", "hello")
	uploadFile(t, ctx, testOwner, &sub.ID, "logo.png", "binarybits")

	resp, err := svc.Delete(ctx, testOwner, root.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	if resp.FoldersRemoved != 2 || resp.FilesRemoved != 2 {
		t.Errorf("expected 2 folders and 2 files removed, got %+v", resp)
	}

	if want := int64(len("hello") + len("binarybits")); resp.BytesFreed != want {
		t.Errorf("expected %d bytes freed, got %d", want, resp.BytesFreed)
	}

	usage, err := quotaSvc.Usage(ctx, testOwner)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}

	if usage.UsedBytes != 0 {
		t.Errorf("expected zero usage after recursive delete, got %d", usage.UsedBytes)
	}

	if _, err := svc.List(ctx, testOwner, &sub.ID); !errs.IsNotFound(err) {
		t.Errorf("expected subfolder to be gone, got %v", err)
	}
}

// TestRenameFolder 测试文件夹重命名与非法名称拒绝.
func TestRenameFolder(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFolderService(ctx)

	docs := createFolder(t, ctx, testOwner, "docs", nil)

	renamed, err := svc.Rename(ctx, testOwner, docs.ID, "documents")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}

	if renamed.Name != "documents" {
		t.Errorf("expected name documents, got %s", renamed.Name)
	}

	if _, err := svc.Rename(ctx, testOwner, docs.ID, "../escape"); !errs.IsInvalidArgument(err) {
		t.Errorf("expected InvalidArgument for path-like name, got %v", err)
	}
}

// TestFolderNameTrimmed 测试名称先去除首尾空白再校验：纯空白被拒绝，
// 合法名称以去白后的形式落库.
func TestFolderNameTrimmed(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFolderService(ctx)

	created, err := svc.Create(ctx, testOwner, "  docs  ", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.Name != "docs" {
		t.Errorf("expected trimmed name docs, got %q", created.Name)
	}

	for _, name := range []string{"   ", "\t", " \n "} {
		if _, err := svc.Create(ctx, testOwner, name, nil); !errs.IsInvalidArgument(err) {
			t.Errorf("expected InvalidArgument for whitespace name %q, got %v", name, err)
		}

		if _, err := svc.Rename(ctx, testOwner, created.ID, name); !errs.IsInvalidArgument(err) {
			t.Errorf("expected InvalidArgument for whitespace rename %q, got %v", name, err)
		}
	}

	renamed, err := svc.Rename(ctx, testOwner, created.ID, " archive ")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}

	if renamed.Name != "archive" {
		t.Errorf("expected trimmed name archive, got %q", renamed.Name)
	}
}

// TestFolderTree 测试子树物化：嵌套结构完整且各层按名称有序.
func TestFolderTree(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFolderService(ctx)

	docs := createFolder(t, ctx, testOwner, "docs", nil)
	img := createFolder(t, ctx, testOwner, "img", &docs.ID)
	archive := createFolder(t, ctx, testOwner, "archive", &docs.ID)

	uploadFile(t, ctx, testOwner, &docs.ID, "readme.md", "r")
	uploadFile(t, ctx, testOwner, &img.ID, "logo.png", "l")
	trashed := uploadFile(t, ctx, testOwner, &docs.ID, "old.md", "o")

	fileSvc := service.NewFileService(ctx)
	if _, err := fileSvc.Trash(ctx, testOwner, trashed.ID); err != nil {
		t.Fatalf("trash: %v", err)
	}

	tree, err := svc.Tree(ctx, testOwner, docs.ID)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}

	if tree.Folder.ID != docs.ID {
		t.Fatalf("expected root %s, got %s", docs.ID, tree.Folder.ID)
	}

	// 回收站中的文件不出现在树里
	if len(tree.Files) != 1 || tree.Files[0].Name != "readme.md" {
		t.Errorf("expected only readme.md at root, got %+v", tree.Files)
	}

	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(tree.Children))
	}

	if tree.Children[0].Folder.ID != archive.ID || tree.Children[1].Folder.ID != img.ID {
		t.Errorf("expected children ordered by name, got %s then %s",
			tree.Children[0].Folder.Name, tree.Children[1].Folder.Name)
	}

	if len(tree.Children[1].Files) != 1 || tree.Children[1].Files[0].Name != "logo.png" {
		t.Errorf("expected logo.png under img, got %+v", tree.Children[1].Files)
	}

	if _, err := svc.Tree(ctx, "mallory@example.com", docs.ID); !errs.IsNotFound(err) {
		t.Errorf("expected NotFound for foreign tree, got %v", err)
	}
}

// TestFolderFavoriteToggle 测试文件夹收藏：重复设置被拒绝，列表按名称有序.
func TestFolderFavoriteToggle(t *testing.T) {
	ctx := newTestContext(t)
	svc := service.NewFolderService(ctx)

	work := createFolder(t, ctx, testOwner, "work", nil)
	home := createFolder(t, ctx, testOwner, "home", nil)

	for _, id := range []string{work.ID, home.ID} {
		if _, err := svc.SetFavorite(ctx, testOwner, id, true); err != nil {
			t.Fatalf("set favorite: %v", err)
		}
	}

	if _, err := svc.SetFavorite(ctx, testOwner, work.ID, true); !errs.IsInvalidState(err) {
		t.Errorf("expected InvalidState for redundant set, got %v", err)
	}

	list, err := svc.ListFavorites(ctx, testOwner)
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}

	if len(list.Folders) != 2 || list.Folders[0].ID != home.ID || list.Folders[1].ID != work.ID {
		t.Errorf("expected home then work, got %+v", list.Folders)
	}

	if _, err := svc.SetFavorite(ctx, testOwner, home.ID, false); err != nil {
		t.Fatalf("unset favorite: %v", err)
	}

	list, err = svc.ListFavorites(ctx, testOwner)
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}

	if len(list.Folders) != 1 || list.Folders[0].ID != work.ID {
		t.Errorf("expected only work, got %+v", list.Folders)
	}
}
