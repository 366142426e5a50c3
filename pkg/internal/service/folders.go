package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/filevault/pkg/errs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/queue"
	"github.com/yeisme/filevault/pkg/rule"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// maxFolderDepth 祖先链遍历的安全上限，防止损坏数据导致死循环.
const maxFolderDepth = 1024

// FolderService 文件夹树管理.
type FolderService struct{ *FileService }

// NewFolderService 构造文件夹服务.
func NewFolderService(c context.Context) *FolderService { return &FolderService{NewFileService(c)} }

// withRowLock 在支持行锁的方言上加 FOR UPDATE；SQLite 的写事务本身
// 持有库级写锁，无需也不支持该子句.
func withRowLock(dbx *gorm.DB) *gorm.DB {
	switch dbx.Dialector.Name() {
	case "mysql", "postgres":
		return dbx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	return dbx
}

// getFolderIn 在给定的数据库会话中按 owner + id 加载文件夹.
func getFolderIn(dbx *gorm.DB, owner, id string) (*model.Folder, error) {
	var folder model.Folder

	err := dbx.Where("id = ? AND owner = ?", id, owner).First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("folder %s not found", id)
		}

		return nil, errs.StorageFault("load folder", err)
	}

	return &folder, nil
}

// getFolder 按 owner + id 加载文件夹，不存在或属于他人时返回 NotFound.
// 越权和不存在对外不可区分，避免泄露他人资源的存在性.
func (s *FileService) getFolder(ctx context.Context, owner, id string) (*model.Folder, error) {
	return getFolderIn(s.dbClient.GetDB().WithContext(ctx), owner, id)
}

// Create 在 parentID 下创建文件夹，parentID 为 nil 表示根层级.
// 同层允许同名，调用方按 ID 区分.
func (s *FolderService) Create(ctx context.Context, owner, name string, parentID *string) (types.FolderInfo, error) {
	if owner == "" {
		return types.FolderInfo{}, errs.InvalidArgument("owner is required")
	}

	name = strings.TrimSpace(name)
	if !rule.SafeName(name) {
		return types.FolderInfo{}, errs.InvalidArgument("invalid folder name %q", name)
	}

	if parentID != nil {
		if _, err := s.getFolder(ctx, owner, *parentID); err != nil {
			return types.FolderInfo{}, err
		}
	}

	folder := model.Folder{
		ID:       newID(),
		Owner:    owner,
		Name:     name,
		ParentID: parentID,
	}

	if err := s.dbClient.GetDB().WithContext(ctx).Create(&folder).Error; err != nil {
		return types.FolderInfo{}, errs.StorageFault("create folder", err)
	}

	payload := queue.FolderPayload{FolderID: folder.ID, Owner: owner, Name: name}
	if parentID != nil {
		payload.ParentID = *parentID
	}

	publish(ctx, s.mqClient, queue.TopicFolderCreated, payload)

	return folderInfo(&folder), nil
}

// Rename 修改文件夹显示名，不影响其内容.
func (s *FolderService) Rename(ctx context.Context, owner, id, name string) (types.FolderInfo, error) {
	name = strings.TrimSpace(name)
	if !rule.SafeName(name) {
		return types.FolderInfo{}, errs.InvalidArgument("invalid folder name %q", name)
	}

	folder, err := s.getFolder(ctx, owner, id)
	if err != nil {
		return types.FolderInfo{}, err
	}

	if err := s.dbClient.GetDB().WithContext(ctx).
		Model(folder).Update("name", name).Error; err != nil {
		return types.FolderInfo{}, errs.StorageFault("rename folder", err)
	}

	return folderInfo(folder), nil
}

// Move 将文件夹移动到 newParentID 下（nil 表示根层级）.
// 目标不能是该文件夹自身或其任何后代，否则树会断成环. 环检查与父指针
// 更新在同一事务内完成，被移动的行与祖先链均以行锁读出：并发的反向移动
// 会在对方持有的锁上等待，重读后看到已提交的父指针，两边不可能同时通过.
func (s *FolderService) Move(ctx context.Context, owner, id string, newParentID *string) (types.FolderInfo, error) {
	var folder *model.Folder

	err := s.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error

		folder, err = getFolderIn(withRowLock(tx), owner, id)
		if err != nil {
			return err
		}

		if newParentID != nil {
			if *newParentID == id {
				return errs.CycleDetected("cannot move folder %s into itself", id)
			}

			target, err := getFolderIn(withRowLock(tx), owner, *newParentID)
			if err != nil {
				return err
			}

			// 从目标出发沿祖先链向根走：遇到被移动的文件夹说明目标在其子树内
			if err := walkAncestorsIn(withRowLock(tx), owner, target, func(ancestor *model.Folder) error {
				if ancestor.ID == id {
					return errs.CycleDetected("cannot move folder %s into its descendant %s", id, target.ID)
				}

				return nil
			}); err != nil {
				return err
			}
		}

		if err := tx.Model(folder).Update("parent_id", newParentID).Error; err != nil {
			return errs.StorageFault("move folder", err)
		}

		return nil
	})
	if err != nil {
		return types.FolderInfo{}, err
	}

	folder.ParentID = newParentID

	payload := queue.FolderPayload{FolderID: folder.ID, Owner: owner, Name: folder.Name}
	if newParentID != nil {
		payload.ParentID = *newParentID
	}

	publish(ctx, s.mqClient, queue.TopicFolderMoved, payload)

	return folderInfo(folder), nil
}

// walkAncestorsIn 在给定的数据库会话中从 start 开始沿祖先链向根遍历，
// 对包含 start 在内的每个节点调用 fn. 深度超限视为数据损坏.
func walkAncestorsIn(dbx *gorm.DB, owner string, start *model.Folder, fn func(*model.Folder) error) error {
	current := start

	for depth := 0; ; depth++ {
		if depth > maxFolderDepth {
			return errs.StorageFault("walk ancestors", errs.InvalidState("folder tree deeper than %d, possible cycle", maxFolderDepth))
		}

		if err := fn(current); err != nil {
			return err
		}

		if current.ParentID == nil {
			return nil
		}

		parent, err := getFolderIn(dbx, owner, *current.ParentID)
		if err != nil {
			return err
		}

		current = parent
	}
}

func (s *FolderService) walkAncestors(ctx context.Context, owner string, start *model.Folder, fn func(*model.Folder) error) error {
	return walkAncestorsIn(s.dbClient.GetDB().WithContext(ctx), owner, start, fn)
}

// Path 返回从根到文件夹的面包屑路径.
func (s *FolderService) Path(ctx context.Context, owner, id string) ([]types.PathSegment, error) {
	folder, err := s.getFolder(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	var reversed []types.PathSegment

	if err := s.walkAncestors(ctx, owner, folder, func(f *model.Folder) error {
		reversed = append(reversed, types.PathSegment{ID: f.ID, Name: f.Name})

		return nil
	}); err != nil {
		return nil, err
	}

	segments := make([]types.PathSegment, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		segments = append(segments, reversed[i])
	}

	return segments, nil
}

// List 列出某层级的直接子文件夹与活跃文件. folderID 为 nil 表示根层级.
func (s *FolderService) List(ctx context.Context, owner string, folderID *string) (types.FolderContentsResponse, error) {
	if owner == "" {
		return types.FolderContentsResponse{}, errs.InvalidArgument("owner is required")
	}

	resp := types.FolderContentsResponse{
		Path:    []types.PathSegment{},
		Folders: []types.FolderInfo{},
		Files:   []types.FileInfo{},
	}

	dbx := s.dbClient.GetDB().WithContext(ctx)

	if folderID != nil {
		folder, err := s.getFolder(ctx, owner, *folderID)
		if err != nil {
			return types.FolderContentsResponse{}, err
		}

		info := folderInfo(folder)
		resp.Folder = &info

		path, err := s.Path(ctx, owner, *folderID)
		if err != nil {
			return types.FolderContentsResponse{}, err
		}

		resp.Path = path
	}

	var folders []model.Folder
	if err := scopeLevel(dbx.Where("owner = ?", owner), "parent_id", folderID).
		Order("name ASC").Find(&folders).Error; err != nil {
		return types.FolderContentsResponse{}, errs.StorageFault("list folders", err)
	}

	for i := range folders {
		resp.Folders = append(resp.Folders, folderInfo(&folders[i]))
	}

	var files []model.File
	if err := scopeLevel(dbx.Where("owner = ?", owner), "folder_id", folderID).
		Order("name ASC").Find(&files).Error; err != nil {
		return types.FolderContentsResponse{}, errs.StorageFault("list files", err)
	}

	for i := range files {
		resp.Files = append(resp.Files, fileInfo(&files[i]))
	}

	return resp, nil
}

// SetFavorite 设置或取消文件夹收藏. 标记已处于目标状态时拒绝，调用方
// 据此发现重复操作.
func (s *FolderService) SetFavorite(ctx context.Context, owner, id string, favorite bool) (types.FolderInfo, error) {
	folder, err := s.getFolder(ctx, owner, id)
	if err != nil {
		return types.FolderInfo{}, err
	}

	if folder.Favorite == favorite {
		return types.FolderInfo{}, errs.InvalidState("folder %s favorite flag already %t", id, favorite)
	}

	if err := s.dbClient.GetDB().WithContext(ctx).
		Model(folder).Update("favorite", favorite).Error; err != nil {
		return types.FolderInfo{}, errs.StorageFault("update folder favorite", err)
	}

	folder.Favorite = favorite

	return folderInfo(folder), nil
}

// ListFavorites 列出收藏的文件夹，按名称排序.
func (s *FolderService) ListFavorites(ctx context.Context, owner string) (types.ListFoldersResponse, error) {
	if owner == "" {
		return types.ListFoldersResponse{}, errs.InvalidArgument("owner is required")
	}

	var folders []model.Folder
	if err := s.dbClient.GetDB().WithContext(ctx).
		Where("owner = ? AND favorite = ?", owner, true).
		Order("name ASC").Find(&folders).Error; err != nil {
		return types.ListFoldersResponse{}, errs.StorageFault("list favorite folders", err)
	}

	resp := types.ListFoldersResponse{Folders: make([]types.FolderInfo, 0, len(folders))}
	for i := range folders {
		resp.Folders = append(resp.Folders, folderInfo(&folders[i]))
	}

	return resp, nil
}

// Tree 物化以 id 为根的完整子树：每个节点带自己的直接文件与递归展开的
// 子文件夹. 深度不设上限，响应规模由调用方控制. 树不驻留内存，每层通过
// parent_id 索引查询发现.
func (s *FolderService) Tree(ctx context.Context, owner, id string) (types.FolderTree, error) {
	if _, err := s.getFolder(ctx, owner, id); err != nil {
		return types.FolderTree{}, err
	}

	dbx := s.dbClient.GetDB().WithContext(ctx)

	folderIDs, err := collectSubtreeIn(dbx, owner, id)
	if err != nil {
		return types.FolderTree{}, err
	}

	var folders []model.Folder
	if err := dbx.Where("owner = ? AND id IN ?", owner, folderIDs).
		Order("name ASC").Find(&folders).Error; err != nil {
		return types.FolderTree{}, errs.StorageFault("load subtree folders", err)
	}

	var files []model.File
	if err := dbx.Where("owner = ? AND folder_id IN ?", owner, folderIDs).
		Order("name ASC").Find(&files).Error; err != nil {
		return types.FolderTree{}, errs.StorageFault("load subtree files", err)
	}

	nodes := make(map[string]*types.FolderTree, len(folders))
	children := make(map[string][]string)

	for i := range folders {
		nodes[folders[i].ID] = &types.FolderTree{
			Folder:   folderInfo(&folders[i]),
			Files:    []types.FileInfo{},
			Children: []types.FolderTree{},
		}

		if folders[i].ID != id && folders[i].ParentID != nil {
			children[*folders[i].ParentID] = append(children[*folders[i].ParentID], folders[i].ID)
		}
	}

	for i := range files {
		if files[i].FolderID == nil {
			continue
		}

		if node, ok := nodes[*files[i].FolderID]; ok {
			node.Files = append(node.Files, fileInfo(&files[i]))
		}
	}

	// folders 按名称有序，子节点按遍历顺序挂接即保持每层有序
	var assemble func(fid string) types.FolderTree
	assemble = func(fid string) types.FolderTree {
		node := *nodes[fid]
		for _, cid := range children[fid] {
			node.Children = append(node.Children, assemble(cid))
		}

		return node
	}

	return assemble(id), nil
}

// Delete 递归删除文件夹及其全部后代. 子树收集与删除在同一事务内完成，
// 并发的移动不会把后代挪进挪出已收集的集合. 子树中的文件（含回收站中的）
// 被物理删除，活跃文件占用的配额随之归还，对象在提交后尽力清除.
func (s *FolderService) Delete(ctx context.Context, owner, id string) (types.DeleteFolderResponse, error) {
	var (
		root *model.Folder
		resp types.DeleteFolderResponse
		keys []string
	)

	err := s.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error

		root, err = getFolderIn(withRowLock(tx), owner, id)
		if err != nil {
			return err
		}

		folderIDs, err := collectSubtreeIn(withRowLock(tx), owner, id)
		if err != nil {
			return err
		}

		var files []model.File
		if err := tx.Unscoped().
			Where("owner = ? AND folder_id IN ?", owner, folderIDs).
			Find(&files).Error; err != nil {
			return errs.StorageFault("list subtree files", err)
		}

		var activeBytes int64

		for i := range files {
			keys = append(keys, files[i].ObjectKey)

			if !files[i].InTrash() {
				activeBytes += files[i].Size
			}
		}

		if len(files) > 0 {
			if err := tx.Unscoped().
				Where("owner = ? AND folder_id IN ?", owner, folderIDs).
				Delete(&model.File{}).Error; err != nil {
				return errs.StorageFault("delete subtree files", err)
			}

			// 最近访问记录跟随文件清除
			fileIDs := make([]string, 0, len(files))
			for i := range files {
				fileIDs = append(fileIDs, files[i].ID)
			}

			if err := tx.Where("owner = ? AND file_id IN ?", owner, fileIDs).
				Delete(&model.RecentAccess{}).Error; err != nil {
				return errs.StorageFault("delete recent entries", err)
			}
		}

		res := tx.Where("owner = ? AND id IN ?", owner, folderIDs).Delete(&model.Folder{})
		if res.Error != nil {
			return errs.StorageFault("delete folders", res.Error)
		}

		if err := releaseQuota(tx, owner, activeBytes); err != nil {
			return err
		}

		resp.FoldersRemoved = int(res.RowsAffected)
		resp.FilesRemoved = len(files)
		resp.BytesFreed = activeBytes

		return nil
	})
	if err != nil {
		return types.DeleteFolderResponse{}, err
	}

	// 元数据已提交，对象删除尽力而为；残留对象可由后台巡检回收
	for _, key := range keys {
		if err := s.blobStore.Delete(ctx, key); err != nil {
			nlog.Logger().Warn().Err(err).Str("key", key).Msg("delete blob after folder removal failed")
		}
	}

	payload := queue.FolderDeletedPayload{
		Folder:       queue.FolderPayload{FolderID: root.ID, Owner: owner, Name: root.Name},
		FilesRemoved: resp.FilesRemoved,
		BytesFreed:   resp.BytesFreed,
	}
	publish(ctx, s.mqClient, queue.TopicFolderDeleted, payload)

	return resp, nil
}

// collectSubtreeIn 在给定的数据库会话中以广度优先收集 id 及其全部后代
// 的文件夹 ID.
func collectSubtreeIn(dbx *gorm.DB, owner, id string) ([]string, error) {
	all := []string{id}
	frontier := []string{id}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth > maxFolderDepth {
			return nil, errs.StorageFault("collect subtree", errs.InvalidState("folder tree deeper than %d, possible cycle", maxFolderDepth))
		}

		var children []string
		if err := dbx.Model(&model.Folder{}).
			Where("owner = ? AND parent_id IN ?", owner, frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, errs.StorageFault("list child folders", err)
		}

		all = append(all, children...)
		frontier = children
	}

	return all, nil
}

// scopeLevel 约束到某一层级：id 为 nil 时匹配 NULL 列.
func scopeLevel(dbx *gorm.DB, column string, id *string) *gorm.DB {
	if id == nil {
		return dbx.Where(column + " IS NULL")
	}

	return dbx.Where(column+" = ?", *id)
}

func folderInfo(f *model.Folder) types.FolderInfo {
	return types.FolderInfo{
		ID:        f.ID,
		Name:      f.Name,
		ParentID:  f.ParentID,
		Favorite:  f.Favorite,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
