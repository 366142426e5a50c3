package service

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/errs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/types"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/queue"
	"github.com/yeisme/filevault/pkg/rule"
)

// getFile 按 owner + id 加载文件记录，includeTrashed 控制是否包含回收站中的文件.
func (s *FileService) getFile(ctx context.Context, owner, id string, includeTrashed bool) (*model.File, error) {
	var file model.File

	dbx := s.dbClient.GetDB().WithContext(ctx)
	if includeTrashed {
		dbx = dbx.Unscoped()
	}

	err := dbx.Where("id = ? AND owner = ?", id, owner).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("file %s not found", id)
		}

		return nil, errs.StorageFault("load file", err)
	}

	return &file, nil
}

// getActiveFile 加载未进回收站的文件. 对回收站中的文件操作返回 InvalidState.
func (s *FileService) getActiveFile(ctx context.Context, owner, id string) (*model.File, error) {
	file, err := s.getFile(ctx, owner, id, true)
	if err != nil {
		return nil, err
	}

	if file.InTrash() {
		return nil, errs.InvalidState("file %s is in trash", id)
	}

	return file, nil
}

// Move 将文件移动到 folderID 下（nil 表示根层级）.
func (s *FileService) Move(ctx context.Context, owner, id string, folderID *string) (types.FileInfo, error) {
	file, err := s.getActiveFile(ctx, owner, id)
	if err != nil {
		return types.FileInfo{}, err
	}

	if folderID != nil {
		if _, err := s.getFolder(ctx, owner, *folderID); err != nil {
			return types.FileInfo{}, err
		}
	}

	from := file.FolderID

	if err := s.dbClient.GetDB().WithContext(ctx).
		Model(file).Update("folder_id", folderID).Error; err != nil {
		return types.FileInfo{}, errs.StorageFault("move file", err)
	}

	file.FolderID = folderID

	payload := queue.FileMovedPayload{File: fileRef(file)}
	if from != nil {
		payload.FromFolderID = *from
	}

	publish(ctx, s.mqClient, queue.TopicFileMoved, payload)

	return fileInfo(file), nil
}

// ensureExtension 保留原扩展名：新名字未带原扩展名时补在末尾.
func ensureExtension(name, oldName string) string {
	ext := path.Ext(oldName)
	if ext == "" || strings.EqualFold(path.Ext(name), ext) {
		return name
	}

	return name + ext
}

// copyName 在扩展名前插入 -copy 标记，便于与原件区分.
func copyName(name string) string {
	ext := path.Ext(name)

	return strings.TrimSuffix(name, ext) + "-copy" + ext
}

// Rename 修改文件显示名，扩展名沿用原件；对象键同步变更以保持键尾与
// 名字一致. 先移动对象再提交元数据：对象移动失败时记录保持原状.
func (s *FileService) Rename(ctx context.Context, owner, id, name string) (types.FileInfo, error) {
	name = strings.TrimSpace(name)
	if !rule.SafeName(name) {
		return types.FileInfo{}, errs.InvalidArgument("invalid file name %q", name)
	}

	file, err := s.getActiveFile(ctx, owner, id)
	if err != nil {
		return types.FileInfo{}, err
	}

	name = ensureExtension(name, file.Name)

	if name == file.Name {
		return fileInfo(file), nil
	}

	oldName, oldKey := file.Name, file.ObjectKey
	newKey := renamedObjectKey(oldKey, name)

	if err := s.blobStore.Rename(ctx, oldKey, newKey); err != nil {
		return types.FileInfo{}, errs.StorageFault("rename object", err)
	}

	if err := s.dbClient.GetDB().WithContext(ctx).Model(file).
		Updates(map[string]any{"name": name, "object_key": newKey}).Error; err != nil {
		// 元数据失败：把对象移回去，保持记录与对象一致
		if rerr := s.blobStore.Rename(ctx, newKey, oldKey); rerr != nil {
			nlog.Logger().Error().Err(rerr).Str("key", newKey).Msg("compensating blob rename failed")
		}

		return types.FileInfo{}, errs.StorageFault("rename file record", err)
	}

	file.Name = name
	file.ObjectKey = newKey

	publish(ctx, s.mqClient, queue.TopicFileRenamed, queue.FileRenamedPayload{
		File:         fileRef(file),
		PreviousName: oldName,
		PreviousKey:  oldKey,
	})

	return fileInfo(file), nil
}

// Copy 复制文件到 folderID（nil 表示保持源文件所在层级）. 副本获得新
// ID 与新对象键，字节独立，复制量计入配额.
func (s *FileService) Copy(ctx context.Context, owner, id string, folderID *string) (types.FileInfo, error) {
	src, err := s.getActiveFile(ctx, owner, id)
	if err != nil {
		return types.FileInfo{}, err
	}

	target := src.FolderID
	if folderID != nil {
		if _, err := s.getFolder(ctx, owner, *folderID); err != nil {
			return types.FileInfo{}, err
		}

		target = folderID
	}

	dup := model.File{
		ID:          newID(),
		Owner:       owner,
		FolderID:    target,
		Name:        copyName(src.Name),
		Size:        src.Size,
		ContentType: src.ContentType,
		MD5:         src.MD5,
	}
	dup.ObjectKey = buildObjectKey(owner, dup.ID, dup.Name)

	ceiling := configs.GetConfig().Quota.Ceiling()

	err = s.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reserveQuota(tx, owner, dup.Size, ceiling); err != nil {
			return err
		}

		if err := s.blobStore.Copy(ctx, src.ObjectKey, dup.ObjectKey); err != nil {
			return errs.StorageFault("copy object", err)
		}

		if err := tx.Create(&dup).Error; err != nil {
			if derr := s.blobStore.Delete(ctx, dup.ObjectKey); derr != nil {
				nlog.Logger().Error().Err(derr).Str("key", dup.ObjectKey).Msg("compensating blob delete failed")
			}

			return errs.StorageFault("insert file copy", err)
		}

		return nil
	})
	if err != nil {
		return types.FileInfo{}, err
	}

	publish(ctx, s.mqClient, queue.TopicFileCopied, queue.FileCopiedPayload{File: fileRef(&dup), SourceID: src.ID})

	return fileInfo(&dup), nil
}

// SetFavorite 设置或取消收藏. 标记已处于目标状态时拒绝，调用方据此
// 发现重复操作.
func (s *FileService) SetFavorite(ctx context.Context, owner, id string, favorite bool) (types.FileInfo, error) {
	file, err := s.getActiveFile(ctx, owner, id)
	if err != nil {
		return types.FileInfo{}, err
	}

	if file.Favorite == favorite {
		return types.FileInfo{}, errs.InvalidState("file %s favorite flag already %t", id, favorite)
	}

	if err := s.dbClient.GetDB().WithContext(ctx).
		Model(file).Update("favorite", favorite).Error; err != nil {
		return types.FileInfo{}, errs.StorageFault("update favorite", err)
	}

	file.Favorite = favorite

	return fileInfo(file), nil
}

// List 列出某层级下的活跃文件，最新上传在前. folderID 为 nil 表示根
// 层级的散文件.
func (s *FileService) List(ctx context.Context, owner string, folderID *string) (types.ListFilesResponse, error) {
	if owner == "" {
		return types.ListFilesResponse{}, errs.InvalidArgument("owner is required")
	}

	if folderID != nil {
		if _, err := s.getFolder(ctx, owner, *folderID); err != nil {
			return types.ListFilesResponse{}, err
		}
	}

	var files []model.File
	if err := scopeLevel(s.dbClient.GetDB().WithContext(ctx).Where("owner = ?", owner), "folder_id", folderID).
		Order("created_at DESC").Find(&files).Error; err != nil {
		return types.ListFilesResponse{}, errs.StorageFault("list files", err)
	}

	resp := types.ListFilesResponse{Files: make([]types.FileInfo, 0, len(files))}
	for i := range files {
		resp.Files = append(resp.Files, fileInfo(&files[i]))
	}

	return resp, nil
}

// ListFavorites 列出收藏的活跃文件，按名称排序.
func (s *FileService) ListFavorites(ctx context.Context, owner string) (types.ListFilesResponse, error) {
	if owner == "" {
		return types.ListFilesResponse{}, errs.InvalidArgument("owner is required")
	}

	var files []model.File
	if err := s.dbClient.GetDB().WithContext(ctx).
		Where("owner = ? AND favorite = ?", owner, true).
		Order("name ASC").Find(&files).Error; err != nil {
		return types.ListFilesResponse{}, errs.StorageFault("list favorites", err)
	}

	resp := types.ListFilesResponse{Files: make([]types.FileInfo, 0, len(files))}
	for i := range files {
		resp.Files = append(resp.Files, fileInfo(&files[i]))
	}

	return resp, nil
}

// Trash 将文件移入回收站. 配额立即释放，对象保留以支持恢复.
func (s *FileService) Trash(ctx context.Context, owner, id string) (types.FileInfo, error) {
	file, err := s.getActiveFile(ctx, owner, id)
	if err != nil {
		return types.FileInfo{}, err
	}

	err = s.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner = ? AND deleted_at IS NULL", id, owner).Delete(&model.File{})
		if res.Error != nil {
			return errs.StorageFault("trash file", res.Error)
		}

		if res.RowsAffected == 0 {
			return errs.InvalidState("file %s is already in trash", id)
		}

		return releaseQuota(tx, owner, file.Size)
	})
	if err != nil {
		return types.FileInfo{}, err
	}

	now := time.Now()
	file.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}

	publish(ctx, s.mqClient, queue.TopicFileTrashed, queue.FileTrashedPayload{File: fileRef(file)})

	return fileInfo(file), nil
}
