package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/errs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/types"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/queue"
)

// TrashService 提供回收站相关能力，基于 DB 软删除标记.
type TrashService struct{ *FileService }

// NewTrashService 构造回收站服务.
func NewTrashService(c context.Context) *TrashService { return &TrashService{NewFileService(c)} }

// List 列出回收站中的文件，最近回收在前.
func (t *TrashService) List(ctx context.Context, owner string) (types.TrashListResponse, error) {
	if owner == "" {
		return types.TrashListResponse{}, errs.InvalidArgument("owner is required")
	}

	var rows []model.File
	if err := t.dbClient.GetDB().WithContext(ctx).Unscoped().
		Where("owner = ? AND deleted_at IS NOT NULL", owner).
		Order("deleted_at DESC").Find(&rows).Error; err != nil {
		return types.TrashListResponse{}, errs.StorageFault("list trash", err)
	}

	resp := types.TrashListResponse{Files: make([]types.FileInfo, 0, len(rows))}
	for i := range rows {
		resp.Files = append(resp.Files, fileInfo(&rows[i]))
	}

	return resp, nil
}

// Restore 将文件移出回收站. 恢复重新占用配额，装不下时保持在回收站并
// 返回 QuotaExceeded. 对活跃文件恢复返回 InvalidState.
func (t *TrashService) Restore(ctx context.Context, owner, id string) (types.FileInfo, error) {
	file, err := t.getFile(ctx, owner, id, true)
	if err != nil {
		return types.FileInfo{}, err
	}

	if !file.InTrash() {
		return types.FileInfo{}, errs.InvalidState("file %s is not in trash", id)
	}

	// 所在文件夹可能已被连子树删除，恢复到根层级
	restoreFolder := file.FolderID
	if restoreFolder != nil {
		if _, err := t.getFolder(ctx, owner, *restoreFolder); err != nil {
			if errs.IsNotFound(err) {
				restoreFolder = nil
			} else {
				return types.FileInfo{}, err
			}
		}
	}

	ceiling := configs.GetConfig().Quota.Ceiling()

	err = t.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reserveQuota(tx, owner, file.Size, ceiling); err != nil {
			return err
		}

		res := tx.Unscoped().Model(&model.File{}).
			Where("id = ? AND owner = ? AND deleted_at IS NOT NULL", id, owner).
			Updates(map[string]any{"deleted_at": nil, "folder_id": restoreFolder})
		if res.Error != nil {
			return errs.StorageFault("restore file", res.Error)
		}

		if res.RowsAffected == 0 {
			return errs.InvalidState("file %s is not in trash", id)
		}

		return nil
	})
	if err != nil {
		return types.FileInfo{}, err
	}

	file.DeletedAt = gorm.DeletedAt{}
	file.FolderID = restoreFolder

	publish(ctx, t.mqClient, queue.TopicFileRestored, queue.FileRestoredPayload{File: fileRef(file)})

	return fileInfo(file), nil
}

// DeletePermanently 从回收站物理删除单个文件. 配额在进入回收站时已
// 释放，这里只清除记录与对象.
func (t *TrashService) DeletePermanently(ctx context.Context, owner, id string) error {
	file, err := t.getFile(ctx, owner, id, true)
	if err != nil {
		return err
	}

	if !file.InTrash() {
		return errs.InvalidState("file %s is not in trash", id)
	}

	return t.purge(ctx, owner, []model.File{*file}, queue.TopicFileDeleted)
}

// Empty 清空回收站.
func (t *TrashService) Empty(ctx context.Context, owner string) (types.PurgeTrashResponse, error) {
	if owner == "" {
		return types.PurgeTrashResponse{}, errs.InvalidArgument("owner is required")
	}

	var rows []model.File
	if err := t.dbClient.GetDB().WithContext(ctx).Unscoped().
		Where("owner = ? AND deleted_at IS NOT NULL", owner).
		Find(&rows).Error; err != nil {
		return types.PurgeTrashResponse{}, errs.StorageFault("list trash", err)
	}

	if err := t.purge(ctx, owner, rows, queue.TopicFileDeleted); err != nil {
		return types.PurgeTrashResponse{}, err
	}

	return purgeSummary(rows), nil
}

// AutoClean 物理删除回收时间早于 before 的文件，定时任务调用.
func (t *TrashService) AutoClean(ctx context.Context, owner string, before time.Time) (types.PurgeTrashResponse, error) {
	if owner == "" {
		return types.PurgeTrashResponse{}, errs.InvalidArgument("owner is required")
	}

	if before.IsZero() {
		return types.PurgeTrashResponse{}, errs.InvalidArgument("before is required")
	}

	var rows []model.File
	if err := t.dbClient.GetDB().WithContext(ctx).Unscoped().
		Where("owner = ? AND deleted_at IS NOT NULL AND deleted_at < ?", owner, before).
		Find(&rows).Error; err != nil {
		return types.PurgeTrashResponse{}, errs.StorageFault("list expired trash", err)
	}

	if len(rows) == 0 {
		return types.PurgeTrashResponse{}, nil
	}

	if err := t.purge(ctx, owner, rows, queue.TopicTrashPurged); err != nil {
		return types.PurgeTrashResponse{}, err
	}

	summary := purgeSummary(rows)

	publish(ctx, t.mqClient, queue.TopicTrashPurged, queue.TrashPurgedPayload{
		Owner:        owner,
		FilesRemoved: summary.FilesRemoved,
		BytesFreed:   summary.BytesFreed,
	})

	return summary, nil
}

// purge 硬删记录及其最近访问条目，随后尽力清除对象.
func (t *TrashService) purge(ctx context.Context, owner string, rows []model.File, topic string) error {
	if len(rows) == 0 {
		return nil
	}

	ids := make([]string, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}

	err := t.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("owner = ? AND id IN ?", owner, ids).
			Delete(&model.File{}).Error; err != nil {
			return errs.StorageFault("purge trash", err)
		}

		if err := tx.Where("owner = ? AND file_id IN ?", owner, ids).
			Delete(&model.RecentAccess{}).Error; err != nil {
			return errs.StorageFault("purge recent entries", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	for i := range rows {
		if err := t.blobStore.Delete(ctx, rows[i].ObjectKey); err != nil {
			nlog.Logger().Warn().Err(err).Str("key", rows[i].ObjectKey).Msg("delete blob after purge failed")
		}

		if topic == queue.TopicFileDeleted {
			publish(ctx, t.mqClient, topic, queue.FileDeletedPayload{File: fileRef(&rows[i])})
		}
	}

	return nil
}

func purgeSummary(rows []model.File) types.PurgeTrashResponse {
	var resp types.PurgeTrashResponse

	resp.FilesRemoved = len(rows)
	for i := range rows {
		resp.BytesFreed += rows[i].Size
	}

	return resp
}
