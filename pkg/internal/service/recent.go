package service

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/filevault/pkg/errs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/types"
)

// RecentLimit 最近访问列表的容量上限.
const RecentLimit = 5

// touchRecent 记录一次访问：同一文件更新时间戳，随后裁剪到容量上限.
// 写入与裁剪在同一事务内完成，并发访问不会把更新的条目裁掉.
func (s *FileService) touchRecent(ctx context.Context, owner, fileID string) error {
	return s.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := model.RecentAccess{
			Owner:      owner,
			FileID:     fileID,
			AccessedAt: time.Now().UTC(),
		}

		// (owner, file_id) 唯一，重复访问只刷新时间
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}, {Name: "file_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"accessed_at"}),
		}).Create(&entry).Error; err != nil {
			return errs.StorageFault("upsert recent access", err)
		}

		return s.trimRecent(tx, owner)
	})
}

// trimRecent 淘汰最旧的条目，保持每个 owner 至多 RecentLimit 条.
func (s *FileService) trimRecent(dbx *gorm.DB, owner string) error {
	var keep []uint

	if err := dbx.Model(&model.RecentAccess{}).
		Where("owner = ?", owner).
		Order("accessed_at DESC").
		Limit(RecentLimit).
		Pluck("id", &keep).Error; err != nil {
		return errs.StorageFault("list recent access", err)
	}

	if err := dbx.Where("owner = ? AND id NOT IN ?", owner, keep).
		Delete(&model.RecentAccess{}).Error; err != nil {
		return errs.StorageFault("trim recent access", err)
	}

	return nil
}

// RecentService 最近访问查询.
type RecentService struct{ *FileService }

// NewRecentService 构造最近访问服务.
func NewRecentService(c context.Context) *RecentService { return &RecentService{NewFileService(c)} }

// Mark 显式登记一次访问. 回收站中的文件不可登记.
func (r *RecentService) Mark(ctx context.Context, owner, fileID string) error {
	if _, err := r.getActiveFile(ctx, owner, fileID); err != nil {
		return err
	}

	return r.touchRecent(ctx, owner, fileID)
}

// List 返回最近访问的活跃文件，最新在前. 指向已回收或已删除文件的
// 记录被过滤并顺手清除.
func (r *RecentService) List(ctx context.Context, owner string) (types.RecentFilesResponse, error) {
	if owner == "" {
		return types.RecentFilesResponse{}, errs.InvalidArgument("owner is required")
	}

	dbx := r.dbClient.GetDB().WithContext(ctx)

	var entries []model.RecentAccess
	if err := dbx.Where("owner = ?", owner).
		Order("accessed_at DESC").
		Limit(RecentLimit).
		Find(&entries).Error; err != nil {
		return types.RecentFilesResponse{}, errs.StorageFault("list recent access", err)
	}

	resp := types.RecentFilesResponse{Files: []types.RecentFileItem{}}

	var stale []uint

	for i := range entries {
		var file model.File

		err := dbx.Where("id = ? AND owner = ?", entries[i].FileID, owner).First(&file).Error
		if err != nil {
			// 文件已进回收站或被删除：记录悬空，清除之
			stale = append(stale, entries[i].ID)

			continue
		}

		resp.Files = append(resp.Files, types.RecentFileItem{
			File:       fileInfo(&file),
			AccessedAt: entries[i].AccessedAt,
		})
	}

	if len(stale) > 0 {
		if err := dbx.Where("id IN ?", stale).Delete(&model.RecentAccess{}).Error; err != nil {
			return types.RecentFilesResponse{}, errs.StorageFault("prune recent access", err)
		}
	}

	return resp, nil
}
