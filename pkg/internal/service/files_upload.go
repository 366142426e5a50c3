package service

import (
	"context"
	"crypto/md5" //nolint:gosec // 内容指纹，非安全用途
	"encoding/hex"
	"io"
	"strings"

	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/errs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/types"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/queue"
	"github.com/yeisme/filevault/pkg/rule"
)

// UploadItem 一次上传中的单个文件.
type UploadItem struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Upload 接收单个文件并登记元数据.
func (s *FileService) Upload(ctx context.Context, owner string, folderID *string, name, contentType string, size int64, r io.Reader) (types.UploadFileResponse, error) {
	resp, err := s.UploadMany(ctx, owner, folderID, []UploadItem{
		{Name: name, ContentType: contentType, Size: size, Content: r},
	})
	if err != nil {
		return types.UploadFileResponse{}, err
	}

	return types.UploadFileResponse{File: resp.Files[0]}, nil
}

// UploadMany 接收一批文件并登记元数据，整批要么全部提交要么全部不落地.
//
// 顺序保证：整批的配额预留、对象写入、元数据插入在同一事务内完成. 预留
// 在任何对象写入之前进行，超限时没有任何写副作用. 对象写入失败时事务
// 回滚撤销预留，已写入的对象被补偿删除. 任何时刻都不会存在指向缺失对象
// 的记录，并发上传合计不会越过配额上限.
func (s *FileService) UploadMany(ctx context.Context, owner string, folderID *string, items []UploadItem) (types.ListFilesResponse, error) {
	if owner == "" {
		return types.ListFilesResponse{}, errs.InvalidArgument("owner is required")
	}

	if len(items) == 0 {
		return types.ListFilesResponse{}, errs.InvalidArgument("no files to upload")
	}

	var total int64

	for i := range items {
		items[i].Name = strings.TrimSpace(items[i].Name)
		if !rule.SafeName(items[i].Name) {
			return types.ListFilesResponse{}, errs.InvalidArgument("invalid file name %q", items[i].Name)
		}

		if items[i].Size < 0 {
			return types.ListFilesResponse{}, errs.InvalidArgument("size must be non-negative, got %d", items[i].Size)
		}

		total += items[i].Size
	}

	if folderID != nil {
		if _, err := s.getFolder(ctx, owner, *folderID); err != nil {
			return types.ListFilesResponse{}, err
		}
	}

	files := make([]model.File, len(items))
	for i := range items {
		files[i] = model.File{
			ID:          newID(),
			Owner:       owner,
			FolderID:    folderID,
			Name:        items[i].Name,
			Size:        items[i].Size,
			ContentType: items[i].ContentType,
		}
		files[i].ObjectKey = buildObjectKey(owner, files[i].ID, files[i].Name)
	}

	ceiling := configs.GetConfig().Quota.Ceiling()

	var written []string

	err := s.dbClient.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reserveQuota(tx, owner, total, ceiling); err != nil {
			return err
		}

		for i := range items {
			hasher := md5.New() //nolint:gosec // 内容指纹，非安全用途

			// 边写边算内容摘要
			if err := s.blobStore.Put(ctx, files[i].ObjectKey, io.TeeReader(items[i].Content, hasher), items[i].Size, items[i].ContentType); err != nil {
				return errs.StorageFault("store object "+files[i].Name, err)
			}

			written = append(written, files[i].ObjectKey)
			files[i].MD5 = hex.EncodeToString(hasher.Sum(nil))
		}

		if err := tx.Create(&files).Error; err != nil {
			return errs.StorageFault("insert file records", err)
		}

		return nil
	})
	if err != nil {
		// 回滚已撤销预留与记录，已写入的对象补偿删除，避免孤儿对象
		for _, key := range written {
			if derr := s.blobStore.Delete(ctx, key); derr != nil {
				nlog.Logger().Error().Err(derr).Str("key", key).Msg("compensating blob delete failed")
			}
		}

		return types.ListFilesResponse{}, err
	}

	metrics.UploadBytes.Add(float64(total))

	resp := types.ListFilesResponse{Files: make([]types.FileInfo, 0, len(files))}
	for i := range files {
		resp.Files = append(resp.Files, fileInfo(&files[i]))
		publish(ctx, s.mqClient, queue.TopicFileStored, queue.FileStoredPayload{File: fileRef(&files[i])})
	}

	return resp, nil
}
