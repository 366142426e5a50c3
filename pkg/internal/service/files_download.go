package service

import (
	"context"
	"io"

	"github.com/yeisme/filevault/pkg/errs"
	"github.com/yeisme/filevault/pkg/internal/types"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/queue"
)

// Download 打开文件内容流. 调用方负责关闭 ReadCloser.
// 成功打开即视为一次访问，写入最近访问记录.
func (s *FileService) Download(ctx context.Context, owner, id string) (types.FileInfo, io.ReadCloser, error) {
	file, err := s.getActiveFile(ctx, owner, id)
	if err != nil {
		return types.FileInfo{}, nil, err
	}

	rc, err := s.blobStore.Get(ctx, file.ObjectKey)
	if err != nil {
		return types.FileInfo{}, nil, errs.StorageFault("open object", err)
	}

	if err := s.touchRecent(ctx, owner, file.ID); err != nil {
		// 访问记录是尽力而为，不阻塞下载
		nlog.Logger().Warn().Err(err).Str("file", file.ID).Msg("record recent access failed")
	}

	publish(ctx, s.mqClient, queue.TopicFileAccessed, queue.FileAccessedPayload{File: fileRef(file)})

	return fileInfo(file), rc, nil
}
