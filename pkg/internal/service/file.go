// Package service 实现文件、文件夹、配额、回收站与最近访问的业务逻辑.
// 元数据以数据库为真源，字节内容通过 blob.Store 访问，写入顺序保证
// 不会出现指向不存在对象的记录.
package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"path"
	"time"

	"github.com/oklog/ulid"

	ctxPkg "github.com/yeisme/filevault/pkg/context"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/blob"
	"github.com/yeisme/filevault/pkg/internal/storage/db"
	"github.com/yeisme/filevault/pkg/internal/storage/mq"
	"github.com/yeisme/filevault/pkg/internal/types"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/queue"
)

const ulidLen = 26

// FileService 聚合文件操作所需的存储客户端.
type FileService struct {
	blobStore blob.Store
	dbClient  *db.Client
	mqClient  *mq.Client
}

// NewFileService 从 context 中解析存储客户端构造服务.
func NewFileService(c context.Context) *FileService {
	bs := ctxPkg.GetBlobStore(c)
	dbc := ctxPkg.GetDBClient(c)
	mqc := ctxPkg.GetMQClient(c)

	if dbc == nil || bs == nil {
		nlog.Logger().Fatal().Msg("storage manager not found in context")
	}

	return &FileService{
		blobStore: bs,
		dbClient:  dbc,
		mqClient:  mqc,
	}
}

// newID 生成按时间有序的 ULID，作为文件与文件夹主键.
func newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// buildObjectKey 构建对象存储键. 键内嵌 ID 前缀保证同名文件互不覆盖，
// 月份目录避免单目录过大.
func buildObjectKey(owner, id, name string) string {
	datePath := time.Now().UTC().Format("2006/01")

	return fmt.Sprintf("%s/%s/%s-%s", owner, datePath, id, name)
}

// renamedObjectKey 在保持目录与 ID 前缀不变的情况下替换键尾部的文件名.
func renamedObjectKey(oldKey, newName string) string {
	dir := path.Dir(oldKey)
	base := path.Base(oldKey)

	if len(base) > ulidLen {
		base = base[:ulidLen]
	}

	return fmt.Sprintf("%s/%s-%s", dir, base, newName)
}

// publish 发布领域事件. MQ 不可用时为 no-op，失败只记日志不影响主流程.
func publish[T any](ctx context.Context, client *mq.Client, topic string, payload T) {
	if client == nil {
		return
	}

	msg, err := queue.NewWatermillMessage(topic, payload, queue.WithProducer("filevault"))
	if err != nil {
		nlog.Logger().Error().Err(err).Str("topic", topic).Msg("encode event failed")

		return
	}

	if err := client.Publish(ctx, topic, msg); err != nil {
		nlog.Logger().Warn().Err(err).Str("topic", topic).Msg("publish event failed")
	}
}

// fileInfo 将模型转换为 HTTP 视图.
func fileInfo(f *model.File) types.FileInfo {
	info := types.FileInfo{
		ID:          f.ID,
		Name:        f.Name,
		FolderID:    f.FolderID,
		Size:        f.Size,
		ContentType: f.ContentType,
		MD5:         f.MD5,
		Favorite:    f.Favorite,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}

	if f.DeletedAt.Valid {
		t := f.DeletedAt.Time
		info.TrashedAt = &t
	}

	return info
}

// fileRef 构造事件负载中的文件引用.
func fileRef(f *model.File) queue.FileRef {
	ref := queue.FileRef{
		FileID:      f.ID,
		Owner:       f.Owner,
		Name:        f.Name,
		ObjectKey:   f.ObjectKey,
		Size:        f.Size,
		ContentType: f.ContentType,
	}

	if f.FolderID != nil {
		ref.FolderID = *f.FolderID
	}

	return ref
}
