// Package storage 聚合数据库、对象存储和消息队列客户端的初始化与访问.
//
// Example:
//
// 初始化
//
//	 ctx := context.Background()
//	 mgr, err := storage.Init(ctx)
//
//		if err != nil {
//		    // 处理错误
//		}
//
// 获取存储客户端
//
//	blobStore := mgr.GetBlobStore()
//	dbClient := mgr.GetDBClient()
package storage

import (
	"context"
	"sync"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/storage/blob"
	dbc "github.com/yeisme/filevault/pkg/internal/storage/db"
	mqc "github.com/yeisme/filevault/pkg/internal/storage/mq"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// Manager 聚合所有存储资源. MQ 为可选，连接失败只降级不致命.
type Manager struct {
	DB   *dbc.Client
	Blob blob.Store
	MQ   *mqc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置. 重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()
		m := &Manager{}

		// DB
		dbi, e := dbc.New(ctx, &cfg.DB)
		if e != nil {
			err = e

			return
		}

		m.DB = dbi

		// Blob
		bs, e := blob.New(ctx, &cfg.Blob)
		if e != nil {
			err = e

			return
		}

		m.Blob = bs

		// MQ：事件发布是尽力而为，broker 不可达时继续运行
		mqi, e := mqc.New(ctx, &cfg.MQ)
		if e != nil {
			nlog.Logger().Warn().Err(e).Msg("mq unavailable, event publishing disabled")
		} else {
			m.MQ = mqi
		}

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// NewManager 从已就绪的客户端组装 Manager，测试和嵌入场景使用.
func NewManager(db *dbc.Client, bs blob.Store, mq *mqc.Client) *Manager {
	return &Manager{DB: db, Blob: bs, MQ: mq}
}

// GetBlobStore 获取对象存储客户端.
func (m *Manager) GetBlobStore() blob.Store {
	return m.Blob
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 释放全部存储资源.
func (m *Manager) Close() error {
	var err error

	if m.MQ != nil {
		if e := m.MQ.Close(); e != nil {
			err = e
		}
	}

	if m.Blob != nil {
		if e := m.Blob.Close(); e != nil {
			err = e
		}
	}

	if m.DB != nil {
		if sqlDB, e := m.DB.DB.DB(); e == nil {
			if e := sqlDB.Close(); e != nil {
				err = e
			}
		}
	}

	return err
}
