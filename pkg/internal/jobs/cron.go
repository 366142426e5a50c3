// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/yeisme/filevault/pkg/configs"
	ctxPkg "github.com/yeisme/filevault/pkg/context"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 每天 07:00 和 19:00 清理回收站中超过保留期的文件
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	if err := sched.AddCron(JobTrashAutoCleanMorning, CronTrashAutoCleanMorning, func(ctx context.Context) {
		runTrashAutoClean(ctx, mgr)
	}, baseCtx); err != nil {
		return err
	}

	return sched.AddCron(JobTrashAutoCleanEvening, CronTrashAutoCleanEvening, func(ctx context.Context) {
		runTrashAutoClean(ctx, mgr)
	}, baseCtx)
}

// runTrashAutoClean 遍历所有租户，清除回收时间早于保留期的文件.
func runTrashAutoClean(ctx context.Context, mgr *storage.Manager) {
	l := log.Logger().With().Str("job", "trash.auto_clean").Logger()

	owners, err := listAllOwners(ctx, mgr)
	if err != nil {
		l.Error().Err(err).Msg("list owners failed")

		return
	}

	retention := configs.GetConfig().Trash.RetentionDays
	before := time.Now().AddDate(0, 0, -retention)

	svcCtx := ctxPkg.WithStorageManager(ctx, mgr)

	for _, owner := range owners {
		svc := service.NewTrashService(svcCtx)

		summary, e := svc.AutoClean(ctx, owner, before)
		if e != nil {
			l.Error().Err(e).Str("owner", owner).Msg("auto clean failed")

			continue
		}

		if summary.FilesRemoved > 0 {
			l.Info().Str("owner", owner).
				Int("files", summary.FilesRemoved).
				Int64("bytes", summary.BytesFreed).
				Time("before", before).
				Msg("auto cleaned trash")
		}
	}
}

// listAllOwners 查询回收站中存在文件的所有租户.
func listAllOwners(ctx context.Context, mgr *storage.Manager) ([]string, error) {
	if mgr == nil || mgr.GetDBClient() == nil || mgr.GetDBClient().GetDB() == nil {
		return nil, fmt.Errorf("db not initialized")
	}

	dbx := mgr.GetDBClient().GetDB().WithContext(ctx)

	var owners []string
	if err := dbx.Model(&model.File{}).Unscoped().
		Where("deleted_at IS NOT NULL").
		Distinct().Pluck("owner", &owners).Error; err != nil {
		return nil, err
	}

	return owners, nil
}
