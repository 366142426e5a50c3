package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/errs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/metrics"
)

// ensureQuotaRow 确保账本行存在，已存在时不做任何修改.
func ensureQuotaRow(tx *gorm.DB, owner string) error {
	row := model.UserQuota{Owner: owner}

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return errs.StorageFault("ensure quota row", err)
	}

	return nil
}

// reserveQuota 原子地为 owner 预留 delta 字节. 预留通过条件 UPDATE 实现：
// 只有在加上 delta 仍不超过上限时更新才会生效，因此并发预留不会联手超出上限.
// 事务回滚会自动撤销预留.
func reserveQuota(tx *gorm.DB, owner string, delta, ceiling int64) error {
	if delta < 0 {
		return errs.InvalidArgument("reserve delta must be non-negative, got %d", delta)
	}

	if delta == 0 {
		return nil
	}

	if err := ensureQuotaRow(tx, owner); err != nil {
		return err
	}

	res := tx.Model(&model.UserQuota{}).
		Where("owner = ? AND used_bytes + ? <= ?", owner, delta, ceiling).
		Update("used_bytes", gorm.Expr("used_bytes + ?", delta))
	if res.Error != nil {
		return errs.StorageFault("reserve quota", res.Error)
	}

	if res.RowsAffected == 0 {
		metrics.QuotaRejections.Inc()

		return errs.QuotaExceeded("quota exceeded: reserving %d bytes would pass the %d byte ceiling", delta, ceiling)
	}

	return nil
}

// releaseQuota 归还 delta 字节. 账本不允许为负，损坏时取零.
func releaseQuota(tx *gorm.DB, owner string, delta int64) error {
	if delta <= 0 {
		return nil
	}

	res := tx.Model(&model.UserQuota{}).
		Where("owner = ?", owner).
		Update("used_bytes", gorm.Expr("CASE WHEN used_bytes >= ? THEN used_bytes - ? ELSE 0 END", delta, delta))
	if res.Error != nil {
		return errs.StorageFault("release quota", res.Error)
	}

	return nil
}

// QuotaService 提供配额用量查询.
type QuotaService struct{ *FileService }

// NewQuotaService 构造配额服务.
func NewQuotaService(c context.Context) *QuotaService { return &QuotaService{NewFileService(c)} }

// Usage 汇总 owner 的配额使用情况.
func (q *QuotaService) Usage(ctx context.Context, owner string) (types.UsageResponse, error) {
	if owner == "" {
		return types.UsageResponse{}, errs.InvalidArgument("owner is required")
	}

	var row model.UserQuota

	err := q.dbClient.GetDB().WithContext(ctx).Where("owner = ?", owner).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return types.UsageResponse{}, errs.StorageFault("load quota", err)
	}

	ceiling := configs.GetConfig().Quota.Ceiling()

	remaining := ceiling - row.UsedBytes
	if remaining < 0 {
		remaining = 0
	}

	return types.UsageResponse{
		UsedBytes:        row.UsedBytes,
		CeilingBytes:     ceiling,
		RemainingBytes:   remaining,
		UsedDisplay:      formatBytes(row.UsedBytes),
		CeilingDisplay:   formatBytes(ceiling),
		RemainingDisplay: formatBytes(remaining),
	}, nil
}

// formatBytes 十进制单位的人类可读字节数.
func formatBytes(n int64) string {
	const unit = 1000

	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "kMGTPE"[exp])
}
