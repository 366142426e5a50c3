package configs

import "github.com/spf13/viper"

const (
	DefaultTrashRetentionDays = 30 // 回收站保留天数，超期后由定时任务物理清除
)

// TrashConfig 回收站保留策略配置.
type TrashConfig struct {
	RetentionDays int `mapstructure:"retention_days" rule:"min=1,max=365"`
}

func (c *TrashConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("trash.retention_days", DefaultTrashRetentionDays)
}
