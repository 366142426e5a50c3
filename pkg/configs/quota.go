package configs

import "github.com/spf13/viper"

// DefaultQuotaCeilingBytes 每用户活跃存储上限，十进制 30 GB.
const DefaultQuotaCeilingBytes int64 = 30_000_000_000

// QuotaConfig 存储配额配置. 上限是部署级常量，不支持按用户覆盖.
type QuotaConfig struct {
	CeilingBytes int64 `mapstructure:"ceiling_bytes" rule:"min=0"`
}

// Ceiling 返回配置的配额上限，未配置时回退到默认值.
func (c *QuotaConfig) Ceiling() int64 {
	if c.CeilingBytes > 0 {
		return c.CeilingBytes
	}

	return DefaultQuotaCeilingBytes
}

func (c *QuotaConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("quota.ceiling_bytes", DefaultQuotaCeilingBytes)
}
