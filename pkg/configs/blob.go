package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// BlobType 对象存储后端类型.
type BlobType string

const (
	BlobTypeS3    BlobType = "s3"    // MinIO / S3 兼容对象存储
	BlobTypeLocal BlobType = "local" // 本地磁盘
)

const (
	DefaultBlobType            = BlobTypeLocal   // 默认后端
	DefaultBlobLocalDir        = "data/blobs"    // 默认本地存储目录
	DefaultBlobS3Endpoint      = "localhost:9000"
	DefaultBlobS3AccessKey     = "minioadmin"
	DefaultBlobS3SecretKey     = "minioadmin"
	DefaultBlobS3UseSSL        = false
	DefaultBlobS3Bucket        = "filevault"
	DefaultBlobS3Region        = "us-east-1"
)

// BlobConfig 对象存储配置，后端在部署时选择，引擎本身只面向统一的 blob.Store 接口.
type BlobConfig struct {
	Type  BlobType        `mapstructure:"type"  rule:"oneof=s3 local"`
	Local BlobLocalConfig `mapstructure:"local"`
	S3    BlobS3Config    `mapstructure:"s3"`
}

// BlobLocalConfig 本地磁盘后端配置.
type BlobLocalConfig struct {
	Dir string `mapstructure:"dir"`
}

// BlobS3Config MinIO S3 后端配置.
type BlobS3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
}

// GetEndpointURL 获取完整的端点URL.
func (c *BlobS3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// setDefaults 设置对象存储配置的默认值.
func (c *BlobConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("blob.type", DefaultBlobType)
	v.SetDefault("blob.local.dir", DefaultBlobLocalDir)
	v.SetDefault("blob.s3.endpoint", DefaultBlobS3Endpoint)
	v.SetDefault("blob.s3.access_key_id", DefaultBlobS3AccessKey)
	v.SetDefault("blob.s3.secret_access_key", DefaultBlobS3SecretKey)
	v.SetDefault("blob.s3.use_ssl", DefaultBlobS3UseSSL)
	v.SetDefault("blob.s3.bucket", DefaultBlobS3Bucket)
	v.SetDefault("blob.s3.region", DefaultBlobS3Region)
}
