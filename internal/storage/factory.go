package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"securevault/internal/config"
	"securevault/internal/vault"
)

// NewStorageFromConfig creates a Storage implementation based on the storage config type.
func NewStorageFromConfig(cfg config.StorageConfig) (vault.Storage, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStorage(), nil
	case "filesystem", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("filesystem storage requires data_dir to be set")
		}
		return NewFileSystemStorage(cfg.DataDir)
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite storage requires data_dir to be set")
		}
		return NewSQLiteStorage(filepath.Join(cfg.DataDir, "vault.db"))
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires s3_bucket to be set")
		}
		return NewS3Storage(context.Background(), S3Config{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
