package vault

import (
	"context"
	"fmt"

	"cleansnap/internal/clean"
	"cleansnap/internal/config"
)

// NewPayloadStoreFromConfig creates a PayloadStore based on the vault
// config type, wrapping it with age encryption when cfg.Encrypt is set.
func NewPayloadStoreFromConfig(ctx context.Context, cfg config.VaultConfig, clock clean.Clock) (clean.PayloadStore, error) {
	var store clean.PayloadStore

	switch cfg.Type {
	case "memory":
		store = NewMemoryPayloadStore(clock)
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem vault requires root to be set")
		}
		fs, err := NewFileSystemPayloadStore(cfg.Root)
		if err != nil {
			return nil, err
		}
		store = fs
	case "s3":
		s3Store, err := NewS3PayloadStore(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		store = s3Store
	default:
		return nil, fmt.Errorf("unknown vault type: %s", cfg.Type)
	}

	if !cfg.Encrypt {
		return store, nil
	}

	if cfg.KeyPath == "" {
		return nil, fmt.Errorf("encrypted vault requires key_path to be set")
	}
	return NewEncryptedPayloadStore(store, cfg.KeyPath)
}
