package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cccbbbaaaa/culture-china/internal/config"
)

// Storage is the object store holding processed media and queued import uploads.
// Download returns errors.ErrNotFound for missing keys.
type Storage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// New builds the driver selected by storage.driver.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return NewS3Storage(cfg)
	case "minio":
		return NewMinioStorage(cfg)
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
