package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/config"
	apperrors "github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage talks to MinIO or any S3 compatible endpoint through minio-go.
type MinioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinioStorage connects and creates the bucket when it is missing.
func NewMinioStorage(cfg *config.Config) (*MinioStorage, error) {
	s3cfg := cfg.Storage.S3
	client, err := minio.New(s3cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s3cfg.AccessKey, s3cfg.SecretKey, ""),
		Secure: s3cfg.UseSSL,
		Region: s3cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, s3cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, s3cfg.Bucket, minio.MakeBucketOptions{Region: s3cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinioStorage{client: client, bucket: s3cfg.Bucket}, nil
}

func (m *MinioStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	// GetObject is lazy, stat first so a missing key surfaces here.
	if _, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isMinioNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return obj, nil
}

func (m *MinioStorage) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, data, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (m *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (m *MinioStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}

func isMinioNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
