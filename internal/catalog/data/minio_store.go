package data

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
)

// MinIOFileStore serves item files from a MinIO bucket via presigned URLs.
// The backend never proxies file bytes; clients download straight from the
// object store with a short-lived URL.
type MinIOFileStore struct {
	client *minio.Client
	bucket string
}

func NewMinIOFileStore(client *minio.Client, bucket string) *MinIOFileStore {
	return &MinIOFileStore{
		client: client,
		bucket: bucket,
	}
}

func (s *MinIOFileStore) PresignedGetURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if objectKey == "" {
		return "", fmt.Errorf("object key is required")
	}

	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign get %s/%s: %w", s.bucket, objectKey, err)
	}
	return url.String(), nil
}

// EnsureBucket creates the bucket if it does not exist yet. Called once at
// startup.
func (s *MinIOFileStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}
