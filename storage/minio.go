package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Garicore01/PlayBeat-Backend/config"
	"github.com/Garicore01/PlayBeat-Backend/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore defines the object storage operations the handlers depend on.
type ObjectStore interface {
	// PromoteFile uploads a spooled local file under the given object key
	// and removes the spool file on success.
	PromoteFile(ctx context.Context, localPath, objectKey, contentType string) error

	// OpenObject opens an object for reading. The reader seeks, so it can
	// back byte-range responses.
	OpenObject(ctx context.Context, objectKey string) (io.ReadSeekCloser, error)

	// StatObject returns object metadata, or an error when the object is
	// absent.
	StatObject(ctx context.Context, objectKey string) (minio.ObjectInfo, error)

	// RemoveObject deletes an object from the bucket.
	RemoveObject(ctx context.Context, objectKey string) error
}

// Store is the MinIO implementation of ObjectStore.
type Store struct {
	client *minio.Client
	bucket string
}

// NewStore connects to MinIO and ensures the bucket exists.
func NewStore(cfg *config.Config) (*Store, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("Created storage bucket", logger.String("bucket", cfg.MinioBucket))
	}

	return &Store{client: client, bucket: cfg.MinioBucket}, nil
}

// NewAudioKey generates a unique object key for an uploaded audio file,
// keeping the original extension.
func NewAudioKey(originalName string) string {
	return "audio/" + uuid.NewString() + filepath.Ext(originalName)
}

// NewImageKey generates a unique object key for an uploaded image.
func NewImageKey(originalName string) string {
	return "images/" + uuid.NewString() + filepath.Ext(originalName)
}

// PromoteFile uploads a spooled local file under the given object key and
// removes the spool file on success. Called only after the store commit.
func (s *Store) PromoteFile(ctx context.Context, localPath, objectKey, contentType string) error {
	_, err := s.client.FPutObject(ctx, s.bucket, objectKey, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", objectKey, err)
	}

	if err := os.Remove(localPath); err != nil {
		// The object is already safe in the bucket, a stale spool file is
		// only a disk-space concern.
		logger.Warn("Failed to remove spool file",
			logger.String("path", localPath),
			logger.ErrorField(err))
	}
	return nil
}

// OpenObject opens an object for reading. The returned object supports
// seeking, so it can back byte-range responses.
func (s *Store) OpenObject(ctx context.Context, objectKey string) (io.ReadSeekCloser, error) {
	return s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
}

// StatObject returns object metadata, or an error when the object is absent.
func (s *Store) StatObject(ctx context.Context, objectKey string) (minio.ObjectInfo, error) {
	return s.client.StatObject(ctx, s.bucket, objectKey, minio.StatObjectOptions{})
}

// RemoveObject deletes an object from the bucket.
func (s *Store) RemoveObject(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}

// Check verifies connectivity with a bucket existence probe.
func (s *Store) Check(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("storage check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}
