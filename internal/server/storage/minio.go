package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore stores uploaded blobs in a MinIO (or any S3-compatible)
// bucket. Blob paths map directly to object keys.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// MinioOptions configures the MinIO backend.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinioStore connects to the object store and makes sure the bucket
// exists.
func NewMinioStore(ctx context.Context, opts MinioOptions) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", opts.Bucket, err)
		}
		slog.Info("created bucket", "bucket", opts.Bucket)
	}

	return &MinioStore{client: client, bucket: opts.Bucket}, nil
}

// Save uploads the blob as an object. Returns the number of bytes stored.
func (s *MinioStore) Save(ctx context.Context, blobPath string, data io.Reader, size int64) (int64, error) {
	info, err := s.client.PutObject(ctx, s.bucket, blobPath, data, size, minio.PutObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to store object %s: %w", blobPath, err)
	}
	return info.Size, nil
}

// Delete removes the object at the given path. Deleting a missing object is
// not an error.
func (s *MinioStore) Delete(ctx context.Context, blobPath string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, blobPath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", blobPath, err)
	}
	return nil
}

// List returns every object in the bucket.
func (s *MinioStore) List(ctx context.Context) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		objects = append(objects, ObjectInfo{
			Path:    obj.Key,
			Size:    obj.Size,
			ModTime: obj.LastModified,
		})
	}
	return objects, nil
}
