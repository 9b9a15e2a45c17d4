// Package storage provides the object store used for plant images.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the interface the plant service uploads images through.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (url string, err error)
	Remove(ctx context.Context, key string) error
	KeyFromURL(url string) string
}

// MinioStore stores objects in an S3-compatible bucket.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// MinioConfig carries the connection settings for the object store.
type MinioConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// NewMinioStore connects to the object store and ensures the bucket exists.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinioStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Put uploads an object and returns its public URL.
func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}

// Remove deletes an object.
func (s *MinioStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

// KeyFromURL recovers the object key from a URL previously returned by Put.
// Returns an empty string for URLs this store did not produce.
func (s *MinioStore) KeyFromURL(url string) string {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return ""
	}
	return strings.TrimPrefix(url, s.baseURL+"/")
}
