package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrBucketCreationFailed = errors.New("failed to create storage bucket")

// LocalImageStore writes images as flat files into a directory that must
// already exist.
type LocalImageStore struct {
	dir string
}

func NewLocalImageStore(dir string) *LocalImageStore {
	return &LocalImageStore{dir: dir}
}

func (s *LocalImageStore) Put(_ context.Context, name string, data []byte) error {
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("invalid image name %q", name)
	}
	return os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
}

func (s *LocalImageStore) Backend() string { return "local" }

func (s *LocalImageStore) Dir() string { return s.dir }

// MinIOImageStore keeps product images in an S3-compatible bucket, one
// object per generated filename.
type MinIOImageStore struct {
	client     *minio.Client
	bucketName string
	initOnce   sync.Once
	initErr    error
}

// NewMinIOImageStore creates the client only. The bucket is checked and
// created on first Put.
func NewMinIOImageStore(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOImageStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOImageStore{client: client, bucketName: bucketName}, nil
}

func (s *MinIOImageStore) lazyInit(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.ensureBucketExists(ctx)
	})
	return s.initErr
}

func (s *MinIOImageStore) ensureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("%w: check bucket existence: %v", ErrBucketCreationFailed, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("%w: create bucket: %v", ErrBucketCreationFailed, err)
		}
	}
	return nil
}

// Put uploads data under name, overwriting any existing object. The content
// type is sniffed for serving only; nothing is rejected.
func (s *MinIOImageStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.lazyInit(ctx); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucketName, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: http.DetectContentType(data),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", name, err)
	}
	return nil
}

// Get reads an object back. It is used by the integration test.
func (s *MinIOImageStore) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(obj); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *MinIOImageStore) Backend() string { return "minio" }

// Ping reports whether the bucket is reachable. A missing bucket is not an
// error; Put creates it.
func (s *MinIOImageStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}
