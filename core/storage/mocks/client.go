package mocks

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of storage.Client
type Client struct {
	mock.Mock
}

func (m *Client) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *Client) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	args := m.Called(ctx, bucketName, opts)
	return args.Error(0)
}

func (m *Client) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

// GetObject returns the configured reader. A func() io.ReadCloser return value is
// invoked on every call so repeated downloads each get a fresh stream.
func (m *Client) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	switch obj := args.Get(0).(type) {
	case func() io.ReadCloser:
		return obj(), args.Error(1)
	case io.ReadCloser:
		return obj, args.Error(1)
	}
	return nil, args.Error(1)
}
