package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
)

// csvContentType is set on uploaded merge outputs.
const csvContentType = "text/csv"

// EnsureBucket creates bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, client Client, bucket, region string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return nil
}

// ObjectName joins prefix and the base name of localPath into an object key.
func ObjectName(prefix, localPath string) string {
	name := filepath.Base(localPath)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// UploadFile uploads the file at localPath to bucket/objectName.
func UploadFile(ctx context.Context, client Client, bucket, objectName, localPath string) (minio.UploadInfo, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	uploaded, err := client.PutObject(ctx, bucket, objectName, f, info.Size(), minio.PutObjectOptions{
		ContentType: csvContentType,
	})
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return uploaded, nil
}
