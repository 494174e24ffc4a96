package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"sheet-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
)

// objectScheme prefixes dataset locations served from object storage.
const objectScheme = "s3://"

// Source is a re-openable dataset location.
// Every Open must start from the first byte of the dataset.
type Source interface {
	// Open returns a fresh reader positioned at the start of the dataset.
	Open(ctx context.Context) (io.ReadCloser, error)

	// Name returns the location used in logs and for delimiter detection.
	Name() string
}

// FileSource reads a dataset from the local filesystem.
type FileSource string

// Open opens the file, mapping a missing path to ErrDatasetNotFound.
func (s FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	path := expandHome(string(s))
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrDatasetNotFound, path)
	}
	return os.Open(path)
}

// Name returns the expanded path.
func (s FileSource) Name() string {
	return expandHome(string(s))
}

// ObjectSource reads a dataset from an object storage bucket.
type ObjectSource struct {
	Client storage.Client
	Bucket string
	Object string
}

// Open downloads the object as a stream.
func (s ObjectSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.Client == nil {
		return nil, fmt.Errorf("%w: no storage client for %s", ErrDatasetNotFound, s.Name())
	}
	obj, err := s.Client.GetObject(ctx, s.Bucket, s.Object, minio.GetObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, s.Name())
		}
		return nil, fmt.Errorf("get object %s: %w", s.Name(), err)
	}
	return obj, nil
}

// Name returns the s3:// URL of the object.
func (s ObjectSource) Name() string {
	return objectScheme + s.Bucket + "/" + s.Object
}

// ResolveSource maps a configured location to a Source.
// Locations of the form s3://bucket/object use client; everything else is a local path.
func ResolveSource(location string, client storage.Client) (Source, error) {
	if !strings.HasPrefix(location, objectScheme) {
		return FileSource(location), nil
	}
	bucket, object, ok := strings.Cut(strings.TrimPrefix(location, objectScheme), "/")
	if !ok || bucket == "" || object == "" {
		return nil, &ConfigError{Key: "location", Msg: fmt.Sprintf("malformed object location %q", location)}
	}
	return ObjectSource{Client: client, Bucket: bucket, Object: object}, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
