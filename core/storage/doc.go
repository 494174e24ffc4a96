// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so merge inputs can be read from, and merged outputs
// published to, AWS S3 or a self-hosted MinIO instance.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / EnsureBucket: Verify or create the target bucket.
//   - GetObject: Stream a dataset (used for s3://bucket/object locations).
//   - PutObject / UploadFile: Publish a merged output file.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
//	    return err
//	}
//	info, err := storage.UploadFile(ctx, client, cfg.Storage.Bucket, storage.ObjectName("merged", path), path)
package storage
