// Package storage wraps the MinIO client for S3 compatible object storage.
//
// The Client interface is the subset of minio.Client the service uses, so it can
// be replaced by mocks.Client in tests. The helpers build on it:
//
//   - EnsureBucket creates the bucket on first use.
//   - ListKeys and ReadLines read the chat archive (JSON lines per channel and day).
//   - Touch and RemoveObject place and clear feedback markers.
//   - PutJSON archives comparison reports.
//
//	client, err := storage.NewClient(cfg.Storage)
//	created, err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
