// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small interface so record sets can be read
// from AWS S3 or a self-hosted MinIO instance, and so tests can substitute the
// testify mock in core/storage/mocks.
//
// # Operations
//
//   - BucketExists / MakeBucket: used by the integrity checks.
//   - GetObject / PutObject / RemoveObject: record set reads and uploads (core/records).
//   - ListObjects: prefix listing for record sets and the integrity checks.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
