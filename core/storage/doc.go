// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for the
// operations the importer needs: fetching virtual snapshot CSV files,
// uploading new snapshots, and listing what is available. The abstraction
// supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easy to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	reader, err := client.GetObject(ctx, "snapshots", "virtual.csv", minio.GetObjectOptions{})
package storage
