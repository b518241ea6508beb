// Package storage is the file abstraction behind seed imports and
// reconciliation reports. Two drivers exist:
//   - "local": a directory on the local filesystem (default)
//   - "s3":    an S3-compatible bucket (AWS S3, MinIO, R2)
//
// Boot the manager once, then address a disk by name:
//
//	storage.Connect(ctx)
//	data, err := storage.Use("s3").Get(ctx, "seed/products.json")
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get when path is absent.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is implemented by every driver. Paths are slash-separated and
// relative to the disk root.
type Disk interface {
	// Put writes content to path, creating parents as needed.
	Put(ctx context.Context, path string, content []byte) error
	// Get returns the content of path or an error wrapping ErrNotExist.
	Get(ctx context.Context, path string) ([]byte, error)
	// Exists reports whether path exists.
	Exists(ctx context.Context, path string) (bool, error)
}
