package storage

import (
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned by providers when a key does not exist.
var ErrNotFound = errors.New("object not found")

// ErrExists is returned by providers that refuse to replace an existing key.
var ErrExists = errors.New("object already exists")

// StorageProvider defines the behavior for any storage backend.
type StorageProvider interface {
	Get(bucket, key string) (*FileObject, error)
	Put(bucket, key string, body io.ReadSeeker, contentType, cacheControl string) error
	Delete(bucket, key string) error
}

// FileObject is the provider-agnostic representation of a stored upload.
type FileObject struct {
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
	LastModified  time.Time
}
