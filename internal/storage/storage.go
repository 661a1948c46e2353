package storage

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/google/uuid"

	"github.com/amit-3245/campus-complaint-portal/internal/config"
	"github.com/amit-3245/campus-complaint-portal/internal/utils"
)

// Uploads are never overwritten, so they can be cached forever.
const uploadCacheControl = "public, max-age=31536000, immutable"

// Client stores complaint attachments under generated, write-once names.
type Client struct {
	backend StorageProvider
	bucket  string
	now     func() time.Time
}

func New(cfg *config.Config) *Client {
	var backend StorageProvider

	if cfg.Storage.Provider == "local" {
		backend = NewLocalProvider(cfg.Storage.LocalPath)
	} else {
		s3Config := &aws.Config{
			Credentials:      credentials.NewStaticCredentials(cfg.Storage.KeyID, cfg.Storage.AppKey, ""),
			Endpoint:         aws.String(cfg.Storage.Endpoint),
			Region:           aws.String(cfg.Storage.Region),
			S3ForcePathStyle: aws.Bool(true),
		}
		if cfg.Storage.Endpoint == "" {
			s3Config.Endpoint = nil
		}
		backend = NewS3Provider(session.Must(session.NewSession(s3Config)))
	}

	return NewWithProvider(backend, cfg.Storage.Bucket)
}

func NewWithProvider(backend StorageProvider, bucket string) *Client {
	return &Client{backend: backend, bucket: bucket, now: time.Now}
}

// WithClock returns a copy of c that stamps names using now.
func (c *Client) WithClock(now func() time.Time) *Client {
	cp := *c
	cp.now = now
	return &cp
}

// Number of fresh names tried before giving up on a provider that keeps
// reporting ErrExists.
const storeAttempts = 3

// Store writes body under a fresh name derived from originalName and
// returns that name. Every name carries a random fragment, so concurrent
// uploads of the same file in the same millisecond never share a key.
func (c *Client) Store(originalName string, body io.ReadSeeker, contentType string) (string, error) {
	clean := utils.SanitizeFilename(originalName)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var err error
	for attempt := 0; attempt < storeAttempts; attempt++ {
		name := fmt.Sprintf("%d-%s-%s", c.now().UnixMilli(), uuid.NewString()[:8], clean)
		if attempt > 0 {
			if _, serr := body.Seek(0, io.SeekStart); serr != nil {
				return "", fmt.Errorf("rewind upload %s: %w", name, serr)
			}
		}
		err = c.backend.Put(c.bucket, name, body, contentType, uploadCacheControl)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, ErrExists) {
			return "", fmt.Errorf("store upload %s: %w", name, err)
		}
	}
	return "", fmt.Errorf("store upload %s: %w", clean, err)
}

// Retrieve opens a stored upload by exact name. The caller closes Body.
func (c *Client) Retrieve(name string) (*FileObject, error) {
	if !ValidName(name) {
		return nil, ErrNotFound
	}
	obj, err := c.backend.Get(c.bucket, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("retrieve upload %s: %w", name, err)
	}
	return obj, nil
}

// Remove deletes a stored upload. Only used to undo a store whose
// complaint never got persisted.
func (c *Client) Remove(name string) error {
	if !ValidName(name) {
		return ErrNotFound
	}
	return c.backend.Delete(c.bucket, name)
}

// ValidName rejects anything that could address outside the bucket root.
func ValidName(name string) bool {
	if name == "" || name == "." || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
