package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"smart-store/internal/config"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// ErrStorageNotConfigured is returned by uploads when no bucket is set
var ErrStorageNotConfigured = errors.New("image storage is not configured")

// ImageStore uploads product images and returns their public URL
type ImageStore interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// GCSImageStore stores images as public objects in a Google Cloud Storage bucket
type GCSImageStore struct {
	client        *gcs.Client
	bucket        string
	prefix        string
	publicBaseURL string
	newName       func() string
}

// NewGCSImageStore connects to GCS. A blank credentials file falls back to
// application default credentials.
func NewGCSImageStore(ctx context.Context, cfg config.StorageConfig) (*GCSImageStore, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, ErrStorageNotConfigured
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return newGCSImageStore(client, cfg), nil
}

func newGCSImageStore(client *gcs.Client, cfg config.StorageConfig) *GCSImageStore {
	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return &GCSImageStore{
		client:        client,
		bucket:        strings.TrimSpace(cfg.Bucket),
		prefix:        strings.Trim(strings.TrimSpace(cfg.ObjectPrefix), "/"),
		publicBaseURL: base,
		newName:       func() string { return uuid.NewString() },
	}
}

// Upload writes r under a fresh random object name that keeps the
// extension of filename.
func (s *GCSImageStore) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if s.client == nil {
		return "", ErrStorageNotConfigured
	}

	object := s.objectName(filename)

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	w.CacheControl = "public, max-age=3600"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", object, err)
	}

	return s.PublicURL(object), nil
}

// PublicURL returns the URL an object is served from
func (s *GCSImageStore) PublicURL(object string) string {
	return s.publicBaseURL + "/" + s.bucket + "/" + object
}

// Close releases the underlying client
func (s *GCSImageStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *GCSImageStore) objectName(filename string) string {
	name := s.newName() + fileExt(filename)
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func fileExt(filename string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(filename)))
	if ext == "." {
		return ""
	}
	return ext
}

// Disabled is an ImageStore that refuses every upload
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrStorageNotConfigured
}
