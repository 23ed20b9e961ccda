/*
Package storage provides the blob storage service behind the file upload endpoint.

This file defines the BlobStore interface and the factory selecting a concrete
backend (local disk or S3-compatible object storage) from configuration.
*/
package storage

import (
	"context"
	"fmt"
	"io"
)

// Backend names accepted in configuration.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// ServiceConfig holds the configuration required to construct a blob store.
type ServiceConfig struct {
	Backend string

	// Local backend settings.
	UploadDir string
	BaseURL   string

	// S3 backend settings.
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// BlobStore is the narrow interface the upload endpoint depends on.
type BlobStore interface {
	// Save stores the blob under key and returns the URL clients use to
	// retrieve it.
	Save(ctx context.Context, key, mimeType string, size int64, r io.Reader) (string, error)

	// Delete removes the blob stored under key.
	Delete(ctx context.Context, key string) error
}

// NewBlobStore constructs the backend selected by cfg.Backend.
func NewBlobStore(cfg ServiceConfig) (BlobStore, error) {
	switch cfg.Backend {
	case BackendLocal, "":
		return newLocalStore(cfg.UploadDir, cfg.BaseURL)
	case BackendS3:
		return newS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
