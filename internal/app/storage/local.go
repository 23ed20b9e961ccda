/*
Package storage provides the blob storage service behind the file upload endpoint.

This file implements the local-disk backend: blobs live as plain files under the
upload directory and are served by the router's static file route.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localStore implements BlobStore on the local filesystem.
type localStore struct {
	dir     string
	baseURL string
}

// newLocalStore creates the upload directory if needed.
func newLocalStore(dir, baseURL string) (*localStore, error) {
	if dir == "" {
		return nil, errors.New("upload directory is required for local storage")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}

	return &localStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// path resolves key inside the upload directory, rejecting traversal.
func (l *localStore) path(key string) (string, error) {
	clean := filepath.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.dir, clean), nil
}

// Save writes the blob to disk and returns its public URL.
func (l *localStore) Save(ctx context.Context, key, mimeType string, size int64, r io.Reader) (string, error) {
	path, err := l.path(key)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close upload file: %w", err)
	}

	return l.baseURL + "/" + key, nil
}

// Delete removes the blob. A missing file is not an error.
func (l *localStore) Delete(ctx context.Context, key string) error {
	path, err := l.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete upload file: %w", err)
	}
	return nil
}
