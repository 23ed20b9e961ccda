/*
Package storage provides the blob storage service behind the file upload endpoint.

This file holds the upload validation rules: size limits and the allowlist pairing
file extensions with MIME types.
*/
package storage

import (
	"path/filepath"
	"strings"

	"tinychat/internal/pkg/errs"
)

const (
	// MaxUploadSizeMB is the maximum allowed upload size in megabytes.
	MaxUploadSizeMB = 5

	// MaxUploadSize is the maximum allowed upload size in bytes.
	MaxUploadSize = MaxUploadSizeMB * 1024 * 1024
)

// allowedMIMETypes is the set of permitted MIME types for uploads.
var allowedMIMETypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"image/gif":       {},
	"application/pdf": {},
	"text/plain":      {},
}

// extToMIME maps file extensions to their expected MIME types.
var extToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
}

// IsImageMIME reports whether the MIME type denotes an image, which decides
// whether an upload produces an image-typed or file-typed message descriptor.
func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "image/")
}

// ValidateFileSize checks that the upload size is positive and within limits.
func ValidateFileSize(size int64) *errs.CustomError {
	if size <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if size > MaxUploadSize {
		return errs.NewError(errs.ErrFileSizeTooLarge)
	}

	return nil
}

// ValidateFileType checks that the file name and MIME type are allowed and
// consistent with each other.
func ValidateFileType(fileName, mimeType string) *errs.CustomError {
	lowerMime := strings.ToLower(mimeType)

	if _, ok := allowedMIMETypes[lowerMime]; !ok {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) < 2 {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	expected, ok := extToMIME[ext]
	if !ok || expected != lowerMime {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	return nil
}
