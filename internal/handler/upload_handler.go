/*
Package handler provides the HTTP handlers and routing setup for the chat server.

This file contains the upload endpoint. It accepts a multipart file, validates
size and type, stores the blob through the configured backend, and returns the
opaque file descriptor that clients attach to file and image messages.
*/
package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"tinychat/internal/app/storage"
	"tinychat/internal/pkg/errs"
	"tinychat/internal/pkg/logx"
	"tinychat/internal/pkg/randx"
	"tinychat/internal/pkg/req"
	"tinychat/internal/pkg/resp"
)

// UploadResult is the file descriptor returned to clients. The field names
// form the wire contract consumed by sendMessage file payloads.
type UploadResult struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalname"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimetype"`
	URL          string `json:"url"`
}

// HandleUpload creates an HTTP HandlerFunc for multipart file uploads.
func HandleUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFormParseFailed))
			return
		}
		defer file.Close()

		mimeType := header.Header.Get("Content-Type")

		if customErr := storage.ValidateFileSize(header.Size); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := storage.ValidateFileType(header.Filename, mimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ext := strings.ToLower(filepath.Ext(header.Filename))
		key, err := randx.FileKey(ext)
		if err != nil {
			logx.Error(err, "Failed to generate upload key")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		url, err := deps.Blobs.Save(r.Context(), key, mimeType, header.Size, file)
		if err != nil {
			logx.Error(err, "Failed to store upload", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, UploadResult{
			Filename:     key,
			OriginalName: header.Filename,
			Size:         header.Size,
			MimeType:     mimeType,
			URL:          url,
		})
	}
}
