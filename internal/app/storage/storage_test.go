package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tinychat/internal/pkg/errs"
)

func TestLocalStoreSaveAndURL(t *testing.T) {
	dir := t.TempDir()
	ls, err := newLocalStore(dir, "/uploads/")
	if err != nil {
		t.Fatalf("newLocalStore should succeed: %v", err)
	}

	url, err := ls.Save(context.Background(), "abc.png", "image/png", 5, strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Save should succeed: %v", err)
	}
	if url != "/uploads/abc.png" {
		t.Errorf("Expected /uploads/abc.png, got %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	if err != nil {
		t.Fatalf("Saved blob should exist on disk: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Expected blob content hello, got %q", data)
	}
}

func TestLocalStoreSaveRejectsDuplicateKey(t *testing.T) {
	ls, err := newLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("newLocalStore should succeed: %v", err)
	}

	if _, err := ls.Save(context.Background(), "k.txt", "text/plain", 1, strings.NewReader("a")); err != nil {
		t.Fatalf("First save should succeed: %v", err)
	}
	if _, err := ls.Save(context.Background(), "k.txt", "text/plain", 1, strings.NewReader("b")); err == nil {
		t.Fatal("Saving over an existing key should fail")
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	ls, err := newLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("newLocalStore should succeed: %v", err)
	}

	for _, key := range []string{"../escape.txt", "/etc/passwd", ".", "a/../../b"} {
		if _, err := ls.Save(context.Background(), key, "text/plain", 1, strings.NewReader("x")); err == nil {
			t.Errorf("Key %q should be rejected", key)
		}
	}
}

func TestLocalStoreDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := newLocalStore(dir, "/uploads")
	if err != nil {
		t.Fatalf("newLocalStore should succeed: %v", err)
	}

	if _, err := ls.Save(context.Background(), "gone.txt", "text/plain", 1, strings.NewReader("x")); err != nil {
		t.Fatalf("Save should succeed: %v", err)
	}
	if err := ls.Delete(context.Background(), "gone.txt"); err != nil {
		t.Fatalf("Delete should succeed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.txt")); !os.IsNotExist(err) {
		t.Error("Deleted blob should no longer exist")
	}

	// Deleting again is not an error.
	if err := ls.Delete(context.Background(), "gone.txt"); err != nil {
		t.Errorf("Deleting a missing blob should not fail: %v", err)
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := ValidateFileSize(1); err != nil {
		t.Errorf("1 byte should be accepted: %+v", err)
	}
	if err := ValidateFileSize(MaxUploadSize); err != nil {
		t.Errorf("Exactly the limit should be accepted: %+v", err)
	}

	if err := ValidateFileSize(0); err == nil {
		t.Error("Zero size should be rejected")
	}
	if err := ValidateFileSize(-1); err == nil {
		t.Error("Negative size should be rejected")
	}
	if err := ValidateFileSize(MaxUploadSize + 1); err == nil {
		t.Error("Over the limit should be rejected")
	} else if err.Code != errs.ErrFileSizeTooLarge {
		t.Errorf("Expected code %d, got %d", errs.ErrFileSizeTooLarge, err.Code)
	}
}

func TestValidateFileType(t *testing.T) {
	cases := []struct {
		name     string
		fileName string
		mimeType string
		wantErr  bool
	}{
		{"png", "photo.png", "image/png", false},
		{"jpeg alias", "photo.jpg", "image/jpeg", false},
		{"mixed case mime", "photo.PNG", "IMAGE/PNG", false},
		{"pdf", "doc.pdf", "application/pdf", false},
		{"disallowed mime", "run.exe", "application/octet-stream", true},
		{"extension mismatch", "photo.png", "image/jpeg", true},
		{"no extension", "photo", "image/png", true},
		{"unknown extension", "archive.tar", "text/plain", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFileType(tc.fileName, tc.mimeType)
			if tc.wantErr && err == nil {
				t.Errorf("ValidateFileType(%q, %q) should fail", tc.fileName, tc.mimeType)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("ValidateFileType(%q, %q) should pass: %+v", tc.fileName, tc.mimeType, err)
			}
		})
	}
}

func TestIsImageMIME(t *testing.T) {
	if !IsImageMIME("image/png") || !IsImageMIME("IMAGE/JPEG") {
		t.Error("Image MIME types should be recognized")
	}
	if IsImageMIME("application/pdf") || IsImageMIME("") {
		t.Error("Non-image MIME types should not be recognized as images")
	}
}
