package chat

import (
	"strings"
	"testing"

	"tinychat/internal/app/store"
	"tinychat/internal/pkg/errs"
)

func TestNormalizePrefersContentOverText(t *testing.T) {
	p := SendMessagePayload{Content: strptr("from content"), Text: strptr("from text"), Type: "text"}

	spec, customErr := p.Normalize("u1")
	if customErr != nil {
		t.Fatalf("Normalize should succeed: %+v", customErr)
	}
	if spec.Content != "from content" {
		t.Errorf("Expected the content field to win, got %q", spec.Content)
	}
	if spec.UserID != "u1" {
		t.Errorf("Expected sender id u1, got %q", spec.UserID)
	}
}

func TestNormalizeFallsBackToTextField(t *testing.T) {
	p := SendMessagePayload{Text: strptr("hello"), Type: "text"}

	spec, customErr := p.Normalize("u1")
	if customErr != nil {
		t.Fatalf("Normalize should succeed: %+v", customErr)
	}
	if spec.Content != "hello" {
		t.Errorf("Expected the text field to be used, got %q", spec.Content)
	}
}

func TestNormalizeDefaultsUnknownTypeToText(t *testing.T) {
	for _, typ := range []string{"", "bogus", "TEXT"} {
		p := SendMessagePayload{Content: strptr("hi"), Type: typ}

		spec, customErr := p.Normalize("u1")
		if customErr != nil {
			t.Fatalf("Normalize should succeed for type %q: %+v", typ, customErr)
		}
		if spec.Type != store.TypeText {
			t.Errorf("Type %q should normalize to text, got %q", typ, spec.Type)
		}
	}
}

func TestNormalizeRejectsOverlongContent(t *testing.T) {
	long := strings.Repeat("a", MaxContentLength+1)
	p := SendMessagePayload{Content: &long, Type: "text"}

	_, customErr := p.Normalize("u1")
	if customErr == nil {
		t.Fatal("Content longer than the limit must be rejected")
	}
	if customErr.Code != errs.ErrMessageContentTooLong {
		t.Errorf("Expected code %d, got %d", errs.ErrMessageContentTooLong, customErr.Code)
	}

	exact := strings.Repeat("a", MaxContentLength)
	p = SendMessagePayload{Content: &exact, Type: "text"}
	if _, customErr := p.Normalize("u1"); customErr != nil {
		t.Errorf("Content at exactly the limit should be accepted: %+v", customErr)
	}
}

func TestNormalizeRejectsShapelessPayload(t *testing.T) {
	p := SendMessagePayload{Type: "text"}

	_, customErr := p.Normalize("u1")
	if customErr == nil {
		t.Fatal("A payload with neither content, text, nor file must be rejected")
	}
	if customErr.Code != errs.ErrMessageInvalid {
		t.Errorf("Expected code %d, got %d", errs.ErrMessageInvalid, customErr.Code)
	}
}

func TestNormalizeRejectsFileTypeWithoutFile(t *testing.T) {
	p := SendMessagePayload{Content: strptr("see attachment"), Type: "image"}

	_, customErr := p.Normalize("u1")
	if customErr == nil {
		t.Fatal("A non-text type without a file reference must be rejected")
	}
	if customErr.Code != errs.ErrMessageInvalid {
		t.Errorf("Expected code %d, got %d", errs.ErrMessageInvalid, customErr.Code)
	}
}

func TestNormalizeFileOnlyPayload(t *testing.T) {
	p := SendMessagePayload{
		Type: "file",
		File: &store.FileInfo{URL: "/uploads/a.pdf", Name: "a.pdf", Size: 42, MimeType: "application/pdf"},
	}

	spec, customErr := p.Normalize("u1")
	if customErr != nil {
		t.Fatalf("A file payload without text should be accepted: %+v", customErr)
	}
	if spec.Type != store.TypeFile {
		t.Errorf("Expected type file, got %q", spec.Type)
	}
	if spec.File == nil || spec.File.URL != "/uploads/a.pdf" {
		t.Error("The file reference should be carried through")
	}
}
