package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"tubecast/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrDownload, "downloading", "yt-dlp", "item 2 failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrDownload) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"downloading", "yt-dlp", "item 2 failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err)
	}
}

func TestKindMapping(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{services.Wrap(services.ErrValidation, "input", "", "bad url", nil), "ValidationError"},
		{services.Wrap(services.ErrDependency, "setup", "", "yt-dlp missing", nil), "DependencyError"},
		{services.Wrap(services.ErrEmptyPlaylist, "fetching", "", "no items", nil), "EmptyPlaylistError"},
		{services.Wrap(services.ErrDownload, "downloading", "", "", services.ErrTimeout), "DownloadError"},
		{services.Wrap(services.ErrUpload, "uploading", "", "", nil), "UploadError"},
		{fmt.Errorf("stopped: %w", context.Canceled), "CanceledError"},
		{errors.New("other"), "ProcessingError"},
		{nil, ""},
	}
	for _, tc := range tests {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestMessageStripsMarker(t *testing.T) {
	err := services.Wrap(services.ErrUpload, "uploading", "put object", "bucket rejected write", nil)
	if got := services.Message(err); got != "uploading: put object: bucket rejected write" {
		t.Fatalf("unexpected message %q", got)
	}
	plain := errors.New("plain failure")
	if got := services.Message(plain); got != "plain failure" {
		t.Fatalf("unexpected message %q", got)
	}
}
