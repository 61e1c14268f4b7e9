package errorlog_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tubecast/internal/errorlog"
	"tubecast/internal/services"
)

func TestRecordAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "errors.log")
	log := errorlog.New(path, &bytes.Buffer{})

	ctx := services.WithStage(context.Background(), "downloading")
	ctx = services.WithPlaylistURL(ctx, "https://www.youtube.com/playlist?list=PL1")
	ctx = services.WithRequestID(ctx, "run-9")

	failure := services.Wrap(services.ErrDownload, "downloading", "yt-dlp", "item 2 failed", errors.New("exit status 1"))
	log.Record(ctx, failure, map[string]string{"video_id": "abc123", "empty": " "})
	log.Record(ctx, services.Wrap(services.ErrUpload, "uploading", "", "denied", nil), nil)

	records, err := log.Recent(10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	first := records[0]
	if first.Error.Kind != "DownloadError" {
		t.Fatalf("unexpected kind %q", first.Error.Kind)
	}
	if !strings.HasPrefix(first.Error.Message, "downloading: yt-dlp: item 2 failed") {
		t.Fatalf("unexpected message %q", first.Error.Message)
	}
	if first.Context["playlist_url"] != "https://www.youtube.com/playlist?list=PL1" || first.Context["stage"] != "downloading" || first.Context["run_id"] != "run-9" {
		t.Fatalf("expected context fields from ctx, got %v", first.Context)
	}
	if first.Context["video_id"] != "abc123" {
		t.Fatalf("expected explicit field, got %v", first.Context)
	}
	if _, ok := first.Context["empty"]; ok {
		t.Fatalf("expected blank field dropped, got %v", first.Context)
	}
	if first.Timestamp.IsZero() {
		t.Fatal("expected timestamp")
	}
	if records[1].Error.Kind != "UploadError" {
		t.Fatalf("unexpected second kind %q", records[1].Error.Kind)
	}
}

func TestRecentKeepsLastN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	log := errorlog.New(path, &bytes.Buffer{})
	for i := 0; i < 5; i++ {
		log.Record(context.Background(), fmt.Errorf("failure %d", i), nil)
	}
	if err := appendLine(path, "not json"); err != nil {
		t.Fatal(err)
	}

	records, err := log.Recent(2)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Error.Message != "failure 3" || records[1].Error.Message != "failure 4" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestRecordFallsBackWhenUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	var fallback bytes.Buffer
	log := errorlog.New(filepath.Join(blocker, "errors.log"), &fallback)

	log.Record(context.Background(), errors.New("disk full"), nil)

	if !strings.Contains(fallback.String(), "disk full") {
		t.Fatalf("expected record on fallback writer, got %q", fallback.String())
	}
}

func TestRecentMissingFile(t *testing.T) {
	log := errorlog.New(filepath.Join(t.TempDir(), "missing.log"), nil)
	records, err := log.Recent(5)
	if err != nil || len(records) != 0 {
		t.Fatalf("expected empty result, got %v %v", records, err)
	}
}

func appendLine(path, line string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = file.WriteString(line + "\n")
	return err
}
