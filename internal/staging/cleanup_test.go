package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tubecast/internal/logging"
)

func TestSweepIgnoresMissingDirectories(t *testing.T) {
	for _, dir := range []string{"", "   ", filepath.Join(t.TempDir(), "absent")} {
		result := Sweep(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for %q, got %+v", dir, result)
		}
	}
}

func TestSweepRemovesOnlyStaleEntries(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-48 * time.Hour)

	staleFile := filepath.Join(dir, "3-Old_Episode.webm.part")
	staleDir := filepath.Join(dir, "leftover")
	freshFile := filepath.Join(dir, "1-Current.mp3")

	if err := os.WriteFile(staleFile, []byte("x"), 0o644); err != nil {
		t.Fatalf("write stale file: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(staleDir, "inner"), 0o755); err != nil {
		t.Fatalf("mkdir stale dir: %v", err)
	}
	if err := os.WriteFile(freshFile, []byte("y"), 0o644); err != nil {
		t.Fatalf("write fresh file: %v", err)
	}
	for _, path := range []string{staleFile, staleDir} {
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}

	result := Sweep(context.Background(), dir, 24*time.Hour, nil)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(result.Removed) != 2 {
		t.Fatalf("expected 2 removals, got %v", result.Removed)
	}
	for _, path := range []string{staleFile, staleDir} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed, stat err=%v", path, err)
		}
	}
	if _, err := os.Stat(freshFile); err != nil {
		t.Fatalf("fresh file should remain: %v", err)
	}
}

func TestSweepStopsWhenCanceled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.m4a")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := Sweep(ctx, dir, time.Hour, nil)
	if len(result.Removed) != 0 {
		t.Fatalf("canceled sweep removed %v", result.Removed)
	}
}
