package deps

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tubecast/internal/config"
	"tubecast/internal/services"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
}

func TestRequirementsFollowConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.YtDlpPath = "/opt/yt-dlp"
	reqs := Requirements(&cfg)
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(reqs))
	}
	if reqs[0].Command != "/opt/yt-dlp" {
		t.Fatalf("expected configured yt-dlp path, got %q", reqs[0].Command)
	}
	if reqs[0].Optional || reqs[1].Optional || !reqs[2].Optional {
		t.Fatalf("unexpected optional flags %+v", reqs)
	}
	if got := Requirements(nil); got[1].Command != "ffmpeg" {
		t.Fatalf("expected defaults for nil config, got %q", got[1].Command)
	}
}

func TestMissingIgnoresOptional(t *testing.T) {
	dir := t.TempDir()
	statuses := CheckBinaries([]Requirement{
		{Name: "yt-dlp", Command: writeStub(t, dir, "yt-dlp")},
		{Name: "FFprobe", Command: "clearly-not-present-ffprobe", Optional: true},
	})
	if err := Missing(statuses); err != nil {
		t.Fatalf("expected nil for missing optional binary, got %v", err)
	}
	if !Available(statuses, "yt-dlp") || Available(statuses, "FFprobe") {
		t.Fatal("unexpected availability")
	}

	statuses = CheckBinaries([]Requirement{{Name: "FFmpeg", Command: "clearly-not-present-ffmpeg"}})
	err := Missing(statuses)
	if !errors.Is(err, services.ErrDependency) || services.Kind(err) != "DependencyError" {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !strings.Contains(err.Error(), "FFmpeg") {
		t.Fatalf("expected binary name in error, got %v", err)
	}
}
