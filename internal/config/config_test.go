package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"tubecast/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("TUBECAST_ACCESS_KEY", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantDownloads := filepath.Join(tempHome, ".cache", "tubecast", "downloads")
	if cfg.Paths.DownloadDir != wantDownloads {
		t.Fatalf("unexpected download dir: got %q want %q", cfg.Paths.DownloadDir, wantDownloads)
	}
	if cfg.HistoryPath() != filepath.Join(tempHome, ".config", "tubecast", "history.json") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.ErrorLogPath() != filepath.Join(tempHome, ".config", "tubecast", "errors.log") {
		t.Fatalf("unexpected error log path: %q", cfg.ErrorLogPath())
	}
	if cfg.Storage.Region != "auto" {
		t.Fatalf("expected auto region, got %q", cfg.Storage.Region)
	}
	if cfg.Tools.AudioBitrate != "192k" {
		t.Fatalf("unexpected bitrate %q", cfg.Tools.AudioBitrate)
	}
	if err := cfg.RequireStorage(); err == nil {
		t.Fatal("expected unconfigured storage to be reported")
	}
}

func TestLoadTOMLWithEnvCredentials(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TUBECAST_ACCESS_KEY", "env-access")
	t.Setenv("TUBECAST_SECRET_KEY", "env-secret")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[storage]
endpoint = "https://acct.r2.cloudflarestorage.com/"
public_url = "https://pub-1234.r2.dev/"
bucket = "my-podcasts"

[tools]
ytdlp_path = "~/bin/yt-dlp"
download_timeout = 30
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if cfg.Storage.Endpoint != "https://acct.r2.cloudflarestorage.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Storage.Endpoint)
	}
	if cfg.Storage.PublicURL != "https://pub-1234.r2.dev" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Storage.PublicURL)
	}
	if cfg.Storage.AccessKey != "env-access" || cfg.Storage.SecretKey != "env-secret" {
		t.Fatalf("expected env credentials, got %q/%q", cfg.Storage.AccessKey, cfg.Storage.SecretKey)
	}
	if !filepath.IsAbs(cfg.Tools.YtDlpPath) || !strings.HasSuffix(cfg.Tools.YtDlpPath, filepath.Join("bin", "yt-dlp")) {
		t.Fatalf("expected expanded yt-dlp path, got %q", cfg.Tools.YtDlpPath)
	}
	if cfg.Tools.FFmpegPath != "ffmpeg" {
		t.Fatalf("expected bare ffmpeg command, got %q", cfg.Tools.FFmpegPath)
	}
	if cfg.Tools.DownloadTimeout != 30 {
		t.Fatalf("expected download timeout override, got %d", cfg.Tools.DownloadTimeout)
	}
	if err := cfg.RequireStorage(); err != nil {
		t.Fatalf("expected storage configured, got %v", err)
	}
}

func TestLoadJSONConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"storage": {"endpoint": "https://acct.r2.cloudflarestorage.com", "bucket": "casts", "access_key": "a", "secret_key": "s", "public_url": "https://pub.r2.dev"}, "feed": {"language": "de-DE"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.Bucket != "casts" || cfg.Feed.Language != "de-DE" {
		t.Fatalf("unexpected decoded values: %+v %+v", cfg.Storage, cfg.Feed)
	}
	if cfg.Feed.Category != "Technology" {
		t.Fatalf("expected default category retained, got %q", cfg.Feed.Category)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bucket", func(c *config.Config) { c.Storage.Bucket = "Bad_Bucket" }, "storage.bucket"},
		{"endpoint", func(c *config.Config) { c.Storage.Endpoint = "ftp://example.com" }, "storage.endpoint"},
		{"language", func(c *config.Config) { c.Feed.Language = "not a tag!" }, "feed.language"},
		{"bitrate", func(c *config.Config) { c.Tools.AudioBitrate = "loud" }, "tools.audio_bitrate"},
		{"level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleIsValidTOML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}

func TestSaveRoundTripsThroughLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.Default()
	cfg.Storage.Endpoint = "https://acct.r2.cloudflarestorage.com"
	cfg.Storage.PublicURL = "https://pub.r2.dev"
	cfg.Storage.AccessKey = "key"
	cfg.Storage.SecretKey = "secret"
	cfg.Storage.Bucket = "casts"

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := loaded.RequireStorage(); err != nil {
		t.Fatalf("expected saved storage settings to load, got %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat saved config: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected private permissions, got %v", info.Mode().Perm())
	}
}

func TestEnsureDirectoriesCreatesPaths(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DownloadDir, cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
