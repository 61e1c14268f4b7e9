package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DownloadDir string `toml:"download_dir" json:"download_dir"`
	StateDir    string `toml:"state_dir" json:"state_dir"`
	LogDir      string `toml:"log_dir" json:"log_dir"`
}

// Storage contains S3-compatible object store settings.
type Storage struct {
	Endpoint       string `toml:"endpoint" json:"endpoint"`
	PublicURL      string `toml:"public_url" json:"public_url"`
	AccessKey      string `toml:"access_key" json:"access_key"`
	SecretKey      string `toml:"secret_key" json:"secret_key"`
	Bucket         string `toml:"bucket" json:"bucket"`
	Region         string `toml:"region" json:"region"`
	RequestTimeout int    `toml:"request_timeout" json:"request_timeout"`
}

// Tools contains external binary locations and their limits.
type Tools struct {
	YtDlpPath       string `toml:"ytdlp_path" json:"ytdlp_path"`
	FFmpegPath      string `toml:"ffmpeg_path" json:"ffmpeg_path"`
	FFprobePath     string `toml:"ffprobe_path" json:"ffprobe_path"`
	MetadataTimeout int    `toml:"metadata_timeout" json:"metadata_timeout"`
	DownloadTimeout int    `toml:"download_timeout" json:"download_timeout"`
	MaxOutputBytes  int64  `toml:"max_output_bytes" json:"max_output_bytes"`
	AudioBitrate    string `toml:"audio_bitrate" json:"audio_bitrate"`
	ArtworkSize     int    `toml:"artwork_size" json:"artwork_size"`
}

// Feed contains podcast-level feed metadata defaults.
type Feed struct {
	Language         string `toml:"language" json:"language"`
	Category         string `toml:"category" json:"category"`
	Explicit         bool   `toml:"explicit" json:"explicit"`
	FallbackImageURL string `toml:"fallback_image_url" json:"fallback_image_url"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic" json:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout" json:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" json:"format"`
	Level  string `toml:"level" json:"level"`
}

// Config encapsulates all configuration values for tubecast.
//
// Configuration sections by subsystem:
//   - Paths: download scratch space, history/error state, logs
//   - Storage: S3-compatible bucket credentials and public URL
//   - Tools: yt-dlp/ffmpeg/ffprobe locations, timeouts, output bounds
//   - Feed: language, category, explicit flag, fallback artwork
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths" json:"paths"`
	Storage       Storage       `toml:"storage" json:"storage"`
	Tools         Tools         `toml:"tools" json:"tools"`
	Feed          Feed          `toml:"feed" json:"feed"`
	Notifications Notifications `toml:"notifications" json:"notifications"`
	Logging       Logging       `toml:"logging" json:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file yields defaults; storage
// credentials are only required later through RequireStorage.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		if err := decode(resolvedPath, data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		return decoder.Decode(cfg)
	}
	return toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tubecast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the download, state, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DownloadDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the history ledger location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, historyFileName)
}

// ErrorLogPath returns the error log location.
func (c *Config) ErrorLogPath() string {
	return filepath.Join(c.Paths.StateDir, errorLogFileName)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	return writeFile(path, []byte(sampleConfig))
}

// Save writes the configuration as TOML (or JSON for a .json path). Used by
// the interactive setup wizard.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = toml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
