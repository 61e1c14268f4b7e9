package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStorage()
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeFeed()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		c.Paths.DownloadDir = defaultDownloadDir
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStorage() {
	c.Storage.Endpoint = strings.TrimRight(strings.TrimSpace(c.Storage.Endpoint), "/")
	c.Storage.PublicURL = strings.TrimRight(strings.TrimSpace(c.Storage.PublicURL), "/")
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.AccessKey = strings.TrimSpace(c.Storage.AccessKey)
	if c.Storage.AccessKey == "" {
		c.Storage.AccessKey = firstEnv("TUBECAST_ACCESS_KEY", "AWS_ACCESS_KEY_ID")
	}
	c.Storage.SecretKey = strings.TrimSpace(c.Storage.SecretKey)
	if c.Storage.SecretKey == "" {
		c.Storage.SecretKey = firstEnv("TUBECAST_SECRET_KEY", "AWS_SECRET_ACCESS_KEY")
	}
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	if c.Storage.Region == "" {
		c.Storage.Region = defaultRegion
	}
	if c.Storage.RequestTimeout <= 0 {
		c.Storage.RequestTimeout = defaultStorageTimeout
	}
}

func (c *Config) normalizeTools() error {
	var err error
	c.Tools.YtDlpPath, err = normalizeBinary(c.Tools.YtDlpPath, defaultYtDlpPath)
	if err != nil {
		return fmt.Errorf("tools.ytdlp_path: %w", err)
	}
	c.Tools.FFmpegPath, err = normalizeBinary(c.Tools.FFmpegPath, defaultFFmpegPath)
	if err != nil {
		return fmt.Errorf("tools.ffmpeg_path: %w", err)
	}
	c.Tools.FFprobePath, err = normalizeBinary(c.Tools.FFprobePath, defaultFFprobePath)
	if err != nil {
		return fmt.Errorf("tools.ffprobe_path: %w", err)
	}
	if c.Tools.MetadataTimeout <= 0 {
		c.Tools.MetadataTimeout = defaultMetadataTimeout
	}
	if c.Tools.DownloadTimeout <= 0 {
		c.Tools.DownloadTimeout = defaultDownloadTimeout
	}
	if c.Tools.MaxOutputBytes <= 0 {
		c.Tools.MaxOutputBytes = defaultMaxOutputBytes
	}
	c.Tools.AudioBitrate = strings.ToLower(strings.TrimSpace(c.Tools.AudioBitrate))
	if c.Tools.AudioBitrate == "" {
		c.Tools.AudioBitrate = defaultAudioBitrate
	}
	if c.Tools.ArtworkSize <= 0 {
		c.Tools.ArtworkSize = defaultArtworkSize
	}
	return nil
}

// normalizeBinary keeps bare command names for PATH lookup and expands
// anything that looks like a path.
func normalizeBinary(value, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	if !strings.ContainsAny(value, `/\`) && !strings.HasPrefix(value, "~") {
		return value, nil
	}
	return expandPath(value)
}

func (c *Config) normalizeFeed() {
	c.Feed.Language = strings.TrimSpace(c.Feed.Language)
	if c.Feed.Language == "" {
		c.Feed.Language = defaultFeedLanguage
	}
	c.Feed.Category = strings.TrimSpace(c.Feed.Category)
	if c.Feed.Category == "" {
		c.Feed.Category = defaultFeedCategory
	}
	c.Feed.FallbackImageURL = strings.TrimSpace(c.Feed.FallbackImageURL)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
