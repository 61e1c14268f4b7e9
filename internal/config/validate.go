package config

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/text/language"

	"tubecast/internal/validate"
)

var bitratePattern = regexp.MustCompile(`^[0-9]+k$`)

// Validate ensures every configured value is well formed. Missing storage
// credentials are not an error here; see RequireStorage.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.Endpoint != "" {
		if err := validate.Endpoint(c.Storage.Endpoint); err != nil {
			return fmt.Errorf("storage.endpoint: %w", err)
		}
	}
	if c.Storage.PublicURL != "" {
		if err := validate.PublicURL(c.Storage.PublicURL); err != nil {
			return fmt.Errorf("storage.public_url: %w", err)
		}
	}
	if c.Storage.Bucket != "" {
		if err := validate.BucketName(c.Storage.Bucket); err != nil {
			return fmt.Errorf("storage.bucket: %w", err)
		}
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.MetadataTimeout <= 0 {
		return errors.New("tools.metadata_timeout must be positive")
	}
	if c.Tools.DownloadTimeout <= 0 {
		return errors.New("tools.download_timeout must be positive")
	}
	if c.Tools.MaxOutputBytes < 1<<20 {
		return errors.New("tools.max_output_bytes must be at least 1048576")
	}
	if !bitratePattern.MatchString(c.Tools.AudioBitrate) {
		return fmt.Errorf("tools.audio_bitrate must look like 192k, got %q", c.Tools.AudioBitrate)
	}
	if c.Tools.ArtworkSize < 300 || c.Tools.ArtworkSize > 3000 {
		return errors.New("tools.artwork_size must be between 300 and 3000")
	}
	return nil
}

func (c *Config) validateFeed() error {
	if _, err := language.Parse(c.Feed.Language); err != nil {
		return fmt.Errorf("feed.language %q is not a valid language tag: %w", c.Feed.Language, err)
	}
	if c.Feed.FallbackImageURL != "" {
		if err := validate.PublicURL(c.Feed.FallbackImageURL); err != nil {
			return fmt.Errorf("feed.fallback_image_url: %w", err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

// RequireStorage reports whether the object store is fully configured, which
// is a precondition for running a conversion.
func (c *Config) RequireStorage() error {
	missing := func(key string) error {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("storage.%s is required. Edit %s or run 'tubecast config init --interactive'", key, defaultPath)
	}
	switch {
	case c.Storage.Endpoint == "":
		return missing("endpoint")
	case c.Storage.PublicURL == "":
		return missing("public_url")
	case c.Storage.AccessKey == "":
		return missing("access_key")
	case c.Storage.SecretKey == "":
		return missing("secret_key")
	case c.Storage.Bucket == "":
		return missing("bucket")
	}
	return nil
}
