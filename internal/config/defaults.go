package config

const (
	defaultConfigPath      = "~/.config/tubecast/config.toml"
	defaultDownloadDir     = "~/.cache/tubecast/downloads"
	defaultStateDir        = "~/.config/tubecast"
	defaultLogDir          = "~/.local/share/tubecast/logs"
	defaultRegion          = "auto"
	defaultStorageTimeout  = 300
	defaultYtDlpPath       = "yt-dlp"
	defaultFFmpegPath      = "ffmpeg"
	defaultFFprobePath     = "ffprobe"
	defaultMetadataTimeout = 120
	defaultDownloadTimeout = 600
	defaultMaxOutputBytes  = 50 << 20
	defaultAudioBitrate    = "192k"
	defaultArtworkSize     = 1400
	defaultFeedLanguage    = "en-US"
	defaultFeedCategory    = "Technology"
	defaultNtfyTimeout     = 10
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"

	historyFileName  = "history.json"
	errorLogFileName = "errors.log"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
		},
		Storage: Storage{
			Region:         defaultRegion,
			RequestTimeout: defaultStorageTimeout,
		},
		Tools: Tools{
			YtDlpPath:       defaultYtDlpPath,
			FFmpegPath:      defaultFFmpegPath,
			FFprobePath:     defaultFFprobePath,
			MetadataTimeout: defaultMetadataTimeout,
			DownloadTimeout: defaultDownloadTimeout,
			MaxOutputBytes:  defaultMaxOutputBytes,
			AudioBitrate:    defaultAudioBitrate,
			ArtworkSize:     defaultArtworkSize,
		},
		Feed: Feed{
			Language: defaultFeedLanguage,
			Category: defaultFeedCategory,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
