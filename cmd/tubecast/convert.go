package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tubecast/internal/config"
	"tubecast/internal/deps"
	"tubecast/internal/errorlog"
	"tubecast/internal/feed"
	"tubecast/internal/history"
	"tubecast/internal/logging"
	"tubecast/internal/media/ffprobe"
	"tubecast/internal/notifications"
	"tubecast/internal/objectstore"
	"tubecast/internal/pipeline"
	"tubecast/internal/preflight"
	"tubecast/internal/services"
	"tubecast/internal/services/ffmpeg"
	"tubecast/internal/services/ytdlp"
	"tubecast/internal/staging"
	"tubecast/internal/tui"
	"tubecast/internal/validate"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "convert [playlist-url]",
		Short: "Convert a YouTube playlist into a podcast feed",
		Long: "Download every video of a playlist as MP3, upload the episodes and artwork, " +
			"and publish an RSS feed. Without a URL the interactive UI prompts for one.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var playlistURL string
			if len(args) == 1 {
				playlistURL = strings.TrimSpace(args[0])
			}

			interactive := !plain && isTerminal(cmd.OutOrStdout())
			if !interactive {
				if err := validate.PlaylistURL(playlistURL); err != nil {
					return services.Wrap(services.ErrValidation, "", "convert", "invalid playlist URL", err)
				}
			}

			statuses := preflight.CheckSystemDeps(cfg)
			if err := deps.Missing(statuses); err != nil {
				return err
			}
			if err := cfg.RequireStorage(); err != nil {
				return services.Wrap(services.ErrConfiguration, "", "convert", "storage not configured", err)
			}

			logger, err := logging.NewFromConfig(cfg, !interactive)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			staging.Sweep(cmd.Context(), cfg.Paths.DownloadDir, staging.DefaultMaxAge, logger)

			processor, err := buildProcessor(cfg, statuses, logger, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if interactive {
				feedURL, err := tui.Run(runCtx, processor, playlistURL, cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					if errors.Is(err, tui.ErrAborted) {
						return nil
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Feed URL: %s\n", feedURL)
				return nil
			}

			renderer := tui.NewPlainRenderer(cmd.OutOrStdout())
			if _, err := processor.Process(runCtx, playlistURL, renderer); err != nil {
				return &reportedError{err: err}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print line-oriented progress instead of the interactive UI")
	return cmd
}

// buildProcessor wires the media source, object store, ledger, error log, and
// notifier described by cfg into a pipeline processor.
func buildProcessor(cfg *config.Config, statuses []deps.Status, logger *slog.Logger, stderr io.Writer) (*pipeline.Processor, error) {
	transcoder := ffmpeg.New(cfg.Tools.FFmpegPath, cfg.Tools.AudioBitrate, ffmpeg.WithLogger(logger))

	sourceOpts := []ytdlp.Option{
		ytdlp.WithLogger(logger),
		ytdlp.WithTimeouts(seconds(cfg.Tools.MetadataTimeout), seconds(cfg.Tools.DownloadTimeout)),
		ytdlp.WithOutputLimit(cfg.Tools.MaxOutputBytes),
		ytdlp.WithArtworkSize(cfg.Tools.ArtworkSize),
	}
	if deps.Available(statuses, "FFprobe") {
		sourceOpts = append(sourceOpts, ytdlp.WithProber(ffprobe.New(cfg.Tools.FFprobePath, nil)))
	}
	source, err := ytdlp.New(cfg.Tools.YtDlpPath, cfg.Paths.DownloadDir, transcoder, sourceOpts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "convert", "media source", err)
	}

	store, err := objectstore.New(objectstore.SettingsFromConfig(cfg), objectstore.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	options := pipeline.Options{
		Feed: feed.Settings{
			Language: cfg.Feed.Language,
			Category: cfg.Feed.Category,
			Explicit: cfg.Feed.Explicit,
		},
		FallbackImageURL: cfg.Feed.FallbackImageURL,
	}
	return pipeline.New(options, source, store,
		pipeline.WithLogger(logger),
		pipeline.WithLedger(history.New(cfg.HistoryPath(), logger)),
		pipeline.WithErrorLog(errorlog.New(cfg.ErrorLogPath(), stderr)),
		pipeline.WithNotifier(notifications.NewService(cfg)),
	), nil
}

func seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
