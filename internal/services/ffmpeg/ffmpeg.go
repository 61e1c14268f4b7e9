// Package ffmpeg wraps the ffmpeg CLI for the one conversion tubecast needs:
// any downloaded audio container to a constant-bitrate MP3.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"tubecast/internal/logging"
	"tubecast/internal/services"
)

// DefaultBitrate matches common podcast encoding.
const DefaultBitrate = "192k"

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger attaches a logger for ffmpeg output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "ffmpeg")
	}
}

// Client wraps ffmpeg invocations.
type Client struct {
	binary  string
	bitrate string
	exec    services.Executor
	logger  *slog.Logger
}

// New constructs an ffmpeg client.
func New(binary, bitrate string, opts ...Option) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	bitrate = strings.TrimSpace(bitrate)
	if bitrate == "" {
		bitrate = DefaultBitrate
	}
	client := &Client{
		binary:  binary,
		bitrate: bitrate,
		exec:    services.CommandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// ToMP3 transcodes src into dst, overwriting dst. A failed or empty result
// leaves no file at dst.
func (c *Client) ToMP3(ctx context.Context, src, dst string) error {
	if src == "" || dst == "" {
		return errors.New("ffmpeg: source and destination required")
	}
	args := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-y",
		"-i", src,
		"-vn",
		"-acodec", "libmp3lame",
		"-ab", c.bitrate,
		dst,
	}
	err := c.exec.Run(ctx, c.binary, args, func(line string) {
		c.logger.Debug("ffmpeg output", logging.String("line", line))
	})
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("ffmpeg transcode: %w", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		return fmt.Errorf("ffmpeg transcode: output missing: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(dst)
		return errors.New("ffmpeg transcode: output is empty")
	}
	return nil
}
