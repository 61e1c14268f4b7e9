package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cavaliercoder/grab"

	"tubecast/internal/logging"
	"tubecast/internal/media"
	"tubecast/internal/media/artwork"
	"tubecast/internal/services"
)

const userAgent = "tubecast/1.0"

// Transcoder converts a downloaded audio container into an MP3.
type Transcoder interface {
	ToMP3(ctx context.Context, src, dst string) error
}

// DurationProber reports the duration of a local audio file.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

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

// WithProber enables duration probing of downloaded files.
func WithProber(p DurationProber) Option {
	return func(c *Client) {
		c.prober = p
	}
}

// WithHTTPClient sets the HTTP client used for thumbnail downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.grab.HTTPClient = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "ytdlp")
	}
}

// WithTimeouts overrides the metadata and per-item download limits.
func WithTimeouts(metadata, download time.Duration) Option {
	return func(c *Client) {
		if metadata > 0 {
			c.metadataTimeout = metadata
		}
		if download > 0 {
			c.downloadTimeout = download
		}
	}
}

// WithOutputLimit bounds the captured metadata JSON size.
func WithOutputLimit(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.outputLimit = limit
		}
	}
}

// WithArtworkSize sets the square cover edge length.
func WithArtworkSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.artworkSize = size
		}
	}
}

// WithClock overrides the time source used for missing upload dates.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client is the media source adapter: playlist enumeration, audio download
// plus transcode, and thumbnail fetch plus normalization.
type Client struct {
	binary          string
	downloadDir     string
	exec            services.Executor
	transcoder      Transcoder
	prober          DurationProber
	grab            *grab.Client
	logger          *slog.Logger
	metadataTimeout time.Duration
	downloadTimeout time.Duration
	outputLimit     int64
	artworkSize     int
	now             func() time.Time
}

// New constructs a yt-dlp client writing into downloadDir. transcoder is
// required; pass an ffmpeg.Client in production.
func New(binary, downloadDir string, transcoder Transcoder, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	downloadDir = strings.TrimSpace(downloadDir)
	if downloadDir == "" {
		return nil, errors.New("download directory required")
	}
	if transcoder == nil {
		return nil, errors.New("transcoder required")
	}
	grabClient := grab.NewClient()
	grabClient.UserAgent = userAgent
	client := &Client{
		binary:          binary,
		downloadDir:     downloadDir,
		exec:            services.CommandExecutor{},
		transcoder:      transcoder,
		grab:            grabClient,
		logger:          logging.NewNop(),
		metadataTimeout: 2 * time.Minute,
		downloadTimeout: 10 * time.Minute,
		outputLimit:     services.DefaultOutputLimit,
		artworkSize:     artwork.DefaultSize,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// DownloadDir returns the scratch directory used for downloads.
func (c *Client) DownloadDir() string {
	return c.downloadDir
}

// PlaylistInfo enumerates the playlist at url without downloading media.
func (c *Client) PlaylistInfo(ctx context.Context, url string) (media.Playlist, error) {
	ctx, cancel := context.WithTimeout(ctx, c.metadataTimeout)
	defer cancel()

	args := []string{"--dump-single-json", "--flat-playlist", "--no-warnings", "--", url}
	output, err := c.exec.Output(ctx, c.binary, args, c.outputLimit)
	if err != nil {
		return media.Playlist{}, c.toolError(ctx, "fetch playlist metadata", err)
	}
	playlist, skipped, err := parsePlaylist(output, c.now())
	if err != nil {
		return media.Playlist{}, err
	}
	if skipped > 0 {
		logging.WarnWithContext(c.logger, "playlist entries unavailable", "playlist_entries_skipped",
			logging.Int("skipped", skipped),
			logging.Int(logging.FieldItemCount, len(playlist.Items)),
			logging.String(logging.FieldErrorHint, "private or deleted videos are left out of the feed"),
			logging.String(logging.FieldImpact, "episode numbering skips the missing entries"))
	}
	c.logger.Info("playlist enumerated",
		logging.String(logging.FieldEventType, "playlist_enumerated"),
		logging.String("title", playlist.Title),
		logging.Int(logging.FieldItemCount, len(playlist.Items)))
	return playlist, nil
}

// Download extracts the best audio stream for item and transcodes it to
// destFilename (an .mp3 name) inside the download directory. Intermediate
// files are removed whether or not the call succeeds.
func (c *Client) Download(ctx context.Context, item media.Video, destFilename string) (string, error) {
	destFilename = filepath.Base(strings.TrimSpace(destFilename))
	if destFilename == "" || destFilename == "." {
		return "", errors.New("destination filename required")
	}
	source := strings.TrimSpace(item.SourceURL)
	if source == "" {
		source = media.WatchURL(item.ID)
	}
	if err := os.MkdirAll(c.downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("prepare download directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	base := strings.TrimSuffix(destFilename, filepath.Ext(destFilename))
	template := filepath.Join(c.downloadDir, base+".%(ext)s")
	args := []string{
		"-f", "bestaudio/best",
		"--no-playlist",
		"--no-progress",
		"--no-warnings",
		"-o", template,
		"--", source,
	}
	err := c.exec.Run(ctx, c.binary, args, func(line string) {
		c.logger.Debug("yt-dlp output", logging.String("video_id", item.ID), logging.String("line", line))
	})
	if err != nil {
		removeMatching(c.downloadDir, base)
		return "", c.toolError(ctx, "download audio", err)
	}

	intermediate, err := FindDownloaded(c.downloadDir, base)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(c.downloadDir, base+".mp3")
	if intermediate == dst {
		renamed := filepath.Join(c.downloadDir, base+".source.mp3")
		if err := os.Rename(dst, renamed); err != nil {
			return "", fmt.Errorf("stage downloaded mp3: %w", err)
		}
		intermediate = renamed
	}
	defer func() { _ = os.Remove(intermediate) }()

	if err := c.transcoder.ToMP3(ctx, intermediate, dst); err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "", "transcode", fmt.Sprintf("exceeded %s", c.downloadTimeout), err)
		}
		return "", services.Wrap(services.ErrExternalTool, "", "transcode", "", err)
	}
	return dst, nil
}

// ProbeDuration delegates to the configured prober.
func (c *Client) ProbeDuration(ctx context.Context, path string) (float64, error) {
	if c.prober == nil {
		return 0, errors.New("duration probing not configured")
	}
	return c.prober.ProbeDuration(ctx, path)
}

// DownloadThumbnail fetches url and writes a square JPEG cover named
// destFilename inside the download directory.
func (c *Client) DownloadThumbnail(ctx context.Context, url, destFilename string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", errors.New("thumbnail URL required")
	}
	destFilename = filepath.Base(strings.TrimSpace(destFilename))
	if destFilename == "" || destFilename == "." {
		return "", errors.New("destination filename required")
	}
	if err := os.MkdirAll(c.downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("prepare download directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.metadataTimeout)
	defer cancel()

	raw := filepath.Join(c.downloadDir, destFilename+".download")
	defer func() { _ = os.Remove(raw) }()

	req, err := grab.NewRequest(raw, url)
	if err != nil {
		return "", fmt.Errorf("thumbnail request: %w", err)
	}
	req = req.WithContext(ctx)
	req.NoResume = true
	resp := c.grab.Do(req)
	if err := resp.Err(); err != nil {
		return "", fmt.Errorf("thumbnail download: %w", err)
	}

	dst := filepath.Join(c.downloadDir, destFilename)
	if err := artwork.Normalize(resp.Filename, dst, c.artworkSize); err != nil {
		return "", err
	}
	return dst, nil
}

// FindDownloaded locates the file yt-dlp wrote for base. yt-dlp picks the
// extension itself, so the directory is listed and in-progress fragments are
// ignored. A pre-existing transcode target (.mp3) is used only when nothing
// else matches.
func FindDownloaded(dir, base string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("list download directory: %w", err)
	}
	prefix := base + "."
	var candidates []string
	var mp3 string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || isPartial(name) {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), ".mp3") {
			if name == base+".mp3" {
				mp3 = filepath.Join(dir, name)
			}
			continue
		}
		candidates = append(candidates, filepath.Join(dir, name))
	}
	if len(candidates) == 0 {
		if mp3 != "" {
			return mp3, nil
		}
		return "", fmt.Errorf("downloaded file for %q not found in %s", base, dir)
	}
	sort.Strings(candidates)
	return candidates[0], nil
}

func isPartial(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range []string{".part", ".temp", ".ytdl"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func removeMatching(dir, base string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), base+".") {
			_ = os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
}

func (c *Client) toolError(ctx context.Context, operation string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "", operation, "yt-dlp did not finish in time", err)
	}
	return services.Wrap(services.ErrExternalTool, "", operation, "", err)
}
