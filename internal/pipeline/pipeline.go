package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tubecast/internal/feed"
	"tubecast/internal/fileutil"
	"tubecast/internal/history"
	"tubecast/internal/logging"
	"tubecast/internal/media"
	"tubecast/internal/notifications"
	"tubecast/internal/objectstore"
	"tubecast/internal/services"
	"tubecast/internal/validate"
)

const artworkFileName = "cover.jpg"

// MediaSource enumerates playlists and fetches media for them.
type MediaSource interface {
	PlaylistInfo(ctx context.Context, url string) (media.Playlist, error)
	Download(ctx context.Context, item media.Video, destFilename string) (string, error)
	DownloadThumbnail(ctx context.Context, url, destFilename string) (string, error)
}

// DurationProber is implemented by sources that can measure a downloaded
// file when the playlist metadata carried no duration.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// ObjectStore publishes files and feed documents.
type ObjectStore interface {
	Upload(ctx context.Context, localPath, key, contentType string) (objectstore.Object, error)
	UploadFeedDocument(ctx context.Context, document, key string) (objectstore.Object, error)
	PublicURL(key string) string
}

// Ledger records successful runs.
type Ledger interface {
	Add(ctx context.Context, entry history.Entry) (history.Entry, error)
}

// ErrorRecorder persists failed runs for later inspection.
type ErrorRecorder interface {
	Record(ctx context.Context, err error, fields map[string]string)
}

// Options carries the configuration-derived settings for a Processor.
type Options struct {
	Feed             feed.Settings
	FallbackImageURL string
}

// Option customizes a Processor.
type Option func(*Processor)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logging.NewComponentLogger(logger, "pipeline")
		}
	}
}

// WithLedger enables history recording.
func WithLedger(ledger Ledger) Option {
	return func(p *Processor) {
		p.ledger = ledger
	}
}

// WithErrorLog enables the persistent error log.
func WithErrorLog(recorder ErrorRecorder) Option {
	return func(p *Processor) {
		p.errors = recorder
	}
}

// WithNotifier enables run outcome notifications.
func WithNotifier(notifier notifications.Service) Option {
	return func(p *Processor) {
		if notifier != nil {
			p.notifier = notifier
		}
	}
}

// WithRunIDGenerator overrides run correlation id generation.
func WithRunIDGenerator(fn func() string) Option {
	return func(p *Processor) {
		if fn != nil {
			p.newRunID = fn
		}
	}
}

// DownloadedAsset is a local audio file owned by the current run.
type DownloadedAsset struct {
	VideoID  string
	Path     string
	Filename string
	Ordinal  int
}

// Processor runs conversions. A Processor is not safe for concurrent
// Process calls.
type Processor struct {
	opts     Options
	source   MediaSource
	store    ObjectStore
	ledger   Ledger
	errors   ErrorRecorder
	notifier notifications.Service
	logger   *slog.Logger
	newRunID func() string
}

// New constructs a Processor.
func New(cfg Options, source MediaSource, store ObjectStore, opts ...Option) *Processor {
	p := &Processor{
		opts:     cfg,
		source:   source,
		store:    store,
		notifier: notifications.NewService(nil),
		logger:   logging.NewNop(),
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run holds per-call state.
type run struct {
	p        *Processor
	ctx      context.Context
	sink     Sink
	url      string
	scratch  *fileutil.Scratch
	stage    Stage
	logger   *slog.Logger
	playlist media.Playlist
	slug     string
	assets   []DownloadedAsset
	artwork  string
	episodes []feed.Episode
	coverURL string
	feedURL  string
	document string
}

// Process converts playlistURL and returns the public feed URL.
func (p *Processor) Process(ctx context.Context, playlistURL string, sink Sink) (string, error) {
	if sink == nil {
		sink = discardSink{}
	}
	playlistURL = strings.TrimSpace(playlistURL)
	ctx = services.WithRequestID(ctx, p.newRunID())
	ctx = services.WithPlaylistURL(ctx, playlistURL)

	r := &run{
		p:       p,
		ctx:     ctx,
		sink:    sink,
		url:     playlistURL,
		scratch: &fileutil.Scratch{},
		logger:  logging.WithContext(ctx, p.logger),
	}
	defer r.cleanup()

	if err := validate.PlaylistURL(playlistURL); err != nil {
		return "", r.fail(services.Wrap(services.ErrValidation, "", "validate playlist URL", "", err))
	}
	if p.source == nil || p.store == nil {
		return "", r.fail(services.Wrap(services.ErrConfiguration, "", "start run", "media source and object store are required", nil))
	}

	r.logger.Info("conversion started", logging.String(logging.FieldEventType, "run_start"))
	start := time.Now()

	steps := []struct {
		stage Stage
		fn    func() error
	}{
		{StageFetching, r.fetch},
		{StageDownloading, r.download},
		{StageArtwork, r.prepareArtwork},
		{StageUploading, r.upload},
		{StageSynthesizing, r.synthesize},
		{StagePublishing, r.publish},
		{StageCleanup, r.cleanupStage},
		{StageRecording, r.record},
	}
	for _, step := range steps {
		if err := r.enter(step.stage); err != nil {
			return "", r.fail(err)
		}
		if err := step.fn(); err != nil {
			return "", r.fail(err)
		}
	}

	r.stage = StageComplete
	r.logger.Info("conversion complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("feed_url", r.feedURL),
		logging.Int(logging.FieldItemCount, len(r.episodes)),
		logging.Duration("elapsed", time.Since(start)))
	if err := p.notifier.NotifyFeedPublished(r.ctx, r.playlist.Title, r.feedURL, len(r.episodes)); err != nil {
		logging.WarnWithContext(r.logger, "feed notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "the feed was published; only the notification was lost"))
	}
	r.sink.Emit(Event{Kind: KindComplete, Stage: StageComplete, Label: string(StageComplete), Message: "Podcast feed published", FeedURL: r.feedURL})
	return r.feedURL, nil
}
