package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"tubecast/internal/fileutil"
	"tubecast/internal/logging"
)

// MaxEntries is the ledger capacity; older entries are trimmed from the tail.
const MaxEntries = 100

const lockRetryDelay = 50 * time.Millisecond

// Entry records one completed conversion.
type Entry struct {
	ID            string    `json:"id"`
	PlaylistURL   string    `json:"playlist_url"`
	PlaylistTitle string    `json:"playlist_title"`
	ChannelName   string    `json:"channel_name"`
	FeedURL       string    `json:"feed_url"`
	CreatedAt     time.Time `json:"created_at"`
	EpisodeCount  int       `json:"episode_count"`
}

// Ledger is the newest-first JSON history file. Every call reads the file
// fresh, so separate processes observe each other's writes; mutations hold
// an advisory file lock for the read-modify-write cycle.
type Ledger struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option customizes a Ledger.
type Option func(*Ledger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIDGenerator overrides entry ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// New creates a ledger backed by path. An empty path disables persistence:
// Add becomes a no-op and reads return nothing.
func New(path string, logger *slog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		path:   strings.TrimSpace(path),
		logger: logging.NewComponentLogger(logger, "history"),
		now:    time.Now,
		newID:  func() string { return "podcast-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the backing file location.
func (l *Ledger) Path() string {
	return l.path
}

// Add stamps entry with a fresh ID and creation time, prepends it, trims the
// ledger to MaxEntries, and persists the result.
func (l *Ledger) Add(ctx context.Context, entry Entry) (Entry, error) {
	entry.ID = l.newID()
	entry.CreatedAt = l.now().UTC()
	if l.path == "" {
		return entry, nil
	}

	unlock, err := l.lock(ctx)
	if err != nil {
		return Entry{}, err
	}
	defer unlock()

	entries, err := l.load()
	if err != nil {
		l.quarantine(err)
		entries = nil
	}

	entries = append([]Entry{entry}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	if err := l.save(entries); err != nil {
		return Entry{}, fmt.Errorf("persist history: %w", err)
	}

	l.logger.Debug("history entry recorded",
		logging.String("history_id", entry.ID),
		logging.String(logging.FieldPlaylistURL, entry.PlaylistURL),
		logging.Int("episode_count", entry.EpisodeCount),
		logging.Int("ledger_size", len(entries)))
	return entry, nil
}

// List returns every entry, newest first.
func (l *Ledger) List() ([]Entry, error) {
	if l.path == "" {
		return nil, nil
	}
	return l.load()
}

// Recent returns at most limit entries, newest first. A non-positive limit
// returns everything.
func (l *Ledger) Recent(limit int) ([]Entry, error) {
	entries, err := l.List()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Search returns entries whose title, channel, or playlist URL contains
// query, case-insensitively.
func (l *Ledger) Search(query string) ([]Entry, error) {
	entries, err := l.List()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return entries, nil
	}
	matches := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.PlaylistTitle), needle) ||
			strings.Contains(strings.ToLower(entry.ChannelName), needle) ||
			strings.Contains(strings.ToLower(entry.PlaylistURL), needle) {
			matches = append(matches, entry)
		}
	}
	return matches, nil
}

// FindByPlaylistURL returns the most recent entry for url.
func (l *Ledger) FindByPlaylistURL(url string) (Entry, bool, error) {
	entries, err := l.List()
	if err != nil {
		return Entry{}, false, err
	}
	url = strings.TrimSpace(url)
	for _, entry := range entries {
		if entry.PlaylistURL == url {
			return entry, true, nil
		}
	}
	return Entry{}, false, nil
}

func (l *Ledger) lock(ctx context.Context) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	fileLock := flock.New(l.path + ".lock")
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock history: %w", err)
	}
	if !locked {
		return nil, errors.New("lock history: not acquired")
	}
	return func() { _ = fileLock.Unlock() }, nil
}

func (l *Ledger) load() ([]Entry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse history file: %w", err)
	}
	return entries, nil
}

func (l *Ledger) save(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return fileutil.WriteFileAtomic(l.path, data, 0o644)
}

// quarantine moves an unreadable ledger aside so the next write starts clean
// without destroying the old data.
func (l *Ledger) quarantine(cause error) {
	backup := l.path + ".corrupt"
	renameErr := os.Rename(l.path, backup)
	attrs := []logging.Attr{
		logging.Error(cause),
		logging.String("backup_path", backup),
		logging.String(logging.FieldErrorHint, "inspect the backup file and merge entries manually if needed"),
		logging.String(logging.FieldImpact, "history starts empty"),
	}
	if renameErr != nil && !errors.Is(renameErr, fs.ErrNotExist) {
		attrs = append(attrs, logging.String("rename_error", renameErr.Error()))
	}
	logging.WarnWithContext(l.logger, "history file unreadable", "history_load_failed", attrs...)
}
