package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tubecast/internal/logging"
)

// DefaultMaxAge is the age after which a leftover download is considered
// abandoned. It is well above the longest download timeout so a concurrent
// run never loses its working files.
const DefaultMaxAge = 24 * time.Hour

// SweepResult lists what Sweep removed and what it could not.
type SweepResult struct {
	Removed []string
	Errors  []SweepError
}

// SweepError pairs a path with its removal error.
type SweepError struct {
	Path string
	Err  error
}

// Sweep deletes entries of downloadDir whose modification time is older than
// maxAge. A missing or blank directory is not an error.
func Sweep(ctx context.Context, downloadDir string, maxAge time.Duration, logger *slog.Logger) SweepResult {
	var result SweepResult
	if logger == nil {
		logger = logging.NewNop()
	}

	downloadDir = strings.TrimSpace(downloadDir)
	if downloadDir == "" {
		return result
	}
	entries, err := os.ReadDir(downloadDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, SweepError{Path: downloadDir, Err: err})
		}
		return result
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		path := filepath.Join(downloadDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, SweepError{Path: path, Err: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, SweepError{Path: path, Err: err})
			logging.WarnWithContext(logger, "failed to remove stale download", "staging_sweep_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check download_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed stale download",
			logging.String("path", path),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "staging_sweep"),
		)
	}
	return result
}
