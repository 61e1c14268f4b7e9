// Package errorlog appends failed runs to a JSON-lines file so operators can
// review what went wrong after the terminal session has ended.
package errorlog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"tubecast/internal/services"
)

// Record is one line of the error log.
type Record struct {
	Timestamp time.Time         `json:"timestamp"`
	Error     ErrorDetail       `json:"error"`
	Context   map[string]string `json:"context,omitempty"`
}

// ErrorDetail describes the failure itself.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Chain   string `json:"chain,omitempty"`
}

// Log appends records to path. Writes never fail the caller: when the file
// cannot be written the record is printed to the fallback writer instead.
type Log struct {
	path     string
	fallback io.Writer
	now      func() time.Time
}

// New creates a log writing to path, degrading to fallback (os.Stderr when nil).
func New(path string, fallback io.Writer) *Log {
	if fallback == nil {
		fallback = os.Stderr
	}
	return &Log{path: strings.TrimSpace(path), fallback: fallback, now: time.Now}
}

// Path returns the backing file location.
func (l *Log) Path() string {
	return l.path
}

// Record appends err with the supplied context fields. Context values from
// ctx (stage, playlist URL, run ID) are merged in when not already present.
func (l *Log) Record(ctx context.Context, err error, fields map[string]string) {
	if err == nil {
		return
	}
	rec := Record{
		Timestamp: l.now().UTC(),
		Error: ErrorDetail{
			Kind:    services.Kind(err),
			Message: services.Message(err),
			Chain:   err.Error(),
		},
		Context: mergeContext(ctx, fields),
	}
	line, marshalErr := json.Marshal(rec)
	if marshalErr != nil {
		fmt.Fprintf(l.fallback, "error log: encode record: %v; original error: %v\n", marshalErr, err)
		return
	}
	if writeErr := l.append(line); writeErr != nil {
		fmt.Fprintf(l.fallback, "error log unavailable (%v): %s\n", writeErr, line)
	}
}

// Recent returns the last count records, oldest first. Lines that fail to
// parse are skipped.
func (l *Log) Recent(count int) ([]Record, error) {
	if l.path == "" {
		return nil, nil
	}
	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open error log: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		records = append(records, rec)
		if count > 0 && len(records) > count {
			records = records[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read error log: %w", err)
	}
	return records, nil
}

func (l *Log) append(line []byte) error {
	if l.path == "" {
		return errors.New("no error log path configured")
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	fileLock := flock.New(l.path + ".lock")
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	defer func() { _ = fileLock.Unlock() }()

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func mergeContext(ctx context.Context, fields map[string]string) map[string]string {
	merged := make(map[string]string, len(fields)+3)
	for key, value := range fields {
		if strings.TrimSpace(value) != "" {
			merged[key] = value
		}
	}
	if ctx != nil {
		setDefault(ctx, merged, "stage", services.StageFromContext)
		setDefault(ctx, merged, "run_id", services.RequestIDFromContext)
		setDefault(ctx, merged, "playlist_url", services.PlaylistURLFromContext)
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

func setDefault(ctx context.Context, dst map[string]string, key string, lookup func(context.Context) (string, bool)) {
	if _, ok := dst[key]; ok {
		return
	}
	if value, ok := lookup(ctx); ok {
		dst[key] = value
	}
}
