package tui

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tubecast/internal/media"
	"tubecast/internal/objectstore"
	"tubecast/internal/pipeline"
	"tubecast/internal/services"
)

// slowSource writes a partial download then waits for cancellation, taking a
// moment to unwind like a real subprocess would.
type slowSource struct {
	dir     string
	started chan struct{}
}

func (s *slowSource) PlaylistInfo(context.Context, string) (media.Playlist, error) {
	return media.Playlist{Title: "Talks", Items: []media.Video{{ID: "vid1", Title: "One"}}}, nil
}

func (s *slowSource) Download(ctx context.Context, _ media.Video, destFilename string) (string, error) {
	path := filepath.Join(s.dir, destFilename)
	if err := os.WriteFile(path, []byte("partial"), 0o644); err != nil {
		return "", err
	}
	close(s.started)
	<-ctx.Done()
	time.Sleep(200 * time.Millisecond)
	return path, ctx.Err()
}

func (s *slowSource) DownloadThumbnail(context.Context, string, string) (string, error) {
	return "", errors.New("no thumbnail")
}

type nopStore struct{}

func (nopStore) Upload(context.Context, string, string, string) (objectstore.Object, error) {
	return objectstore.Object{}, errors.New("unexpected upload")
}

func (nopStore) UploadFeedDocument(context.Context, string, string) (objectstore.Object, error) {
	return objectstore.Object{}, errors.New("unexpected feed upload")
}

func (nopStore) PublicURL(key string) string { return "https://cdn.example.com/" + key }

func TestRunWaitsForCleanupWhenContextCanceled(t *testing.T) {
	dir := t.TempDir()
	source := &slowSource{dir: dir, started: make(chan struct{})}
	processor := pipeline.New(pipeline.Options{}, source, nopStore{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-source.started:
		case <-time.After(5 * time.Second):
		}
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		_, err := Run(ctx, processor, validURL, strings.NewReader(""), io.Discard)
		done <- err
	}()

	var err error
	select {
	case err = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if !errors.Is(err, services.ErrCanceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("read scratch dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("expected scratch dir to be empty, found %d entries", len(entries))
	}
}

func TestStreamTrackerRefusesStartAfterDrain(t *testing.T) {
	var tracker streamTracker
	tracker.drain()
	events := tracker.start(context.Background(), nil, validURL)
	if _, ok := <-events; ok {
		t.Fatal("expected closed stream after drain")
	}
}
