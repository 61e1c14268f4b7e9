package history_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tubecast/internal/history"
)

func newTestLedger(t *testing.T) (*history.Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	seq := 0
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ledger := history.New(path, nil,
		history.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("podcast-%d", seq)
		}),
		history.WithClock(func() time.Time { return base.Add(time.Duration(seq) * time.Minute) }),
	)
	return ledger, path
}

func TestAddPrependsAndStamps(t *testing.T) {
	ledger, path := newTestLedger(t)
	ctx := context.Background()

	first, err := ledger.Add(ctx, history.Entry{PlaylistURL: "https://www.youtube.com/playlist?list=A", PlaylistTitle: "Alpha", EpisodeCount: 3})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if first.ID != "podcast-1" || first.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", first)
	}
	if _, err := ledger.Add(ctx, history.Entry{PlaylistURL: "https://www.youtube.com/playlist?list=B", PlaylistTitle: "Beta"}); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	entries, err := ledger.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 2 || entries[0].PlaylistTitle != "Beta" || entries[1].PlaylistTitle != "Alpha" {
		t.Fatalf("expected newest first, got %+v", entries)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	var onDisk []map[string]any
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("ledger is not a JSON array: %v", err)
	}
	if onDisk[0]["feed_url"] == nil || onDisk[0]["episode_count"] == nil {
		t.Fatalf("expected snake_case keys, got %v", onDisk[0])
	}
}

func TestAddCapsAtMaxEntries(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	for i := 1; i <= history.MaxEntries+1; i++ {
		if _, err := ledger.Add(ctx, history.Entry{PlaylistTitle: fmt.Sprintf("run %d", i)}); err != nil {
			t.Fatalf("Add %d returned error: %v", i, err)
		}
	}

	entries, err := ledger.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != history.MaxEntries {
		t.Fatalf("expected %d entries, got %d", history.MaxEntries, len(entries))
	}
	if entries[0].PlaylistTitle != fmt.Sprintf("run %d", history.MaxEntries+1) {
		t.Fatalf("expected newest first, got %q", entries[0].PlaylistTitle)
	}
	if entries[len(entries)-1].PlaylistTitle != "run 2" {
		t.Fatalf("expected oldest entry dropped, tail is %q", entries[len(entries)-1].PlaylistTitle)
	}
}

func TestSearchRecentAndFind(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	seed := []history.Entry{
		{PlaylistURL: "https://www.youtube.com/playlist?list=GO", PlaylistTitle: "Go Talks", ChannelName: "Gopher Academy"},
		{PlaylistURL: "https://www.youtube.com/playlist?list=RS", PlaylistTitle: "Rust Weekly", ChannelName: "Crab Cast"},
		{PlaylistURL: "https://www.youtube.com/playlist?list=GO", PlaylistTitle: "Go Talks", ChannelName: "Gopher Academy", EpisodeCount: 9},
	}
	for _, entry := range seed {
		if _, err := ledger.Add(ctx, entry); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}

	matches, err := ledger.Search("GOPHER")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if byURL, _ := ledger.Search("list=rs"); len(byURL) != 1 {
		t.Fatalf("expected URL match, got %d", len(byURL))
	}

	recent, err := ledger.Recent(1)
	if err != nil || len(recent) != 1 || recent[0].EpisodeCount != 9 {
		t.Fatalf("unexpected recent result %+v %v", recent, err)
	}

	found, ok, err := ledger.FindByPlaylistURL("https://www.youtube.com/playlist?list=GO")
	if err != nil || !ok {
		t.Fatalf("expected entry found, got ok=%v err=%v", ok, err)
	}
	if found.EpisodeCount != 9 {
		t.Fatalf("expected most recent entry, got %+v", found)
	}
	if _, ok, _ := ledger.FindByPlaylistURL("https://www.youtube.com/playlist?list=NONE"); ok {
		t.Fatal("expected no match")
	}
}

func TestCorruptLedgerIsQuarantined(t *testing.T) {
	ledger, path := newTestLedger(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.List(); err == nil {
		t.Fatal("expected parse error from corrupt ledger")
	}
	if _, err := ledger.Add(context.Background(), history.Entry{PlaylistTitle: "fresh"}); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	entries, err := ledger.List()
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected fresh ledger, got %+v %v", entries, err)
	}
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Fatalf("expected corrupt backup: %v", err)
	}
}

func TestEmptyPathIsNoop(t *testing.T) {
	ledger := history.New("", nil)
	entry, err := ledger.Add(context.Background(), history.Entry{PlaylistTitle: "x"})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("expected id even without persistence")
	}
	entries, err := ledger.List()
	if err != nil || entries != nil {
		t.Fatalf("expected nil entries, got %v %v", entries, err)
	}
}
