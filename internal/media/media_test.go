package media

import "testing"

func TestFirstThumbnailSkipsItemsWithoutArtwork(t *testing.T) {
	playlist := Playlist{Items: []Video{
		{ID: "a"},
		{ID: "b", ThumbnailURL: "https://i.ytimg.com/vi/b/hq.jpg"},
		{ID: "c", ThumbnailURL: "https://i.ytimg.com/vi/c/hq.jpg"},
	}}
	item, ok := playlist.FirstThumbnail()
	if !ok || item.ID != "b" {
		t.Fatalf("expected item b, got %+v ok=%v", item, ok)
	}
	if _, ok := (Playlist{Items: []Video{{ID: "x"}}}).FirstThumbnail(); ok {
		t.Fatal("expected no thumbnail")
	}
}

func TestWatchURL(t *testing.T) {
	if got := WatchURL(" dQw4w9WgXcQ "); got != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("unexpected watch URL %q", got)
	}
}
