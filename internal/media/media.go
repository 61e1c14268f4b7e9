package media

import (
	"strings"
	"time"
)

// Default labels used when the source omits playlist metadata.
const (
	UnknownPlaylist = "Unknown Playlist"
	UnknownChannel  = "Unknown Channel"
)

// Video describes one playlist entry as reported by the source.
type Video struct {
	ID              string
	Title           string
	Description     string
	DurationSeconds float64
	UploadDate      time.Time
	Uploader        string
	ThumbnailURL    string
	SourceURL       string
}

// Playlist is the enumerated source playlist. Items only contains entries the
// source could resolve, in playlist order.
type Playlist struct {
	Title   string
	Channel string
	Items   []Video
}

// WatchURL returns the canonical watch page for a video ID.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + strings.TrimSpace(id)
}

// FirstThumbnail returns the first item with a thumbnail URL.
func (p Playlist) FirstThumbnail() (Video, bool) {
	for _, item := range p.Items {
		if strings.TrimSpace(item.ThumbnailURL) != "" {
			return item, true
		}
	}
	return Video{}, false
}
