package objectstore

import (
	"fmt"
	"path/filepath"
	"strings"
)

const keyRoot = "podcasts"

// Cache lifetimes applied on upload. Media objects never change under a key;
// the feed is rewritten on each run.
const (
	MediaCacheControl = "public, max-age=31536000"
	FeedCacheControl  = "public, max-age=300"
)

// EpisodeKey returns podcasts/{slug}/episodes/{ordinal}-{filename}.
func EpisodeKey(slug string, ordinal int, filename string) string {
	return fmt.Sprintf("%s/%s/episodes/%d-%s", keyRoot, slug, ordinal, filepath.Base(filename))
}

// ArtworkKey returns podcasts/{slug}/cover.jpg.
func ArtworkKey(slug string) string {
	return keyRoot + "/" + slug + "/cover.jpg"
}

// FeedKey returns podcasts/{slug}/feed.xml.
func FeedKey(slug string) string {
	return keyRoot + "/" + slug + "/feed.xml"
}

// ContentType maps a file extension to the MIME type stored with the object.
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".xml":
		return "application/rss+xml"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

func cacheControl(contentType string) string {
	if contentType == "application/rss+xml" {
		return FeedCacheControl
	}
	return MediaCacheControl
}
