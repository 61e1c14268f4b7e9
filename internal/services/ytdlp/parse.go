package ytdlp

import (
	"encoding/json"
	"strings"
	"time"

	"tubecast/internal/media"
	"tubecast/internal/services"
)

const uploadDateLayout = "20060102"

type thumbnail struct {
	URL string `json:"url"`
}

type entry struct {
	Type        string      `json:"_type"`
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    *float64    `json:"duration"`
	UploadDate  string      `json:"upload_date"`
	Uploader    string      `json:"uploader"`
	Channel     string      `json:"channel"`
	Thumbnail   string      `json:"thumbnail"`
	Thumbnails  []thumbnail `json:"thumbnails"`
	URL         string      `json:"url"`
	WebpageURL  string      `json:"webpage_url"`
}

type playlistDocument struct {
	entry
	Entries []*entry `json:"entries"`
}

// parsePlaylist decodes --dump-single-json output. Null entries (private or
// removed videos) are dropped and counted in skipped. A document without
// entries describes a single video and becomes a one-item playlist.
func parsePlaylist(data []byte, now time.Time) (media.Playlist, int, error) {
	var doc playlistDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return media.Playlist{}, 0, services.Wrap(services.ErrExternalTool, "", "parse playlist metadata", "yt-dlp returned malformed JSON", err)
	}

	channel := firstNonEmpty(doc.Uploader, doc.Channel, media.UnknownChannel)
	playlist := media.Playlist{
		Title:   firstNonEmpty(doc.Title, media.UnknownPlaylist),
		Channel: channel,
	}

	if doc.Type != "playlist" && doc.Entries == nil {
		if strings.TrimSpace(doc.ID) == "" {
			return media.Playlist{}, 0, services.Wrap(services.ErrExternalTool, "", "parse playlist metadata", "document has neither entries nor an id", nil)
		}
		playlist.Items = []media.Video{toVideo(doc.entry, channel, now)}
		return playlist, 0, nil
	}

	skipped := 0
	for _, item := range doc.Entries {
		if item == nil || strings.TrimSpace(item.ID) == "" {
			skipped++
			continue
		}
		playlist.Items = append(playlist.Items, toVideo(*item, channel, now))
	}
	return playlist, skipped, nil
}

func toVideo(e entry, channel string, now time.Time) media.Video {
	video := media.Video{
		ID:           strings.TrimSpace(e.ID),
		Title:        firstNonEmpty(e.Title, e.ID),
		Description:  strings.TrimSpace(e.Description),
		UploadDate:   parseUploadDate(e.UploadDate, now),
		Uploader:     firstNonEmpty(e.Uploader, e.Channel, channel),
		ThumbnailURL: pickThumbnail(e),
		SourceURL:    sourceURL(e),
	}
	if e.Duration != nil && *e.Duration > 0 {
		video.DurationSeconds = *e.Duration
	}
	return video
}

func parseUploadDate(value string, now time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return now.UTC()
	}
	parsed, err := time.Parse(uploadDateLayout, value)
	if err != nil {
		return now.UTC()
	}
	return parsed.UTC()
}

// pickThumbnail prefers the explicit thumbnail field; otherwise the last
// listed thumbnail, which yt-dlp orders from smallest to largest.
func pickThumbnail(e entry) string {
	if url := strings.TrimSpace(e.Thumbnail); url != "" {
		return url
	}
	for i := len(e.Thumbnails) - 1; i >= 0; i-- {
		if url := strings.TrimSpace(e.Thumbnails[i].URL); url != "" {
			return url
		}
	}
	return ""
}

func sourceURL(e entry) string {
	for _, candidate := range []string{e.WebpageURL, e.URL} {
		candidate = strings.TrimSpace(candidate)
		if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
			return candidate
		}
	}
	return media.WatchURL(e.ID)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
