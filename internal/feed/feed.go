package feed

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/eduncan911/podcast"

	"tubecast/internal/media"
	"tubecast/internal/objectstore"
	"tubecast/internal/textutil"
)

const (
	generator      = "tubecast"
	ttlMinutes     = 60
	subtitleLimit  = 255
	guidPrefix     = "episode-"
	feedFileSuffix = "/feed.xml"
)

// Settings carries the feed-level defaults from configuration.
type Settings struct {
	Language string
	Category string
	Explicit bool
}

// PodcastInfo is channel-level metadata.
type PodcastInfo struct {
	Title       string
	Description string
	Author      string
	ImageURL    string
	Language    string
	Category    string
	Explicit    bool
}

// Episode is one feed item.
type Episode struct {
	Title           string
	Description     string
	URL             string
	Size            int64
	PublishDate     time.Time
	Duration        string
	DurationSeconds float64
	GUID            string
	Author          string
}

// NewPodcastInfo builds channel metadata from the playlist. ImageURL is left
// for the caller, which knows whether artwork was uploaded.
func NewPodcastInfo(playlist media.Playlist, settings Settings) PodcastInfo {
	title := strings.TrimSpace(playlist.Title)
	if title == "" {
		title = media.UnknownPlaylist
	}
	channel := strings.TrimSpace(playlist.Channel)
	if channel == "" {
		channel = media.UnknownChannel
	}
	return PodcastInfo{
		Title:       title,
		Description: fmt.Sprintf("%s - A podcast series from %s", title, channel),
		Author:      channel,
		Language:    settings.Language,
		Category:    settings.Category,
		Explicit:    settings.Explicit,
	}
}

// NewEpisode derives a feed item from source metadata and its uploaded audio.
func NewEpisode(video media.Video, object objectstore.Object) Episode {
	title := strings.TrimSpace(video.Title)
	if title == "" {
		title = video.ID
	}
	description := strings.TrimSpace(video.Description)
	if description == "" {
		description = title
	}
	return Episode{
		Title:           title,
		Description:     description,
		URL:             object.URL,
		Size:            object.Size,
		PublishDate:     video.UploadDate,
		Duration:        FormatDuration(video.DurationSeconds),
		DurationSeconds: video.DurationSeconds,
		GUID:            guidPrefix + video.ID,
		Author:          strings.TrimSpace(video.Uploader),
	}
}

// FormatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Build renders the feed document for episodes in order.
func Build(info PodcastInfo, episodes []Episode, feedURL string) (string, error) {
	return BuildAt(info, episodes, feedURL, time.Now())
}

// BuildAt is Build with an explicit build timestamp.
func BuildAt(info PodcastInfo, episodes []Episode, feedURL string, now time.Time) (string, error) {
	if strings.TrimSpace(info.Title) == "" {
		return "", errors.New("feed: podcast title required")
	}
	if strings.TrimSpace(feedURL) == "" {
		return "", errors.New("feed: feed URL required")
	}
	explicit := textutil.Ternary(info.Explicit, "yes", "no")
	description := info.Description
	if strings.TrimSpace(description) == "" {
		description = info.Title
	}

	p := podcast.New(info.Title, siteURL(feedURL), description, &now, &now)
	p.Generator = generator
	p.TTL = ttlMinutes
	p.Language = info.Language
	p.IAuthor = info.Author
	p.IExplicit = explicit
	p.AddSummary(description)
	p.AddAtomLink(feedURL)
	if category := strings.TrimSpace(info.Category); category != "" {
		p.AddCategory(category, nil)
	}
	if image := strings.TrimSpace(info.ImageURL); image != "" {
		p.AddImage(image)
	}

	for i, episode := range episodes {
		item := podcast.Item{
			Title:       episode.Title,
			Description: episode.Description,
			Link:        episode.URL,
			GUID:        episode.GUID,
			IAuthor:     textutil.Ternary(episode.Author != "", episode.Author, info.Author),
			ISubtitle:   truncate(episode.Description, subtitleLimit),
			IExplicit:   explicit,
		}
		if episode.DurationSeconds > 0 {
			item.IDuration = episode.Duration
		}
		published := episode.PublishDate
		if published.IsZero() {
			published = now
		}
		item.AddPubDate(&published)
		item.AddEnclosure(episode.URL, podcast.MP3, episode.Size)
		if _, err := p.AddItem(item); err != nil {
			return "", fmt.Errorf("feed: episode %d (%s): %w", i+1, episode.GUID, err)
		}
	}

	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return "", fmt.Errorf("feed: encode: %w", err)
	}
	return buf.String(), nil
}

func siteURL(feedURL string) string {
	return strings.TrimSuffix(feedURL, feedFileSuffix)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
