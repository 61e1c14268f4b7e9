package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tubecast/internal/config"
	"tubecast/internal/services"
)

const userAgent = "tubecast/1.0"

// Service defines the notification surface used by the pipeline and CLI.
type Service interface {
	NotifyFeedPublished(ctx context.Context, title, feedURL string, episodes int) error
	NotifyRunFailed(ctx context.Context, playlistURL string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
	click    string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyFeedPublished(ctx context.Context, title, feedURL string, episodes int) error {
	title = strings.TrimSpace(title)
	noun := "episodes"
	if episodes == 1 {
		noun = "episode"
	}
	data := payload{
		title:   "tubecast - Feed Published",
		message: fmt.Sprintf("🎙️ %s (%d %s)\n%s", title, episodes, noun, feedURL),
		tags:    []string{"tubecast", "feed", "published"},
		click:   feedURL,
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, playlistURL string, err error) error {
	var builder strings.Builder
	builder.WriteString("❌ ")
	if kind := services.Kind(err); kind != "" {
		builder.WriteString(kind)
	} else {
		builder.WriteString("Error")
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(services.Message(err)))
	} else {
		builder.WriteString("unknown")
	}
	if playlistURL = strings.TrimSpace(playlistURL); playlistURL != "" {
		builder.WriteString("\nPlaylist: ")
		builder.WriteString(playlistURL)
	}
	data := payload{
		title:    "tubecast - Conversion Failed",
		message:  builder.String(),
		tags:     []string{"tubecast", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "tubecast - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"tubecast", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}
	if data.click != "" {
		req.Header.Set("Click", data.click)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyFeedPublished(context.Context, string, string, int) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, error) error           { return nil }
func (noopService) TestNotification(context.Context) error                         { return nil }
