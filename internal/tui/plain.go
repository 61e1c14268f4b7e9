package tui

import (
	"fmt"
	"io"
	"sync"

	"tubecast/internal/pipeline"
	"tubecast/internal/services"
)

// PlainRenderer writes one line per pipeline event. It implements
// pipeline.Sink.
type PlainRenderer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPlainRenderer returns a renderer writing to w.
func NewPlainRenderer(w io.Writer) *PlainRenderer {
	return &PlainRenderer{w: w}
}

// Emit implements pipeline.Sink.
func (r *PlainRenderer) Emit(ev pipeline.Event) {
	line := FormatEvent(ev)
	if line == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, line)
}

// FormatEvent renders ev as a single line, or "" when there is nothing to
// show.
func FormatEvent(ev pipeline.Event) string {
	switch ev.Kind {
	case pipeline.KindStage:
		if ev.Stage == pipeline.StageError {
			return ""
		}
		return fmt.Sprintf("==> %s", ev.Stage)
	case pipeline.KindProgress:
		if ev.Message == "" {
			return ""
		}
		if ev.Total > 0 {
			return fmt.Sprintf("    [%d/%d] %s", ev.Current, ev.Total, ev.Message)
		}
		return "    " + ev.Message
	case pipeline.KindComplete:
		return fmt.Sprintf("✓ Podcast feed published: %s", ev.FeedURL)
	case pipeline.KindError:
		message := ev.Message
		if ev.Err != nil {
			message = services.Message(ev.Err)
		}
		if kind := services.Kind(ev.Err); kind != "" {
			return fmt.Sprintf("✗ %s: %s", kind, message)
		}
		return "✗ " + message
	default:
		return ""
	}
}
