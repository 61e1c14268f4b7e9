package tui

import (
	"context"
	"errors"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"tubecast/internal/pipeline"
	"tubecast/internal/services"
)

// ErrAborted is returned when the user leaves the prompt without starting a
// run.
var ErrAborted = errors.New("aborted")

// Run shows the interactive UI for processor until the user quits and
// returns the run outcome. It does not return while a conversion is still
// in flight, so scratch files are gone by the time it does.
func Run(ctx context.Context, processor *pipeline.Processor, initialURL string, in io.Reader, out io.Writer) (string, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tracker streamTracker
	start := func(ctx context.Context, url string) <-chan pipeline.Event {
		return tracker.start(ctx, processor, url)
	}
	model := NewModel(runCtx, start, initialURL)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := program.Run()

	// The program can be killed mid-run; stop the conversion and wait for
	// its goroutine to finish cleanup before reporting.
	cancel()
	tracker.drain()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return "", err
	}
	m, ok := final.(Model)
	if !ok {
		return "", errors.New("unexpected model type")
	}
	switch m.Phase() {
	case PhaseComplete:
		return m.FeedURL(), nil
	case PhaseError:
		return "", m.Err()
	case PhaseRunning:
		return "", services.Wrap(services.ErrCanceled, "", "convert", "interrupted", context.Canceled)
	default:
		return "", ErrAborted
	}
}

// streamTracker remembers the event stream started by the model so Run can
// drain it after the program exits.
type streamTracker struct {
	mu     sync.Mutex
	closed bool
	events <-chan pipeline.Event
}

func (s *streamTracker) start(ctx context.Context, processor *pipeline.Processor, url string) <-chan pipeline.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		ch := make(chan pipeline.Event)
		close(ch)
		return ch
	}
	s.events = pipeline.Stream(ctx, processor, url)
	return s.events
}

// drain blocks until the tracked stream closes. Streams requested after drain
// never start.
func (s *streamTracker) drain() {
	s.mu.Lock()
	s.closed = true
	events := s.events
	s.mu.Unlock()
	if events == nil {
		return
	}
	for range events {
	}
}
