package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tubecast/internal/pipeline"
	"tubecast/internal/services"
	"tubecast/internal/validate"
)

// Phase is the screen currently shown.
type Phase int

const (
	PhaseInput Phase = iota
	PhaseRunning
	PhaseComplete
	PhaseError
)

// Starter begins a run and returns its event stream. The stream must close
// after its terminal event.
type Starter func(ctx context.Context, playlistURL string) <-chan pipeline.Event

type eventMsg struct {
	event pipeline.Event
	ok    bool
}

// Model is the bubbletea model for a single conversion.
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	start   Starter
	phase   Phase
	input   textinput.Model
	spinner spinner.Model
	bar     progress.Model
	events  <-chan pipeline.Event

	inputErr string
	url      string
	stage    pipeline.Stage
	message  string
	current  int
	total    int
	feedURL  string
	err      error
	width    int
	quitting bool
}

// NewModel builds a model. When initialURL is non-empty and valid the run
// starts immediately; otherwise the URL prompt is shown.
func NewModel(ctx context.Context, start Starter, initialURL string) Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.youtube.com/playlist?list=..."
	ti.Prompt = "URL: "
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle

	runCtx, cancel := context.WithCancel(ctx)
	m := Model{
		ctx:     runCtx,
		cancel:  cancel,
		start:   start,
		phase:   PhaseInput,
		input:   ti,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
	}
	if initialURL = strings.TrimSpace(initialURL); initialURL != "" {
		m.input.SetValue(initialURL)
		if err := validate.PlaylistURL(initialURL); err == nil {
			m.url = initialURL
			m.phase = PhaseRunning
		} else {
			m.inputErr = err.Error()
		}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.phase == PhaseRunning {
		return tea.Batch(m.spinner.Tick, m.begin())
	}
	return textinput.Blink
}

// begin starts the run; the stream arrives as a streamMsg.
func (m Model) begin() tea.Cmd {
	start, ctx, url := m.start, m.ctx, m.url
	return func() tea.Msg {
		return streamMsg{events: start(ctx, url)}
	}
}

type streamMsg struct {
	events <-chan pipeline.Event
}

func waitForEvent(events <-chan pipeline.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return eventMsg{event: ev, ok: ok}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 10; w > 10 && w < 80 {
			m.bar.Width = w
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case streamMsg:
		m.events = msg.events
		return m, waitForEvent(m.events)
	case eventMsg:
		if !msg.ok {
			if m.phase == PhaseRunning {
				m.phase = PhaseError
				m.err = fmt.Errorf("conversion ended without a result")
			}
			if m.quitting {
				return m, tea.Quit
			}
			return m, nil
		}
		m.apply(msg.event)
		return m, waitForEvent(m.events)
	case spinner.TickMsg:
		if m.phase != PhaseRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.phase == PhaseInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.cancel()
		if m.phase == PhaseRunning {
			m.quitting = true
			m.message = "Canceling..."
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyEsc:
		if m.phase == PhaseInput {
			m.cancel()
			return m, tea.Quit
		}
	}

	switch m.phase {
	case PhaseInput:
		if msg.Type == tea.KeyEnter {
			url := strings.TrimSpace(m.input.Value())
			if err := validate.PlaylistURL(url); err != nil {
				m.inputErr = err.Error()
				return m, nil
			}
			m.inputErr = ""
			m.url = url
			m.phase = PhaseRunning
			m.input.Blur()
			return m, tea.Batch(m.spinner.Tick, m.begin())
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case PhaseComplete, PhaseError:
		switch msg.String() {
		case "q", "enter", "esc":
			m.cancel()
			return m, tea.Quit
		}
	}
	return m, nil
}

// apply folds one pipeline event into the model.
func (m *Model) apply(ev pipeline.Event) {
	switch ev.Kind {
	case pipeline.KindStage:
		m.stage = ev.Stage
		m.current, m.total = 0, 0
		m.message = ""
	case pipeline.KindProgress:
		m.stage = ev.Stage
		m.current, m.total = ev.Current, ev.Total
		m.message = ev.Message
	case pipeline.KindComplete:
		m.phase = PhaseComplete
		m.feedURL = ev.FeedURL
		m.stage = pipeline.StageComplete
	case pipeline.KindError:
		m.phase = PhaseError
		m.err = ev.Err
		if m.err == nil {
			m.err = fmt.Errorf("%s", ev.Message)
		}
		m.stage = pipeline.StageError
	}
}

// Percent is the item fraction of the current stage.
func (m Model) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	p := float64(m.current) / float64(m.total)
	if p > 1 {
		return 1
	}
	return p
}

// Phase returns the current screen.
func (m Model) Phase() Phase { return m.phase }

// FeedURL returns the published feed URL once complete.
func (m Model) FeedURL() string { return m.feedURL }

// Err returns the run error once failed.
func (m Model) Err() error { return m.err }

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tubecast"))
	b.WriteString(mutedStyle.Render("  YouTube playlist → podcast feed"))
	b.WriteString("\n\n")

	switch m.phase {
	case PhaseInput:
		b.WriteString("Paste a YouTube playlist URL and press Enter.\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.inputErr != "" {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render("✗ " + m.inputErr))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("esc to quit"))
	case PhaseRunning:
		stage := string(m.stage)
		if stage == "" {
			stage = "Starting"
		}
		fmt.Fprintf(&b, "%s %s", m.spinner.View(), stageStyle.Render(stage))
		if m.total > 0 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%d/%d)", m.current, m.total)))
		}
		b.WriteString("\n\n")
		if m.total > 0 {
			b.WriteString(m.bar.ViewAs(m.Percent()))
			b.WriteString("\n\n")
		}
		if m.message != "" {
			b.WriteString(m.message)
			b.WriteString("\n\n")
		}
		b.WriteString(mutedStyle.Render("ctrl+c to cancel"))
	case PhaseComplete:
		b.WriteString(successStyle.Render("✓ Podcast feed published"))
		b.WriteString("\n\n")
		b.WriteString(boxStyle.Render(urlStyle.Render(m.feedURL)))
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("Add this URL to your podcast app. Press q to quit."))
	case PhaseError:
		b.WriteString(errorStyle.Render("✗ " + errorTitle(m.err)))
		b.WriteString("\n\n")
		b.WriteString(services.Message(m.err))
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("Run `tubecast errors` for details. Press q to quit."))
	}
	b.WriteString("\n")
	return b.String()
}

func errorTitle(err error) string {
	kind := services.Kind(err)
	if kind == "" {
		return "Conversion failed"
	}
	return "Conversion failed: " + kind
}
