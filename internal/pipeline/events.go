package pipeline

import "context"

// Stage names one step of a conversion run.
type Stage string

const (
	StageFetching     Stage = "Fetching"
	StageDownloading  Stage = "Downloading"
	StageArtwork      Stage = "Artwork"
	StageUploading    Stage = "Uploading"
	StageSynthesizing Stage = "Synthesizing"
	StagePublishing   Stage = "Publishing"
	StageCleanup      Stage = "Cleanup"
	StageRecording    Stage = "Recording"
	StageComplete     Stage = "Complete"
	StageError        Stage = "Error"
)

// Stages lists the non-error stages in execution order.
var Stages = []Stage{
	StageFetching,
	StageDownloading,
	StageArtwork,
	StageUploading,
	StageSynthesizing,
	StagePublishing,
	StageCleanup,
	StageRecording,
	StageComplete,
}

// Kind classifies an Event.
type Kind int

const (
	// KindProgress reports per-item progress within a stage.
	KindProgress Kind = iota
	// KindStage reports entry into a new stage.
	KindStage
	// KindComplete is the terminal success event carrying the feed URL.
	KindComplete
	// KindError is the terminal failure event.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindProgress:
		return "progress"
	case KindStage:
		return "stage"
	case KindComplete:
		return "complete"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether k ends a run.
func (k Kind) Terminal() bool {
	return k == KindComplete || k == KindError
}

// Event is one progress notification. Current and Total are 1-based item
// counters and are zero for stage-level events.
type Event struct {
	Kind    Kind
	Stage   Stage
	Label   string
	Current int
	Total   int
	Message string
	FeedURL string
	Err     error
}

// Sink receives events in emission order from the goroutine running Process.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit implements Sink.
func (f SinkFunc) Emit(ev Event) {
	if f != nil {
		f(ev)
	}
}

type discardSink struct{}

func (discardSink) Emit(Event) {}

// Stream runs p.Process in a goroutine and delivers its events on the
// returned channel, which is closed after the terminal event. The consumer
// must drain the channel.
func Stream(ctx context.Context, p *Processor, playlistURL string) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		_, _ = p.Process(ctx, playlistURL, SinkFunc(func(ev Event) {
			events <- ev
		}))
	}()
	return events
}
