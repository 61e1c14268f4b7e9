package ffprobe

import (
	"context"
	"errors"
	"math"
	"testing"
)

type stubExecutor struct {
	output []byte
	err    error
	args   []string
}

func (s *stubExecutor) Output(_ context.Context, _ string, args []string, _ int64) ([]byte, error) {
	s.args = args
	return s.output, s.err
}

func (s *stubExecutor) Run(context.Context, string, []string, func(string)) error {
	return errors.New("not used")
}

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
		},
		Format: Format{Duration: "123.45", Size: "1000"},
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}

func TestDurationFallsBackToAudioStream(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "audio", Duration: "61.5"}}}
	if result.DurationSeconds() != 61.5 {
		t.Fatalf("expected stream duration, got %v", result.DurationSeconds())
	}
}

func TestProbeDuration(t *testing.T) {
	exec := &stubExecutor{output: []byte(`{"streams":[{"index":0,"codec_type":"audio","codec_name":"mp3"}],"format":{"duration":"3723.2"}}`)}
	prober := New("ffprobe", exec)

	duration, err := prober.ProbeDuration(context.Background(), "/tmp/1-episode.mp3")
	if err != nil {
		t.Fatalf("ProbeDuration returned error: %v", err)
	}
	if duration != 3723.2 {
		t.Fatalf("unexpected duration %v", duration)
	}
	if exec.args[len(exec.args)-1] != "/tmp/1-episode.mp3" || exec.args[len(exec.args)-2] != "--" {
		t.Fatalf("expected path after -- separator, got %v", exec.args)
	}
}

func TestProbeDurationRejectsSilentFiles(t *testing.T) {
	prober := New("", &stubExecutor{output: []byte(`{"streams":[{"codec_type":"video"}],"format":{"duration":"10"}}`)})
	if _, err := prober.ProbeDuration(context.Background(), "/tmp/x.mp3"); err == nil {
		t.Fatal("expected error for file without audio")
	}
}
