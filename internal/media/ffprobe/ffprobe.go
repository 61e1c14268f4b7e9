package ffprobe

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"tubecast/internal/services"
)

const outputLimit = 4 << 20

// Result is the subset of `ffprobe -show_format -show_streams` output that
// episode metadata needs.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream is one elementary stream of the probed file.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
}

// Format is the container section of the probe.
type Format struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

// Prober runs ffprobe through a services.Executor.
type Prober struct {
	binary string
	exec   services.Executor
}

// New returns a Prober for binary ("ffprobe" when blank). A nil executor
// runs the real command.
func New(binary string, exec services.Executor) *Prober {
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}
	if exec == nil {
		exec = services.CommandExecutor{}
	}
	return &Prober{binary: binary, exec: exec}
}

// Inspect probes path and decodes the JSON report.
func (p *Prober) Inspect(ctx context.Context, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "", "ffprobe", "empty path", nil)
	}
	args := []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path}
	raw, err := p.exec.Output(ctx, p.binary, args, outputLimit)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "", "ffprobe", "inspect "+path, err)
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "", "ffprobe", "decode report", err)
	}
	return result, nil
}

// ProbeDuration returns the playing time of the audio file at path in
// seconds. Files without an audio stream or a positive duration are errors.
func (p *Prober) ProbeDuration(ctx context.Context, path string) (float64, error) {
	result, err := p.Inspect(ctx, path)
	if err != nil {
		return 0, err
	}
	if result.AudioStreamCount() == 0 {
		return 0, services.Wrap(services.ErrExternalTool, "", "ffprobe", path+" has no audio stream", nil)
	}
	seconds := result.DurationSeconds()
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0, services.Wrap(services.ErrExternalTool, "", "ffprobe", path+" reports no duration", nil)
	}
	return seconds, nil
}

// AudioStreamCount counts the audio streams in the report.
func (r Result) AudioStreamCount() int {
	n := 0
	for _, s := range r.Streams {
		if s.isAudio() {
			n++
		}
	}
	return n
}

// DurationSeconds prefers the container duration and falls back to the first
// audio stream. It is 0 when neither is reported and NaN when the reported
// value is not a number.
func (r Result) DurationSeconds() float64 {
	if strings.TrimSpace(r.Format.Duration) != "" {
		return number(r.Format.Duration)
	}
	for _, s := range r.Streams {
		if s.isAudio() {
			return number(s.Duration)
		}
	}
	return 0
}

// SizeBytes is the container size, or 0 when missing or invalid.
func (r Result) SizeBytes() int64 {
	size := number(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

func (s Stream) isAudio() bool {
	return strings.EqualFold(s.CodecType, "audio")
}

func number(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}
