package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

type fileCreatingExecutor struct {
	content []byte
	err     error
	binary  string
	args    []string
}

func (f *fileCreatingExecutor) Output(context.Context, string, []string, int64) ([]byte, error) {
	return nil, errors.New("not used")
}

func (f *fileCreatingExecutor) Run(_ context.Context, binary string, args []string, _ func(string)) error {
	f.binary = binary
	f.args = args
	dst := args[len(args)-1]
	if f.content != nil {
		if err := os.WriteFile(dst, f.content, 0o644); err != nil {
			return err
		}
	}
	return f.err
}

func TestToMP3BuildsArguments(t *testing.T) {
	dir := t.TempDir()
	exec := &fileCreatingExecutor{content: []byte("ID3")}
	client := New("/usr/bin/ffmpeg", "128k", WithExecutor(exec))

	dst := filepath.Join(dir, "1-episode.mp3")
	if err := client.ToMP3(context.Background(), filepath.Join(dir, "1-episode.webm"), dst); err != nil {
		t.Fatalf("ToMP3 returned error: %v", err)
	}
	if exec.binary != "/usr/bin/ffmpeg" {
		t.Fatalf("unexpected binary %q", exec.binary)
	}
	for _, want := range []string{"-y", "-vn", "libmp3lame", "128k"} {
		if !slices.Contains(exec.args, want) {
			t.Fatalf("expected %q in args %v", want, exec.args)
		}
	}
	idx := slices.Index(exec.args, "-i")
	if idx < 0 || exec.args[idx+1] != filepath.Join(dir, "1-episode.webm") {
		t.Fatalf("expected input after -i, got %v", exec.args)
	}
}

func TestToMP3RemovesOutputOnFailure(t *testing.T) {
	dir := t.TempDir()
	exec := &fileCreatingExecutor{content: []byte("partial"), err: errors.New("exit status 1")}
	client := New("", "", WithExecutor(exec))

	dst := filepath.Join(dir, "out.mp3")
	if err := client.ToMP3(context.Background(), "in.m4a", dst); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("expected partial output removed, stat err=%v", err)
	}
	if exec.binary != "ffmpeg" || !slices.Contains(exec.args, DefaultBitrate) {
		t.Fatalf("expected defaults, got %q %v", exec.binary, exec.args)
	}
}

func TestToMP3RejectsEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	client := New("ffmpeg", "", WithExecutor(&fileCreatingExecutor{content: []byte{}}))
	dst := filepath.Join(dir, "out.mp3")
	if err := client.ToMP3(context.Background(), "in.m4a", dst); err == nil {
		t.Fatal("expected empty output error")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("expected empty output removed, stat err=%v", err)
	}
}
