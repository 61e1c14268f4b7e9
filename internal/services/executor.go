package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// DefaultOutputLimit caps captured subprocess output when callers pass no limit.
const DefaultOutputLimit int64 = 50 << 20

// stderrTailLines is how much stderr is kept for error messages.
const stderrTailLines = 8

// ErrOutputLimit reports that a subprocess produced more output than allowed.
var ErrOutputLimit = errors.New("command output exceeded limit")

// Executor runs external commands with structured argument lists.
type Executor interface {
	// Output runs the command and returns its stdout, failing when stdout
	// grows beyond limit bytes.
	Output(ctx context.Context, binary string, args []string, limit int64) ([]byte, error)
	// Run runs the command and forwards every stdout/stderr line to onLine.
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// CommandExecutor implements Executor with os/exec.
type CommandExecutor struct{}

// Output implements Executor.
func (CommandExecutor) Output(ctx context.Context, binary string, args []string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultOutputLimit
	}
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout := &boundedBuffer{limit: limit}
	stderr := &tailBuffer{max: stderrTailLines}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if stdout.overflow {
		return nil, fmt.Errorf("%s: %w (%d bytes)", binary, ErrOutputLimit, limit)
	}
	if err != nil {
		return nil, commandError(binary, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Run implements Executor.
func (CommandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once
	tail := &tailBuffer{max: stderrTailLines}

	scan := func(r io.Reader, keep bool) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if keep {
				tail.add(line)
			}
			if onLine != nil {
				onLine(line)
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
				_ = cmd.Process.Kill()
			})
			// Keep the pipe empty so the child never blocks on a write.
			_, _ = io.Copy(io.Discard, r)
		}
	}

	wg.Add(2)
	go scan(stdout, false)
	go scan(stderr, true)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return commandError(binary, err, tail.String())
	}
	return nil
}

func commandError(binary string, err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return fmt.Errorf("%s: %w", binary, err)
	}
	return fmt.Errorf("%s: %w: %s", binary, err, stderr)
}

type boundedBuffer struct {
	bytes.Buffer
	limit    int64
	overflow bool
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if b.overflow {
		return 0, ErrOutputLimit
	}
	if int64(b.Len()+len(p)) > b.limit {
		b.overflow = true
		return 0, ErrOutputLimit
	}
	return b.Buffer.Write(p)
}

type tailBuffer struct {
	mu      sync.Mutex
	max     int
	lines   []string
	partial string
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	data := t.partial + string(p)
	parts := strings.Split(data, "\n")
	t.partial = parts[len(parts)-1]
	t.mu.Unlock()
	for _, line := range parts[:len(parts)-1] {
		t.add(line)
	}
	return len(p), nil
}

func (t *tailBuffer) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines := append([]string(nil), t.lines...)
	if p := strings.TrimSpace(t.partial); p != "" {
		lines = append(lines, p)
	}
	return strings.Join(lines, "; ")
}
