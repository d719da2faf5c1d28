package hook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/agilebiz/agileai/internal/notify"
)

// Result captures one hook execution for the dashboard test endpoint.
type Result struct {
	Hook       string `json:"hook"`
	ExitCode   int    `json:"exit_code"`
	DurationMS int64  `json:"duration_ms"`
	TimedOut   bool   `json:"timed_out"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
	Truncated  bool   `json:"truncated,omitempty"`
}

// Runner executes hooks with the limits from the active configuration,
// records metrics, and publishes lifecycle events.
type Runner struct {
	cfg     *Config
	metrics *MetricsStore
	bus     *notify.Bus
}

// NewRunner creates a Runner. metrics and bus may be nil; execution then
// skips recording or event publishing respectively.
func NewRunner(cfg *Config, metrics *MetricsStore, bus *notify.Bus) *Runner {
	return &Runner{cfg: cfg, metrics: metrics, bus: bus}
}

// Run executes the hook with the JSON payload on stdin.
// Returns ErrHookDisabled without executing when the hook is disabled.
// A non-zero exit or timeout is reported in the Result, not as an error;
// the error return covers failures to start the process at all.
func (r *Runner) Run(ctx context.Context, h *Hook, payload []byte) (*Result, error) {
	if !r.cfg.Enabled(h.Name) {
		return nil, fmt.Errorf("%w: %s", ErrHookDisabled, h.Name)
	}

	timeout := time.Duration(r.cfg.TimeoutSeconds(h)) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.publish(notify.EventHookStart, map[string]any{"hook": h.Name, "event": h.Event})

	cmd := exec.CommandContext(runCtx, h.Command, h.Args...)
	if len(payload) > 0 {
		cmd.Stdin = bytes.NewReader(payload)
	}

	stdout := newCappedBuffer(r.cfg.Defaults.MaxOutputBytes)
	stderr := newCappedBuffer(r.cfg.Defaults.MaxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := &Result{
		Hook:       h.Name,
		DurationMS: duration.Milliseconds(),
		TimedOut:   errors.Is(runCtx.Err(), context.DeadlineExceeded),
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		Truncated:  stdout.Truncated() || stderr.Truncated(),
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(runErr, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		case result.TimedOut:
			result.ExitCode = -1
		default:
			// The process never started (missing binary, bad permissions).
			r.publish(notify.EventHookError, map[string]any{"hook": h.Name, "error": runErr.Error()})
			return nil, fmt.Errorf("running hook %s: %w", h.Name, runErr)
		}
	}

	if r.metrics != nil {
		if err := r.metrics.Record(h.Name, Sample{
			DurationMS: result.DurationMS,
			ExitCode:   result.ExitCode,
			TimedOut:   result.TimedOut,
		}); err != nil {
			return nil, fmt.Errorf("recording hook metrics: %w", err)
		}
	}

	eventType := notify.EventHookFinish
	data := map[string]any{
		"hook":        h.Name,
		"exit_code":   result.ExitCode,
		"duration_ms": result.DurationMS,
	}
	if result.ExitCode != 0 || result.TimedOut {
		eventType = notify.EventHookError
		data["timed_out"] = result.TimedOut
	}
	r.publish(eventType, data)

	return result, nil
}

func (r *Runner) publish(eventType string, data map[string]any) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(notify.Event{Type: eventType, Data: data})
}

// cappedBuffer is a write buffer that silently discards bytes past its cap.
// Hook output is advisory; a runaway script must not exhaust memory.
type cappedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func newCappedBuffer(max int) *cappedBuffer {
	return &cappedBuffer{max: max}
}

// Write implements io.Writer. Always reports the full length as written
// so the child process never sees a pipe error.
func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.max - b.buf.Len()
	if room <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}

func (b *cappedBuffer) Truncated() bool {
	return b.truncated
}
