package hook

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/agilebiz/agileai/internal/notify"
)

// testConfig returns a config with the given hook enabled.
func testConfig(h *Hook) *Config {
	return &Config{
		Schema:   ConfigSchemaVersion,
		Defaults: Defaults{TimeoutSeconds: 5, MaxOutputBytes: DefaultMaxOutputBytes},
		Hooks:    map[string]Settings{h.Name: {Enabled: true}},
	}
}

func shellHook(name, script string) *Hook {
	return &Hook{
		Name:    name,
		Event:   "user_prompt_submit",
		Command: "sh",
		Args:    []string{"-c", script},
		Source:  SourceUser,
	}
}

func skipNoShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test hooks use sh")
	}
}

func TestRunner_Run_CapturesOutput(t *testing.T) {
	skipNoShell(t)

	h := shellHook("echo-hook", `cat; echo out; echo err >&2`)
	r := NewRunner(testConfig(h), nil, nil)

	res, err := r.Run(context.Background(), h, []byte(`{"ping":true}`))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if !strings.Contains(res.Stdout, `{"ping":true}`) {
		t.Errorf("Stdout = %q, want payload echoed", res.Stdout)
	}
	if !strings.Contains(res.Stdout, "out") {
		t.Errorf("Stdout = %q, want 'out'", res.Stdout)
	}
	if !strings.Contains(res.Stderr, "err") {
		t.Errorf("Stderr = %q, want 'err'", res.Stderr)
	}
	if res.TimedOut {
		t.Error("TimedOut = true for fast hook")
	}
}

func TestRunner_Run_NonZeroExit(t *testing.T) {
	skipNoShell(t)

	h := shellHook("fail-hook", "exit 3")
	r := NewRunner(testConfig(h), nil, nil)

	res, err := r.Run(context.Background(), h, nil)
	if err != nil {
		t.Fatalf("Run() error = %v (non-zero exit is not an error)", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
}

func TestRunner_Run_Timeout(t *testing.T) {
	skipNoShell(t)

	h := shellHook("slow-hook", "sleep 10")
	cfg := testConfig(h)
	cfg.Hooks[h.Name] = Settings{Enabled: true, TimeoutSeconds: 1}
	r := NewRunner(cfg, nil, nil)

	res, err := r.Run(context.Background(), h, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.TimedOut {
		t.Error("TimedOut = false, want true")
	}
}

func TestRunner_Run_Disabled(t *testing.T) {
	h := shellHook("off-hook", "true")
	cfg := testConfig(h)
	cfg.Hooks[h.Name] = Settings{Enabled: false}
	r := NewRunner(cfg, nil, nil)

	_, err := r.Run(context.Background(), h, nil)
	if !errors.Is(err, ErrHookDisabled) {
		t.Errorf("Run() error = %v, want ErrHookDisabled", err)
	}
}

func TestRunner_Run_MissingBinary(t *testing.T) {
	h := &Hook{
		Name:    "ghost-hook",
		Event:   "stop",
		Command: "agileai-no-such-binary",
		Source:  SourceUser,
	}
	r := NewRunner(testConfig(h), nil, nil)

	if _, err := r.Run(context.Background(), h, nil); err == nil {
		t.Error("Run() should error when the command cannot start")
	}
}

func TestRunner_Run_RecordsMetrics(t *testing.T) {
	skipNoShell(t)

	h := shellHook("metered-hook", "true")
	metrics := NewMetricsStore(filepath.Join(t.TempDir(), "metrics.json"))
	r := NewRunner(testConfig(h), metrics, nil)

	if _, err := r.Run(context.Background(), h, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	aggs, err := metrics.Aggregate()
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if aggs["metered-hook"].Count != 1 {
		t.Errorf("Count = %d, want 1", aggs["metered-hook"].Count)
	}
}

func TestRunner_Run_PublishesEvents(t *testing.T) {
	skipNoShell(t)

	h := shellHook("noisy-hook", "true")
	bus := notify.NewBus()
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	r := NewRunner(testConfig(h), nil, bus)
	if _, err := r.Run(context.Background(), h, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var types []string
	for len(sub) > 0 {
		types = append(types, (<-sub).Type)
	}
	if len(types) != 2 || types[0] != notify.EventHookStart || types[1] != notify.EventHookFinish {
		t.Errorf("event types = %v, want [hook.start hook.finish]", types)
	}
}

func TestRunner_Run_FailedHookPublishesError(t *testing.T) {
	skipNoShell(t)

	h := shellHook("angry-hook", "exit 1")
	bus := notify.NewBus()
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	r := NewRunner(testConfig(h), nil, bus)
	if _, err := r.Run(context.Background(), h, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var last notify.Event
	for len(sub) > 0 {
		last = <-sub
	}
	if last.Type != notify.EventHookError {
		t.Errorf("last event = %q, want %q", last.Type, notify.EventHookError)
	}
}

func TestCappedBuffer_Truncates(t *testing.T) {
	b := newCappedBuffer(8)

	n, err := b.Write([]byte("0123456789"))
	if err != nil || n != 10 {
		t.Fatalf("Write() = (%d, %v), want (10, nil)", n, err)
	}

	if got := b.String(); got != "01234567" {
		t.Errorf("String() = %q, want %q", got, "01234567")
	}
	if !b.Truncated() {
		t.Error("Truncated() = false, want true")
	}

	// Further writes are swallowed but still reported as written.
	n, err = b.Write([]byte("xyz"))
	if err != nil || n != 3 {
		t.Errorf("Write() after cap = (%d, %v), want (3, nil)", n, err)
	}
	if got := b.String(); got != "01234567" {
		t.Errorf("String() after cap = %q, want unchanged", got)
	}
}
