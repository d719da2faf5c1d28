package main

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/agilebiz/agileai/internal/hook"
)

func TestHooksCommand_List(t *testing.T) {
	dir := initTestWorkspace(t)

	out, err := execCLI(t, dir, "hooks", "list", "--json")
	if err != nil {
		t.Fatalf("hooks list failed: %v\nOutput: %s", err, out)
	}

	result := decodeCLIJSON(t, out)
	hooks, ok := result["hooks"].([]any)
	if !ok || len(hooks) == 0 {
		t.Fatalf("expected hooks in output: %s", out)
	}

	first := hooks[0].(map[string]any)
	if first["enabled"] != true {
		t.Error("builtin hooks should start enabled")
	}
	if first["timeout_seconds"].(float64) <= 0 {
		t.Error("effective timeout should be positive")
	}
}

func TestHooksCommand_DisableEnable(t *testing.T) {
	dir := initTestWorkspace(t)

	out, err := execCLI(t, dir, "hooks", "disable", "session-start", "--json")
	if err != nil {
		t.Fatalf("hooks disable failed: %v\nOutput: %s", err, out)
	}

	out, err = execCLI(t, dir, "hooks", "list", "--json")
	if err != nil {
		t.Fatalf("hooks list failed: %v", err)
	}
	result := decodeCLIJSON(t, out)
	for _, raw := range result["hooks"].([]any) {
		h := raw.(map[string]any)
		if h["name"] == "session-start" && h["enabled"] != false {
			t.Error("session-start should be disabled")
		}
	}

	if _, err := execCLI(t, dir, "hooks", "enable", "session-start", "--json"); err != nil {
		t.Fatalf("hooks enable failed: %v", err)
	}
}

func TestHooksCommand_ToggleUnknown(t *testing.T) {
	dir := initTestWorkspace(t)

	out, err := execCLI(t, dir, "hooks", "disable", "nope", "--json")
	if err == nil {
		t.Fatalf("expected error for unknown hook, got output: %s", out)
	}
}

func TestHooksCommand_TestUnknown(t *testing.T) {
	dir := initTestWorkspace(t)

	out, err := execCLI(t, dir, "hooks", "test", "nope", "--json")
	if err == nil {
		t.Fatalf("expected error for unknown hook, got output: %s", out)
	}
}

func TestHooksCommand_TestBadPayload(t *testing.T) {
	dir := initTestWorkspace(t)

	out, err := execCLI(t, dir, "hooks", "test", "session-start", "--payload", "{not json", "--json")
	if err == nil {
		t.Fatalf("expected error for invalid payload, got output: %s", out)
	}
}

// writeEchoHook registers a hook that copies stdin to stdout.
func writeEchoHook(t *testing.T, dir string) {
	t.Helper()
	reg := &hook.Registry{
		Schema: hook.RegistrySchemaVersion,
		Hooks: []hook.Hook{
			{
				Name:           "echo-hook",
				Event:          "user_prompt_submit",
				Command:        "sh",
				Args:           []string{"-c", "cat"},
				TimeoutSeconds: 5,
				Source:         hook.SourceUser,
			},
		},
	}
	path := filepath.Join(dir, ".agileai", "hooks", "registry.json")
	if err := hook.SaveRegistry(path, reg); err != nil {
		t.Fatalf("saving registry: %v", err)
	}
}

func TestHooksCommand_TestRunsHook(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test hook uses sh")
	}
	dir := initTestWorkspace(t)
	writeEchoHook(t, dir)

	// Hooks absent from the config are disabled until enabled explicitly.
	if _, err := execCLI(t, dir, "hooks", "enable", "echo-hook", "--json"); err != nil {
		t.Fatalf("hooks enable failed: %v", err)
	}

	out, err := execCLI(t, dir, "hooks", "test", "echo-hook", "--payload", `{"prompt":"ping"}`, "--json")
	if err != nil {
		t.Fatalf("hooks test failed: %v\nOutput: %s", err, out)
	}

	result := decodeCLIJSON(t, out)
	if result["exit_code"].(float64) != 0 {
		t.Errorf("exit_code = %v, want 0", result["exit_code"])
	}
	if !strings.Contains(result["stdout"].(string), `"ping"`) {
		t.Errorf("stdout should echo the payload: %s", out)
	}
}

func TestHooksCommand_TestDisabled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test hook uses sh")
	}
	dir := initTestWorkspace(t)
	writeEchoHook(t, dir)

	if _, err := execCLI(t, dir, "hooks", "disable", "echo-hook", "--json"); err != nil {
		t.Fatalf("hooks disable failed: %v", err)
	}

	out, err := execCLI(t, dir, "hooks", "test", "echo-hook", "--json")
	if err == nil {
		t.Fatalf("expected conflict for disabled hook, got output: %s", out)
	}
	result := decodeCLIJSON(t, out)
	if result["code"].(float64) != 3 {
		t.Errorf("code = %v, want 3 (conflict)", result["code"])
	}
}
