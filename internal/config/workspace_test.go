package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestScaffold_CreatesLayout(t *testing.T) {
	root := t.TempDir()

	ws, err := Scaffold(root)
	if err != nil {
		t.Fatalf("Scaffold() error = %v", err)
	}

	for _, dir := range []string{
		ws.Dir(),
		ws.AgentsDir(),
		ws.HooksDir(),
		ws.StateDir(),
		ws.ImprovementsDir(),
	} {
		info, statErr := os.Stat(dir)
		if statErr != nil {
			t.Errorf("expected directory %s: %v", dir, statErr)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
}

func TestScaffold_Idempotent(t *testing.T) {
	root := t.TempDir()

	if _, err := Scaffold(root); err != nil {
		t.Fatalf("first Scaffold() error = %v", err)
	}
	if _, err := Scaffold(root); err != nil {
		t.Fatalf("second Scaffold() error = %v", err)
	}
}

func TestFindWorkspace_WalksUp(t *testing.T) {
	root := t.TempDir()
	if _, err := Scaffold(root); err != nil {
		t.Fatalf("Scaffold() error = %v", err)
	}

	nested := filepath.Join(root, "src", "deep", "nested")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	ws, err := FindWorkspace(nested)
	if err != nil {
		t.Fatalf("FindWorkspace() error = %v", err)
	}
	// Resolve symlinks so macOS /var vs /private/var temp dirs compare equal.
	wantRoot, _ := filepath.EvalSymlinks(root)
	gotRoot, _ := filepath.EvalSymlinks(ws.Root)
	if gotRoot != wantRoot {
		t.Errorf("FindWorkspace() root = %q, want %q", gotRoot, wantRoot)
	}
}

func TestFindWorkspace_NotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := FindWorkspace(dir)
	if !errors.Is(err, ErrNoWorkspace) {
		t.Errorf("FindWorkspace() error = %v, want ErrNoWorkspace", err)
	}
}

func TestFindWorkspace_FileIsNotWorkspace(t *testing.T) {
	dir := t.TempDir()
	// A plain file named .agileai does not mark a workspace.
	if err := os.WriteFile(filepath.Join(dir, WorkspaceDirName), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := FindWorkspace(dir)
	if !errors.Is(err, ErrNoWorkspace) {
		t.Errorf("FindWorkspace() error = %v, want ErrNoWorkspace", err)
	}
}

func TestWorkspace_Paths(t *testing.T) {
	ws := &Workspace{Root: "/proj"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Dir", ws.Dir(), "/proj/.agileai"},
		{"HookConfigPath", ws.HookConfigPath(), "/proj/.agileai/hooks/config.json"},
		{"HookRegistryPath", ws.HookRegistryPath(), "/proj/.agileai/hooks/registry.json"},
		{"HookMetricsPath", ws.HookMetricsPath(), "/proj/.agileai/hooks/metrics.json"},
		{"BacklogPath", ws.BacklogPath(), "/proj/.agileai/improvements/backlog.json"},
		{"MCPConfigPath", ws.MCPConfigPath(), "/proj/.mcp.json"},
		{"EnvFilePath", ws.EnvFilePath(), "/proj/.env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != filepath.FromSlash(tt.want) {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
