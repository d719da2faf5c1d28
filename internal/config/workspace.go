package config

import (
	"errors"
	"os"
	"path/filepath"
)

// WorkspaceDirName is the marker directory for an agileai workspace.
const WorkspaceDirName = ".agileai"

// ErrNoWorkspace is returned when no .agileai/ directory is found in the
// current directory or any parent.
var ErrNoWorkspace = errors.New("no agileai workspace found (run 'agileai init' first)")

// Workspace describes the on-disk layout of an agileai project.
// All paths are absolute.
type Workspace struct {
	// Root is the project directory containing .agileai/.
	Root string
}

// FindWorkspace walks up from startDir until it finds a directory containing
// .agileai/. Returns ErrNoWorkspace if the filesystem root is reached first.
func FindWorkspace(startDir string) (*Workspace, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		info, statErr := os.Stat(filepath.Join(dir, WorkspaceDirName))
		if statErr == nil && info.IsDir() {
			return &Workspace{Root: dir}, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNoWorkspace
		}
		dir = parent
	}
}

// CurrentWorkspace finds the workspace containing the working directory.
func CurrentWorkspace() (*Workspace, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return FindWorkspace(cwd)
}

// Dir returns the .agileai/ directory inside the workspace.
func (w *Workspace) Dir() string {
	return filepath.Join(w.Root, WorkspaceDirName)
}

// AgentsDir returns the persona directory.
func (w *Workspace) AgentsDir() string {
	return filepath.Join(w.Dir(), "agents")
}

// HooksDir returns the hook configuration directory.
func (w *Workspace) HooksDir() string {
	return filepath.Join(w.Dir(), "hooks")
}

// HookConfigPath returns the hook configuration file path.
func (w *Workspace) HookConfigPath() string {
	return filepath.Join(w.HooksDir(), "config.json")
}

// HookRegistryPath returns the hook registry file path.
func (w *Workspace) HookRegistryPath() string {
	return filepath.Join(w.HooksDir(), "registry.json")
}

// HookMetricsPath returns the hook metrics file path.
func (w *Workspace) HookMetricsPath() string {
	return filepath.Join(w.HooksDir(), "metrics.json")
}

// StateDir returns the project state directory.
func (w *Workspace) StateDir() string {
	return filepath.Join(w.Dir(), "state")
}

// ImprovementsDir returns the improvement backlog directory.
func (w *Workspace) ImprovementsDir() string {
	return filepath.Join(w.Dir(), "improvements")
}

// BacklogPath returns the improvement backlog file path.
func (w *Workspace) BacklogPath() string {
	return filepath.Join(w.ImprovementsDir(), "backlog.json")
}

// DashboardConfigPath returns the optional dashboard server config file.
func (w *Workspace) DashboardConfigPath() string {
	return filepath.Join(w.Dir(), "dashboard.yaml")
}

// MCPConfigPath returns the project .mcp.json path (shared with Claude Code).
func (w *Workspace) MCPConfigPath() string {
	return filepath.Join(w.Root, ".mcp.json")
}

// EnvFilePath returns the project .env path.
func (w *Workspace) EnvFilePath() string {
	return filepath.Join(w.Root, ".env")
}

// Scaffold creates the workspace directory tree under root. Existing
// directories are left alone, so Scaffold is safe to run repeatedly.
func Scaffold(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	ws := &Workspace{Root: abs}
	for _, dir := range []string{
		ws.Dir(),
		ws.AgentsDir(),
		ws.HooksDir(),
		ws.StateDir(),
		ws.ImprovementsDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return ws, nil
}
