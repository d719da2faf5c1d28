package setup

// ClaudeEnv implements AgentEnv for Claude Code.
type ClaudeEnv struct{}

func init() {
	RegisterAgentEnv(&ClaudeEnv{})
}

// Name returns the CLI identifier.
func (c *ClaudeEnv) Name() string { return "claude" }

// DisplayName returns the human-readable name.
func (c *ClaudeEnv) DisplayName() string { return "Claude Code" }

// Detect checks whether Claude Code integration is installed at either scope.
func (c *ClaudeEnv) Detect() (path, scope string, installed bool) {
	// Check project first, then global.
	for _, project := range []bool{true, false} {
		hookPath, s, err := ResolveClaudeHookPath(project)
		if err != nil {
			continue
		}
		if IsAgileaiSectionInstalled(hookPath) {
			return hookPath, s, true
		}
	}
	return "", "", false
}

// Install adds agileai hooks to Claude Code.
func (c *ClaudeEnv) Install(project bool) (string, error) {
	hookPath, _, err := ResolveClaudeHookPath(project)
	if err != nil {
		return "", err
	}
	if err := InstallAgileaiSection(hookPath); err != nil {
		return "", err
	}
	return hookPath, nil
}

// Remove removes agileai hooks from Claude Code.
func (c *ClaudeEnv) Remove(project bool) error {
	hookPath, _, err := ResolveClaudeHookPath(project)
	if err != nil {
		return err
	}
	return RemoveAgileaiSectionFromHook(hookPath)
}

// Check returns installation status for a specific scope.
func (c *ClaudeEnv) Check(project bool) (path, scope string, installed bool, err error) {
	hookPath, s, resolveErr := ResolveClaudeHookPath(project)
	if resolveErr != nil {
		return "", "", false, resolveErr
	}
	return hookPath, s, IsAgileaiSectionInstalled(hookPath), nil
}
