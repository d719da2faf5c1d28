// Package main provides the entry point for the agileai CLI.
package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agilebiz/agileai/internal/agent"
	"github.com/agilebiz/agileai/internal/backlog"
	"github.com/agilebiz/agileai/internal/config"
	"github.com/agilebiz/agileai/internal/integrations"
	"github.com/agilebiz/agileai/internal/setup"
	"github.com/agilebiz/agileai/internal/state"
)

// gatherDoctorChecks runs all health checks and returns results.
func gatherDoctorChecks(ws *config.Workspace) *doctorResult {
	result := &doctorResult{
		Version:     version,
		Workspace:   runWorkspaceChecks(ws),
		Integration: runIntegrationChecks(ws),
		Summary:     &doctorSummary{},
	}

	allChecks := append(append([]checkResult{}, result.Workspace...), result.Integration...)
	for _, check := range allChecks {
		switch check.Status {
		case checkPass:
			result.Summary.Passed++
		case checkWarn:
			result.Summary.Warnings++
		case checkFail:
			result.Summary.Failed++
		}
	}

	return result
}

// runWorkspaceChecks performs workspace layout and data file checks.
func runWorkspaceChecks(ws *config.Workspace) []checkResult {
	checks := make([]checkResult, 0, 5)
	checks = append(checks, checkWorkspaceLayout(ws))
	checks = append(checks, checkHookFiles(ws))
	checks = append(checks, checkStateDocuments(ws))
	checks = append(checks, checkPersonas(ws))
	checks = append(checks, checkBacklog(ws))
	return checks
}

// checkWorkspaceLayout checks that the expected directories exist.
func checkWorkspaceLayout(ws *config.Workspace) checkResult {
	var missing []string
	for _, dir := range []string{ws.AgentsDir(), ws.HooksDir(), ws.StateDir(), ws.ImprovementsDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			missing = append(missing, filepath.Base(dir))
		}
	}

	if len(missing) == 0 {
		return checkResult{
			Name:    "Workspace Layout",
			Status:  checkPass,
			Message: ".agileai/ directory tree is complete",
		}
	}
	return checkResult{
		Name:    "Workspace Layout",
		Status:  checkWarn,
		Message: "missing directories: " + strings.Join(missing, ", "),
		Hint:    "Run 'agileai init' to recreate them",
	}
}

// checkHookFiles checks that the registry and config parse.
func checkHookFiles(ws *config.Workspace) checkResult {
	reg, cfg, err := loadHookFiles(ws)
	if err != nil {
		return checkResult{
			Name:    "Hook Files",
			Status:  checkFail,
			Message: err.Error(),
			Hint:    "Fix or delete the broken file under .agileai/hooks/",
		}
	}

	enabled := 0
	for i := range reg.Hooks {
		if cfg.Enabled(reg.Hooks[i].Name) {
			enabled++
		}
	}
	return checkResult{
		Name:    "Hook Files",
		Status:  checkPass,
		Message: strconv.Itoa(len(reg.Hooks)) + " hooks registered, " + strconv.Itoa(enabled) + " enabled",
	}
}

// checkStateDocuments checks that each state document parses.
func checkStateDocuments(ws *config.Workspace) checkResult {
	store := state.NewStore(ws.StateDir())
	for _, kind := range state.Kinds() {
		if _, err := store.Get(kind); err != nil {
			return checkResult{
				Name:    "State Documents",
				Status:  checkFail,
				Message: string(kind) + ": " + err.Error(),
				Hint:    "Fix or delete .agileai/state/" + string(kind) + ".json",
			}
		}
	}
	return checkResult{
		Name:    "State Documents",
		Status:  checkPass,
		Message: "all state documents parse",
	}
}

// checkPersonas checks that workspace personas parse.
func checkPersonas(ws *config.Workspace) checkResult {
	personas, stats, err := agent.NewStore(ws.AgentsDir()).List()
	if err != nil {
		return checkResult{
			Name:    "Agent Personas",
			Status:  checkFail,
			Message: err.Error(),
		}
	}
	if stats.Skipped > 0 {
		return checkResult{
			Name:    "Agent Personas",
			Status:  checkWarn,
			Message: strconv.Itoa(stats.Skipped) + " persona file(s) could not be parsed",
			Hint:    "Check frontmatter in .agileai/agents/*.md",
		}
	}
	return checkResult{
		Name:    "Agent Personas",
		Status:  checkPass,
		Message: strconv.Itoa(len(personas)) + " personas available",
	}
}

// checkBacklog checks that the improvement backlog parses.
func checkBacklog(ws *config.Workspace) checkResult {
	items, err := backlog.NewStore(ws.BacklogPath()).List(backlog.Filter{Status: backlog.StatusOpen})
	if err != nil {
		return checkResult{
			Name:    "Improvement Backlog",
			Status:  checkFail,
			Message: err.Error(),
			Hint:    "Fix or delete .agileai/improvements/backlog.json",
		}
	}
	return checkResult{
		Name:    "Improvement Backlog",
		Status:  checkPass,
		Message: strconv.Itoa(len(items)) + " open items",
	}
}

// runIntegrationChecks performs Claude Code and MCP integration checks.
func runIntegrationChecks(ws *config.Workspace) []checkResult {
	checks := make([]checkResult, 0, 3)
	checks = append(checks, checkBinaryInPath())
	checks = append(checks, checkClaudeHook(ws))
	checks = append(checks, checkMCPEnv(ws))
	return checks
}

// checkBinaryInPath checks that agileai is resolvable, which the hook
// script depends on.
func checkBinaryInPath() checkResult {
	if _, err := exec.LookPath("agileai"); err != nil {
		return checkResult{
			Name:    "Binary In PATH",
			Status:  checkWarn,
			Message: "agileai not found in PATH",
			Hint:    "The Claude Code hook silently skips when the binary is missing",
		}
	}
	return checkResult{
		Name:    "Binary In PATH",
		Status:  checkPass,
		Message: "agileai is in PATH",
	}
}

// checkClaudeHook checks the Claude Code session hook integration.
// Either the hook script or a settings.json hook declaration counts.
func checkClaudeHook(ws *config.Workspace) checkResult {
	env := setup.GetAgentEnv("claude")
	if env == nil {
		return checkResult{
			Name:    "Claude Code Hook",
			Status:  checkFail,
			Message: "claude environment not registered",
		}
	}

	if path, scope, installed := env.Detect(); installed {
		return checkResult{
			Name:    "Claude Code Hook",
			Status:  checkPass,
			Message: "installed at " + path + " (" + scope + ")",
		}
	}

	settingsPath := filepath.Join(ws.Root, ".claude", "settings.json")
	if setup.SettingsDeclaresPrime(settingsPath) {
		return checkResult{
			Name:    "Claude Code Hook",
			Status:  checkPass,
			Message: "declared in .claude/settings.json",
		}
	}

	return checkResult{
		Name:    "Claude Code Hook",
		Status:  checkWarn,
		Message: "session hook not installed",
		Hint:    "Run 'agileai hooks install'",
	}
}

// checkMCPEnv warns about configured MCP servers with missing API keys.
func checkMCPEnv(ws *config.Workspace) checkResult {
	statuses, err := integrations.List(ws.MCPConfigPath(), ws.EnvFilePath())
	if err != nil {
		return checkResult{
			Name:    "MCP Servers",
			Status:  checkFail,
			Message: err.Error(),
			Hint:    "Check .mcp.json for syntax errors",
		}
	}

	configured := 0
	var incomplete []string
	for i := range statuses {
		st := &statuses[i]
		if !st.Configured {
			continue
		}
		configured++
		if len(st.MissingEnv) > 0 {
			incomplete = append(incomplete, st.Server.Name)
		}
	}

	if len(incomplete) > 0 {
		return checkResult{
			Name:    "MCP Servers",
			Status:  checkWarn,
			Message: "missing env keys for: " + strings.Join(incomplete, ", "),
			Hint:    "Fill in the placeholder values in .env",
		}
	}
	return checkResult{
		Name:    "MCP Servers",
		Status:  checkPass,
		Message: strconv.Itoa(configured) + " configured",
	}
}
