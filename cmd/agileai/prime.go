// Package main provides the entry point for the agileai CLI.
package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agilebiz/agileai/internal/agent"
	"github.com/agilebiz/agileai/internal/backlog"
	"github.com/agilebiz/agileai/internal/config"
	"github.com/agilebiz/agileai/internal/output"
	"github.com/agilebiz/agileai/internal/state"
)

// primeResult holds the data for prime output.
type primeResult struct {
	Root         string         `json:"root"`
	AgentCount   int            `json:"agent_count"`
	Hooks        []primeHook    `json:"hooks"`
	Improvements primeBacklog   `json:"improvements"`
	Runtime      state.Document `json:"runtime"`
	Workflow     string         `json:"workflow"`
}

// primeHook is a simplified hook for prime output.
type primeHook struct {
	Name    string `json:"name"`
	Event   string `json:"event"`
	Enabled bool   `json:"enabled"`
}

// primeBacklog summarizes the improvement backlog.
type primeBacklog struct {
	OpenCount int            `json:"open_count"`
	Recent    []backlog.Item `json:"recent,omitempty"`
}

// newPrimeCmd creates the prime command.
func newPrimeCmd() *cobra.Command {
	var lastFlag int
	var exportFlag bool

	cmd := &cobra.Command{
		Use:   "prime",
		Short: "Session bootstrapping context injection",
		Long: `Prime provides session context for starting an agent session.

This command gathers the workspace layout, enabled hooks, open
improvements and current runtime state so agents start each session
with the project's working context.

Workflow instructions are included to guide agents through the session
protocol. These can be customized by creating .agileai/PRIME.md.

Prime is wired into the Claude Code user_prompt_submit hook by
'agileai init'; in a directory with no workspace it exits silently so
the hook is a no-op outside agileai projects.

Examples:
  agileai prime              # Show session context
  agileai prime --last 5     # Include the 5 most recent open improvements
  agileai prime --json       # Output structured context as JSON
  agileai prime --export     # Output default workflow content for customization`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if exportFlag {
				cmd.Print(defaultWorkflowContent)
				return nil
			}
			return runPrime(cmd, lastFlag)
		},
	}

	cmd.Flags().IntVar(&lastFlag, "last", 3, "Number of recent open improvements to show")
	cmd.Flags().BoolVar(&exportFlag, "export", false, "Output default workflow content for customization")

	return cmd
}

// runPrime executes the prime command.
func runPrime(cmd *cobra.Command, lastN int) error {
	printer := newPrinter(cmd)

	ws, err := config.CurrentWorkspace()
	if errors.Is(err, config.ErrNoWorkspace) {
		return nil // not an agileai project, silent skip
	}
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("resolving workspace", err)
		printer.Error(sysErr)
		return sysErr
	}

	result, err := gatherPrimeContext(ws, lastN)
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("gathering session context", err)
		printer.Error(sysErr)
		return sysErr
	}

	if printer.IsJSON() {
		return printer.WriteJSON(result)
	}
	outputPrimeHuman(printer, result)
	return nil
}

// gatherPrimeContext collects all prime context information.
func gatherPrimeContext(ws *config.Workspace, lastN int) (*primeResult, error) {
	personas, _, err := agent.NewStore(ws.AgentsDir()).List()
	if err != nil {
		return nil, err
	}

	reg, cfg, err := loadHookFiles(ws)
	if err != nil {
		return nil, err
	}
	hooks := make([]primeHook, 0, len(reg.Hooks))
	for i := range reg.Hooks {
		h := &reg.Hooks[i]
		hooks = append(hooks, primeHook{
			Name:    h.Name,
			Event:   h.Event,
			Enabled: cfg.Enabled(h.Name),
		})
	}

	open, err := backlog.NewStore(ws.BacklogPath()).List(backlog.Filter{Status: backlog.StatusOpen})
	if err != nil {
		return nil, err
	}
	recent := open
	if lastN >= 0 && len(recent) > lastN {
		recent = recent[:lastN]
	}

	runtime, err := state.NewStore(ws.StateDir()).Get(state.KindRuntime)
	if err != nil {
		return nil, err
	}

	return &primeResult{
		Root:       ws.Root,
		AgentCount: len(personas),
		Hooks:      hooks,
		Improvements: primeBacklog{
			OpenCount: len(open),
			Recent:    recent,
		},
		Runtime:  runtime,
		Workflow: loadWorkflowContent(ws),
	}, nil
}

// loadWorkflowContent loads workflow content from .agileai/PRIME.md or returns default.
func loadWorkflowContent(ws *config.Workspace) string {
	data, err := os.ReadFile(filepath.Join(ws.Dir(), "PRIME.md"))
	if err != nil {
		return defaultWorkflowContent
	}
	return string(data)
}

// outputPrimeHuman outputs prime context in human-readable format.
func outputPrimeHuman(printer *output.Printer, result *primeResult) {
	printer.Section("Session Context")
	printer.KeyValue("Workspace", result.Root)
	printer.KeyValue("Agents", formatCount(result.AgentCount, "persona"))

	enabled := 0
	for _, h := range result.Hooks {
		if h.Enabled {
			enabled++
		}
	}
	printer.KeyValue("Hooks", formatCount(enabled, "enabled hook"))
	printer.KeyValue("Open improvements", formatCount(result.Improvements.OpenCount, "item"))

	if len(result.Improvements.Recent) > 0 {
		printer.Println()
		printer.Section("Recent Improvements")
		for i := range result.Improvements.Recent {
			it := &result.Improvements.Recent[i]
			printer.Print("  [%s] %s (%s)\n", shortID(it.ID), it.Title, it.Priority)
		}
	}

	if task, ok := result.Runtime["current_task"].(string); ok && task != "" {
		printer.Println()
		printer.KeyValue("Current task", task)
	}

	printer.Println()
	printer.Print("%s\n", result.Workflow)
}
