// Package main provides the entry point for the agileai CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/agilebiz/agileai/internal/config"
	"github.com/agilebiz/agileai/internal/envfile"
	"github.com/agilebiz/agileai/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		// Walk up to root to find the persistent flag
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// useColor reports whether styled output should be used for this command,
// honoring the --color persistent flag.
func useColor(cmd *cobra.Command) bool {
	mode := "auto"
	if flag := cmd.Root().PersistentFlags().Lookup("color"); flag != nil {
		mode = flag.Value.String()
	}
	return output.ResolveColorMode(mode, output.IsTTY(cmd.OutOrStdout()))
}

// newPrinter builds the printer for a command, routing warnings and status
// hints to stderr in human mode.
func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).
		WithStderr(cmd.ErrOrStderr())
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the agileai CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agileai",
		Short: "Workspace manager for AI-assisted development",
		Long: `AgileAI - a workspace manager for AI-assisted development.

AgileAI keeps an agent workspace under .agileai/ in your project:
  - Agent personas (markdown prompts with YAML frontmatter)
  - Claude Code hooks with per-hook configuration and metrics
  - Project state documents (runtime, persistent, configuration)
  - An improvement backlog captured during sessions
  - MCP server integrations (.mcp.json and .env plumbing)

The dashboard command serves a local HTTP API over the workspace;
serve exposes the same operations as MCP tools over stdio.

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// If --json flag is set but no subcommand, output JSON error
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'agileai --help' for usage")
				printer.Error(err)
				return err
			}
			// Otherwise show help
			return cmd.Help()
		},
	}

	// Load .env.local (then .env) for API keys that can't be exported to env.
	// Environment variables always take precedence over file values.
	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		loadEnvFiles()
		return nil
	}

	// Add persistent --json flag (available to all subcommands)
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("color", "auto", "Color output: auto, always, never")

	// Configure lipgloss for TTY detection
	lipgloss.SetHasDarkBackground(true)

	// Define command groups and add commands
	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// loadEnvFiles loads env files in priority order. First match for each
// variable wins; environment variables already set always take precedence.
//
// Resolution order:
//  1. $CWD/.env.local   (per-project override, gitignored)
//  2. $CWD/.env         (per-project)
//  3. ~/.config/agileai/env (global fallback - set once, works everywhere)
func loadEnvFiles() {
	_ = envfile.Load(".env.local")
	_ = envfile.Load(".env")

	if dir := config.Dir(); dir != "" {
		_ = envfile.Load(filepath.Join(dir, "env"))
	}
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "server", Title: "Server Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "agent", Title: "Agent Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "admin", Title: "Admin Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	// Core commands: agents, hooks, state, improve
	addGroupedCommand(cmd, newAgentsCmd(), "core")
	addGroupedCommand(cmd, newHooksCmd(), "core")
	addGroupedCommand(cmd, newStateCmd(), "core")
	addGroupedCommand(cmd, newImproveCmd(), "core")

	// Server commands: dashboard, serve
	addGroupedCommand(cmd, newDashboardCmd(), "server")
	addGroupedCommand(cmd, newServeCmd(), "server")

	// Agent commands: prime
	addGroupedCommand(cmd, newPrimeCmd(), "agent")

	// Admin commands: init, mcp, doctor
	addGroupedCommand(cmd, newInitCmd(), "admin")
	addGroupedCommand(cmd, newMCPCmd(), "admin")
	addGroupedCommand(cmd, newDoctorCmd(), "admin")
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
