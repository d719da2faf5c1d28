// Package main provides the entry point for the agileai CLI.
package main

import (
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/agilebiz/agileai/internal/agent"
	"github.com/agilebiz/agileai/internal/config"
	"github.com/agilebiz/agileai/internal/hook"
	"github.com/agilebiz/agileai/internal/output"
	"github.com/agilebiz/agileai/internal/setup"
	"github.com/agilebiz/agileai/internal/state"
)

// initFlags holds the command-line flags for the init command.
type initFlags struct {
	noAgent bool
	dryRun  bool
}

// initStepResult tracks the result of a single initialization step.
type initStepResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "skipped", "failed", "dry_run"
	Message string `json:"message,omitempty"`
}

// initStyleSet holds lipgloss styles for init output.
type initStyleSet struct {
	heading lipgloss.Style
	pass    lipgloss.Style
	skip    lipgloss.Style
	fail    lipgloss.Style
	dim     lipgloss.Style
	accent  lipgloss.Style
}

// initStyles returns a TTY-aware style set.
func initStyles(isTTY bool) initStyleSet {
	if !isTTY {
		return initStyleSet{}
	}
	return initStyleSet{
		heading: lipgloss.NewStyle().Bold(true),
		pass:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "10", Dark: "10"}),
		skip:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "8", Dark: "7"}),
		fail:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "9", Dark: "9"}),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "8", Dark: "7"}),
		accent:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "12", Dark: "12"}),
	}
}

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize an agileai workspace in the current directory",
		Long: `Initialize an agileai workspace in the current directory.

This command sets up everything needed to use agileai:
  - Creates the .agileai/ directory tree (agents, hooks, state, improvements)
  - Seeds the built-in agent personas
  - Writes the default hook registry and configuration
  - Writes empty project state documents
  - Installs the Claude Code session hook (optional)

The command is idempotent - safe to run multiple times. Existing files
are never overwritten.

Examples:
  agileai init              # Full setup including Claude Code hook
  agileai init --no-agent   # Skip Claude Code hook installation
  agileai init --dry-run    # Show what would be done`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noAgent, "no-agent", false, "Skip agent environment integration")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would be done without doing it")

	return cmd
}

// runInit executes the init command.
func runInit(cmd *cobra.Command, flags *initFlags) error {
	printer := newPrinter(cmd)
	styles := initStyles(printer.IsTTY())

	cwd, err := os.Getwd()
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("cannot determine working directory", err)
		printer.Error(sysErr)
		return sysErr
	}

	if flags.dryRun {
		return handleInitDryRun(printer, styles, cwd, flags)
	}

	steps := executeInitSteps(cwd, flags)
	return outputInitResult(printer, styles, cwd, steps)
}

// handleInitDryRun outputs what would be done without making changes.
func handleInitDryRun(printer *output.Printer, styles initStyleSet, root string, flags *initFlags) error {
	steps := []initStepResult{
		{Name: "workspace", Status: "dry_run", Message: "create .agileai/ directory tree"},
		{Name: "personas", Status: "dry_run", Message: "seed built-in agent personas"},
		{Name: "hooks", Status: "dry_run", Message: "write hook registry and config"},
		{Name: "state", Status: "dry_run", Message: "write empty state documents"},
	}
	if flags.noAgent {
		steps = append(steps, initStepResult{Name: "agent_env", Status: "skipped", Message: "--no-agent"})
	} else {
		steps = append(steps, initStepResult{Name: "agent_env", Status: "dry_run", Message: "install Claude Code session hook"})
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status": "dry_run",
			"root":   root,
			"steps":  steps,
		})
	}

	printer.Println()
	printer.Print("%s %s\n", styles.heading.Render("Would initialize agileai in"), styles.dim.Render(root))
	printer.Println()
	for _, s := range steps {
		printer.Print("  %s %s\n", styles.accent.Render(s.Name+":"), s.Message)
	}
	return nil
}

// executeInitSteps runs each initialization step, recording per-step results.
// A failed step does not stop later steps; init reports everything it could do.
func executeInitSteps(root string, flags *initFlags) []initStepResult {
	var steps []initStepResult

	ws, err := config.Scaffold(root)
	if err != nil {
		steps = append(steps, initStepResult{Name: "workspace", Status: "failed", Message: err.Error()})
		return steps
	}
	steps = append(steps, initStepResult{Name: "workspace", Status: "ok", Message: ws.Dir()})

	steps = append(steps, seedPersonasStep(ws))
	steps = append(steps, writeHookFilesStep(ws))
	steps = append(steps, writeStateFilesStep(ws))

	if flags.noAgent {
		steps = append(steps, initStepResult{Name: "agent_env", Status: "skipped", Message: "--no-agent"})
	} else {
		steps = append(steps, installAgentEnvStep())
	}

	return steps
}

// seedPersonasStep writes the built-in personas that do not already exist.
func seedPersonasStep(ws *config.Workspace) initStepResult {
	store := agent.NewStore(ws.AgentsDir())
	seeded, err := store.SeedBuiltins()
	if err != nil {
		return initStepResult{Name: "personas", Status: "failed", Message: err.Error()}
	}
	if len(seeded) == 0 {
		return initStepResult{Name: "personas", Status: "skipped", Message: "already seeded"}
	}
	return initStepResult{Name: "personas", Status: "ok", Message: formatCount(len(seeded), "persona")}
}

// writeHookFilesStep writes the default registry and config if missing.
func writeHookFilesStep(ws *config.Workspace) initStepResult {
	wrote := false

	if _, err := os.Stat(ws.HookRegistryPath()); os.IsNotExist(err) {
		if err := hook.SaveRegistry(ws.HookRegistryPath(), hook.BuiltinRegistry()); err != nil {
			return initStepResult{Name: "hooks", Status: "failed", Message: err.Error()}
		}
		wrote = true
	}

	if _, err := os.Stat(ws.HookConfigPath()); os.IsNotExist(err) {
		reg, err := hook.LoadRegistry(ws.HookRegistryPath())
		if err != nil {
			return initStepResult{Name: "hooks", Status: "failed", Message: err.Error()}
		}
		if err := hook.SaveConfig(ws.HookConfigPath(), hook.DefaultConfig(reg)); err != nil {
			return initStepResult{Name: "hooks", Status: "failed", Message: err.Error()}
		}
		wrote = true
	}

	if !wrote {
		return initStepResult{Name: "hooks", Status: "skipped", Message: "already configured"}
	}
	return initStepResult{Name: "hooks", Status: "ok", Message: "registry and config written"}
}

// writeStateFilesStep writes each state document that does not already exist.
func writeStateFilesStep(ws *config.Workspace) initStepResult {
	store := state.NewStore(ws.StateDir())
	wrote := 0
	for _, kind := range state.Kinds() {
		if _, err := os.Stat(store.Path(kind)); err == nil {
			continue
		}
		if err := store.Replace(kind, state.DefaultDocument(kind)); err != nil {
			return initStepResult{Name: "state", Status: "failed", Message: err.Error()}
		}
		wrote++
	}
	if wrote == 0 {
		return initStepResult{Name: "state", Status: "skipped", Message: "already present"}
	}
	return initStepResult{Name: "state", Status: "ok", Message: formatCount(wrote, "document")}
}

// installAgentEnvStep installs the Claude Code project hook.
func installAgentEnvStep() initStepResult {
	env := setup.GetAgentEnv("claude")
	if env == nil {
		return initStepResult{Name: "agent_env", Status: "failed", Message: "claude environment not registered"}
	}
	if _, _, installed := env.Detect(); installed {
		return initStepResult{Name: "agent_env", Status: "skipped", Message: "already installed"}
	}
	path, err := env.Install(true)
	if err != nil {
		return initStepResult{Name: "agent_env", Status: "failed", Message: err.Error()}
	}
	return initStepResult{Name: "agent_env", Status: "ok", Message: path}
}

// outputInitResult outputs the final initialization result.
func outputInitResult(printer *output.Printer, styles initStyleSet, root string, steps []initStepResult) error {
	failed := false
	for _, s := range steps {
		if s.Status == "failed" {
			failed = true
		}
	}

	if printer.IsJSON() {
		if failed {
			err := output.NewSystemError("some initialization steps failed")
			printer.Error(err)
			return err
		}
		return printer.Success(map[string]any{
			"status": "ok",
			"root":   root,
			"steps":  steps,
		})
	}

	printer.Println()
	printer.Print("%s %s\n", styles.heading.Render("Initializing agileai in"), styles.dim.Render(root))
	printer.Println()
	for _, s := range steps {
		printer.Print("  %s %s %s\n", renderStepStatus(styles, s.Status), s.Name, styles.dim.Render(s.Message))
	}
	printer.Println()

	if failed {
		err := output.NewSystemError("some initialization steps failed")
		printer.Error(err)
		return err
	}

	printer.Print("Next steps:\n")
	printer.Print("  %s  see available agent personas\n", styles.accent.Render("agileai agents list"))
	printer.Print("  %s  start the local dashboard\n", styles.accent.Render("agileai dashboard"))
	printer.Print("  %s  check workspace health\n", styles.accent.Render("agileai doctor"))
	return nil
}

// renderStepStatus renders a status glyph for human output.
func renderStepStatus(styles initStyleSet, status string) string {
	switch status {
	case "ok":
		return styles.pass.Render("✓")
	case "skipped":
		return styles.skip.Render("-")
	case "failed":
		return styles.fail.Render("✗")
	default:
		return " "
	}
}

// formatCount formats "N noun(s)".
func formatCount(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
