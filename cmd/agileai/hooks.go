package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agilebiz/agileai/internal/config"
	"github.com/agilebiz/agileai/internal/hook"
	"github.com/agilebiz/agileai/internal/output"
	"github.com/agilebiz/agileai/internal/setup"
)

// newHooksCmd creates the hooks parent command with subcommands.
func newHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage Claude Code hooks",
		Long: `Manage the hooks agileai runs during Claude Code sessions.

Hooks are declared in .agileai/hooks/registry.json and toggled through
.agileai/hooks/config.json. Execution samples are recorded for the
dashboard's performance view.

Subcommands:
  list       Show all hooks with enabled state and timeout
  enable     Enable a hook
  disable    Disable a hook
  test       Run a hook once with a test payload
  install    Install the Claude Code session hook script
  uninstall  Remove the Claude Code session hook script

Examples:
  agileai hooks list
  agileai hooks disable state-backup
  agileai hooks test session-start --payload '{"prompt":"hi"}'
  agileai hooks install --global`,
	}

	cmd.AddCommand(newHooksListCmd())
	cmd.AddCommand(newHooksEnableCmd())
	cmd.AddCommand(newHooksDisableCmd())
	cmd.AddCommand(newHooksTestCmd())
	cmd.AddCommand(newHooksInstallCmd())
	cmd.AddCommand(newHooksUninstallCmd())
	return cmd
}

// loadHookFiles loads the registry and config for the workspace.
func loadHookFiles(ws *config.Workspace) (*hook.Registry, *hook.Config, error) {
	reg, err := hook.LoadRegistry(ws.HookRegistryPath())
	if err != nil {
		return nil, nil, err
	}
	cfg, err := hook.LoadConfig(ws.HookConfigPath(), reg)
	if err != nil {
		return nil, nil, err
	}
	return reg, cfg, nil
}

// newHooksListCmd creates the hooks list subcommand.
func newHooksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all hooks",
		Long:  `Show every registered hook with its event, enabled state and effective timeout.`,
		RunE:  runHooksList,
	}
}

// runHooksList executes the hooks list command.
func runHooksList(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	reg, cfg, err := loadHookFiles(ws)
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("loading hooks", err)
		printer.Error(sysErr)
		return sysErr
	}

	if printer.IsJSON() {
		hooks := make([]map[string]any, 0, len(reg.Hooks))
		for i := range reg.Hooks {
			h := &reg.Hooks[i]
			hooks = append(hooks, map[string]any{
				"name":            h.Name,
				"event":           h.Event,
				"enabled":         cfg.Enabled(h.Name),
				"timeout_seconds": cfg.TimeoutSeconds(h),
				"source":          h.Source,
			})
		}
		return printer.Success(map[string]any{
			"hooks": hooks,
			"total": len(hooks),
		})
	}

	printer.Section("Hooks")
	rows := make([][]string, 0, len(reg.Hooks))
	for i := range reg.Hooks {
		h := &reg.Hooks[i]
		rows = append(rows, []string{
			h.Name,
			h.Event,
			formatEnabled(cfg.Enabled(h.Name)),
			strconv.Itoa(cfg.TimeoutSeconds(h)) + "s",
			h.Source,
		})
	}
	printer.Table([]string{"NAME", "EVENT", "ENABLED", "TIMEOUT", "SOURCE"}, rows)
	return nil
}

// formatEnabled renders an enabled flag for table output.
func formatEnabled(enabled bool) string {
	if enabled {
		return "yes"
	}
	return "no"
}

// newHooksEnableCmd creates the hooks enable subcommand.
func newHooksEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <name>",
		Short: "Enable a hook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHooksToggle(cmd, args[0], true)
		},
	}
}

// newHooksDisableCmd creates the hooks disable subcommand.
func newHooksDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <name>",
		Short: "Disable a hook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHooksToggle(cmd, args[0], false)
		},
	}
}

// runHooksToggle flips a hook's enabled flag and persists the config.
func runHooksToggle(cmd *cobra.Command, name string, enabled bool) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	reg, cfg, err := loadHookFiles(ws)
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("loading hooks", err)
		printer.Error(sysErr)
		return sysErr
	}

	patch := map[string]any{
		"hooks": map[string]any{
			name: map[string]any{"enabled": enabled},
		},
	}
	if err := cfg.ApplyPatch(patch, reg); err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}

	if err := hook.SaveConfig(ws.HookConfigPath(), cfg); err != nil {
		sysErr := output.NewSystemErrorWithCause("saving hook config", err)
		printer.Error(sysErr)
		return sysErr
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"hook":    name,
			"enabled": enabled,
		})
	}

	verb := "Enabled"
	if !enabled {
		verb = "Disabled"
	}
	printer.Print("%s hook %s\n", verb, name)
	return nil
}

// hooksTestFlags holds the command-line flags for hooks test.
type hooksTestFlags struct {
	payload string
}

// newHooksTestCmd creates the hooks test subcommand.
func newHooksTestCmd() *cobra.Command {
	flags := &hooksTestFlags{}

	cmd := &cobra.Command{
		Use:   "test <name>",
		Short: "Run a hook once with a test payload",
		Long: `Run a hook once with a JSON payload on stdin and report the result.

The execution is recorded in the hook metrics like a real invocation.
A non-zero exit code or timeout is reported in the result, not as a
command failure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHooksTest(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.payload, "payload", "{}", "JSON payload passed to the hook on stdin")
	return cmd
}

// runHooksTest executes the hooks test command.
func runHooksTest(cmd *cobra.Command, name string, flags *hooksTestFlags) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	if !json.Valid([]byte(flags.payload)) {
		userErr := output.NewUserError("payload must be valid JSON")
		printer.Error(userErr)
		return userErr
	}

	reg, cfg, err := loadHookFiles(ws)
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("loading hooks", err)
		printer.Error(sysErr)
		return sysErr
	}

	h, err := reg.Get(name)
	if err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}

	runner := hook.NewRunner(cfg, hook.NewMetricsStore(ws.HookMetricsPath()), nil)
	result, err := runner.Run(cmd.Context(), h, []byte(flags.payload))
	if err != nil {
		if errors.Is(err, hook.ErrHookDisabled) {
			conflictErr := output.NewConflictError(err.Error())
			printer.Error(conflictErr)
			return conflictErr
		}
		sysErr := output.NewSystemErrorWithCause("running hook", err)
		printer.Error(sysErr)
		return sysErr
	}

	if printer.IsJSON() {
		return printer.WriteJSON(result)
	}

	printHumanHookResult(printer, result)
	return nil
}

// printHumanHookResult outputs a hook run result in human-readable format.
func printHumanHookResult(printer *output.Printer, result *hook.Result) {
	printer.Section("Hook Result")
	printer.KeyValue("Hook", result.Hook)
	printer.KeyValue("Exit code", strconv.Itoa(result.ExitCode))
	printer.KeyValue("Duration", fmt.Sprintf("%dms", result.DurationMS))
	if result.TimedOut {
		printer.KeyValue("Timed out", "yes")
	}
	if result.Truncated {
		printer.KeyValue("Output truncated", "yes")
	}
	if result.Stdout != "" {
		printer.Println()
		printer.Print("stdout:\n%s\n", result.Stdout)
	}
	if result.Stderr != "" {
		printer.Println()
		printer.Print("stderr:\n%s\n", result.Stderr)
	}
}

// hooksInstallFlags holds the command-line flags for hooks install.
type hooksInstallFlags struct {
	global bool
}

// newHooksInstallCmd creates the hooks install subcommand.
func newHooksInstallCmd() *cobra.Command {
	flags := &hooksInstallFlags{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the Claude Code session hook",
		Long: `Install the agileai section into the Claude Code user_prompt_submit hook.

By default the hook is installed into the project's .claude/hooks/
directory. With --global it goes into ~/.claude/hooks/ instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHooksInstall(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.global, "global", false, "Install into ~/.claude instead of the project")
	return cmd
}

// runHooksInstall executes the hooks install command.
func runHooksInstall(cmd *cobra.Command, flags *hooksInstallFlags) error {
	printer := newPrinter(cmd)

	env := setup.GetAgentEnv("claude")
	if env == nil {
		sysErr := output.NewSystemError("claude environment not registered")
		printer.Error(sysErr)
		return sysErr
	}

	path, err := env.Install(!flags.global)
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("installing hook", err)
		printer.Error(sysErr)
		return sysErr
	}

	scope := "project"
	if flags.global {
		scope = "global"
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status": "installed",
			"path":   path,
			"scope":  scope,
		})
	}

	printer.Print("Installed Claude Code hook at %s (%s)\n", path, scope)
	return nil
}

// newHooksUninstallCmd creates the hooks uninstall subcommand.
func newHooksUninstallCmd() *cobra.Command {
	flags := &hooksInstallFlags{}

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the Claude Code session hook",
		Long: `Remove the agileai section from the Claude Code user_prompt_submit hook.

Other tools' sections in the hook script are preserved. A script left
with only its shebang is deleted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHooksUninstall(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.global, "global", false, "Remove from ~/.claude instead of the project")
	return cmd
}

// runHooksUninstall executes the hooks uninstall command.
func runHooksUninstall(cmd *cobra.Command, flags *hooksInstallFlags) error {
	printer := newPrinter(cmd)

	env := setup.GetAgentEnv("claude")
	if env == nil {
		sysErr := output.NewSystemError("claude environment not registered")
		printer.Error(sysErr)
		return sysErr
	}

	if err := env.Remove(!flags.global); err != nil {
		sysErr := output.NewSystemErrorWithCause("removing hook", err)
		printer.Error(sysErr)
		return sysErr
	}

	scope := "project"
	if flags.global {
		scope = "global"
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status": "removed",
			"scope":  scope,
		})
	}

	printer.Print("Removed Claude Code hook (%s)\n", scope)
	return nil
}
