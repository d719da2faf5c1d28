package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agilebiz/agileai/internal/integrations"
	"github.com/agilebiz/agileai/internal/output"
)

// newMCPCmd creates the mcp parent command with subcommands.
func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Manage MCP server integrations",
		Long: `Manage third-party MCP server integrations for the project.

agileai knows a catalog of common MCP servers (GitHub, Context7,
Perplexity, ...). Setup writes the server block into the project's
.mcp.json and makes sure the required API key placeholders exist in
.env; the actual key values are yours to fill in.

Subcommands:
  list    Show catalog servers and their configuration status
  setup   Configure a catalog server in .mcp.json
  remove  Remove a server from .mcp.json

Examples:
  agileai mcp list
  agileai mcp setup github
  agileai mcp remove github`,
	}

	cmd.AddCommand(newMCPListCmd())
	cmd.AddCommand(newMCPSetupCmd())
	cmd.AddCommand(newMCPRemoveCmd())
	return cmd
}

// newMCPListCmd creates the mcp list subcommand.
func newMCPListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show catalog servers and their status",
		RunE:  runMCPList,
	}
}

// runMCPList executes the mcp list command.
func runMCPList(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	statuses, err := integrations.List(ws.MCPConfigPath(), ws.EnvFilePath())
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("reading MCP config", err)
		printer.Error(sysErr)
		return sysErr
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"servers": statuses,
			"total":   len(statuses),
		})
	}

	printer.Section("MCP Servers")
	rows := make([][]string, 0, len(statuses))
	for i := range statuses {
		st := &statuses[i]
		rows = append(rows, []string{
			st.Server.Name,
			formatConfigured(st),
			st.Server.Description,
		})
	}
	printer.Table([]string{"NAME", "STATUS", "DESCRIPTION"}, rows)
	return nil
}

// formatConfigured renders a server's configuration status.
func formatConfigured(st *integrations.Status) string {
	if !st.Configured {
		return "not configured"
	}
	if len(st.MissingEnv) > 0 {
		return "missing env: " + strings.Join(st.MissingEnv, ", ")
	}
	return "configured"
}

// newMCPSetupCmd creates the mcp setup subcommand.
func newMCPSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup <name>",
		Short: "Configure a catalog server in .mcp.json",
		Args:  cobra.ExactArgs(1),
		RunE:  runMCPSetup,
	}
}

// runMCPSetup executes the mcp setup command.
func runMCPSetup(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	added, err := integrations.Setup(ws.MCPConfigPath(), ws.EnvFilePath(), args[0])
	if err != nil {
		if errors.Is(err, integrations.ErrUnknownServer) {
			userErr := output.NewUserError(err.Error())
			printer.Error(userErr)
			return userErr
		}
		sysErr := output.NewSystemErrorWithCause("configuring MCP server", err)
		printer.Error(sysErr)
		return sysErr
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status":         "configured",
			"server":         args[0],
			"env_keys_added": added,
		})
	}

	printer.Print("Configured MCP server %s in %s\n", args[0], ws.MCPConfigPath())
	if len(added) > 0 {
		printer.Print("Added placeholder keys to .env: %s\n", strings.Join(added, ", "))
		printer.Print("Fill in the values before starting a session.\n")
	}
	return nil
}

// newMCPRemoveCmd creates the mcp remove subcommand.
func newMCPRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a server from .mcp.json",
		Args:  cobra.ExactArgs(1),
		RunE:  runMCPRemove,
	}
}

// runMCPRemove executes the mcp remove command.
func runMCPRemove(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	if err := integrations.Remove(ws.MCPConfigPath(), args[0]); err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status": "removed",
			"server": args[0],
		})
	}

	printer.Print("Removed MCP server %s from %s\n", args[0], ws.MCPConfigPath())
	return nil
}
