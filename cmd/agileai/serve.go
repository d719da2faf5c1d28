// Package main provides the entry point for the agileai CLI.
package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/agilebiz/agileai/internal/config"
	agileaimcp "github.com/agilebiz/agileai/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run agileai as a Model Context Protocol (MCP) server over stdio.

This exposes workspace operations as MCP tools that any MCP-capable
agent environment can use (Claude Code, Cursor, Windsurf, Gemini CLI).

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "agileai": {
        "command": "agileai",
        "args": ["serve"]
      }
    }
  }

Available tools: agents_list, agents_get, hooks_status, hooks_test,
state_get, improvements_list, improvements_add`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := config.CurrentWorkspace()
			if err != nil {
				return err
			}
			server := agileaimcp.NewServer(buildVersion(), ws)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
