// Package mcp provides a Model Context Protocol server for agileai.
// It exposes the workspace — agent personas, hooks, project state, and
// the improvement backlog — as MCP tools any MCP-capable agent can use.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agilebiz/agileai/internal/config"
)

// NewServer creates an MCP server with all agileai tools registered.
func NewServer(version string, ws *config.Workspace) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "agileai",
		Version: version,
	}, nil)
	registerTools(server, ws)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations returns annotations for write tools (additive, not destructive).
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(false),
	}
}

// registerTools adds all agileai tools to the server.
func registerTools(server *mcp.Server, ws *config.Workspace) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "agents_list",
		Description: "List available agent personas with name, title, and tags. Workspace personas shadow builtins of the same name.",
		Annotations: readOnlyAnnotations(),
	}, handleAgentsList(ws))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "agents_get",
		Description: "Get a single agent persona by name, including its full prompt body.",
		Annotations: readOnlyAnnotations(),
	}, handleAgentsGet(ws))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hooks_status",
		Description: "Show every registered hook with its enabled state and effective timeout.",
		Annotations: readOnlyAnnotations(),
	}, handleHooksStatus(ws))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "hooks_test",
		Description: "Run a named hook with an optional JSON payload on stdin and return the captured result.",
		Annotations: writeAnnotations(),
	}, handleHooksTest(ws))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "state_get",
		Description: "Read a project state document: runtime, persistent, or configuration.",
		Annotations: readOnlyAnnotations(),
	}, handleStateGet(ws))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "improvements_list",
		Description: "List improvement backlog items, optionally filtered by status and priority.",
		Annotations: readOnlyAnnotations(),
	}, handleImprovementsList(ws))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "improvements_add",
		Description: "Add a new improvement backlog item with title, description, category, and priority.",
		Annotations: writeAnnotations(),
	}, handleImprovementsAdd(ws))
}
