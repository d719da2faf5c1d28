package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agilebiz/agileai/internal/agent"
	"github.com/agilebiz/agileai/internal/config"
	"github.com/agilebiz/agileai/internal/state"
)

// --- Agents tools ---

// AgentSummary is the list-view shape for a persona.
type AgentSummary struct {
	Name   string   `json:"name"           jsonschema:"persona name"`
	Title  string   `json:"title"          jsonschema:"human-readable title"`
	Tags   []string `json:"tags,omitempty" jsonschema:"persona tags"`
	Source string   `json:"source"         jsonschema:"builtin or workspace"`
}

// AgentsListInput is the input for the agents_list tool (no parameters needed).
type AgentsListInput struct{}

// AgentsListOutput is the output for the agents_list tool.
type AgentsListOutput struct {
	Agents  []AgentSummary `json:"agents"  jsonschema:"available personas"`
	Total   int            `json:"total"   jsonschema:"number of personas"`
	Skipped int            `json:"skipped" jsonschema:"workspace files skipped as unparseable"`
}

func handleAgentsList(ws *config.Workspace) mcp.ToolHandlerFor[AgentsListInput, AgentsListOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ AgentsListInput) (*mcp.CallToolResult, AgentsListOutput, error) {
		store := agent.NewStore(ws.AgentsDir())
		personas, stats, err := store.List()
		if err != nil {
			return nil, AgentsListOutput{}, fmt.Errorf("listing personas: %w", err)
		}

		out := AgentsListOutput{
			Agents:  make([]AgentSummary, 0, len(personas)),
			Total:   len(personas),
			Skipped: stats.Skipped,
		}
		for _, p := range personas {
			out.Agents = append(out.Agents, AgentSummary{
				Name:   p.Name,
				Title:  p.Title,
				Tags:   p.Tags,
				Source: p.Source,
			})
		}
		return nil, out, nil
	}
}

// AgentsGetInput is the input for the agents_get tool.
type AgentsGetInput struct {
	Name string `json:"name" jsonschema:"persona name to fetch"`
}

// AgentsGetOutput is the output for the agents_get tool.
type AgentsGetOutput struct {
	Agent *agent.Persona `json:"agent" jsonschema:"the persona including its prompt body"`
}

func handleAgentsGet(ws *config.Workspace) mcp.ToolHandlerFor[AgentsGetInput, AgentsGetOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input AgentsGetInput) (*mcp.CallToolResult, AgentsGetOutput, error) {
		if input.Name == "" {
			return nil, AgentsGetOutput{}, fmt.Errorf("name is required")
		}
		store := agent.NewStore(ws.AgentsDir())
		p, err := store.Get(input.Name)
		if err != nil {
			return nil, AgentsGetOutput{}, fmt.Errorf("getting persona: %w", err)
		}
		return nil, AgentsGetOutput{Agent: p}, nil
	}
}

// --- State tool ---

// StateGetInput is the input for the state_get tool.
type StateGetInput struct {
	Kind string `json:"kind" jsonschema:"state document kind: runtime, persistent, or configuration"`
}

// StateGetOutput is the output for the state_get tool.
type StateGetOutput struct {
	Kind     string         `json:"kind"     jsonschema:"state document kind"`
	Document state.Document `json:"document" jsonschema:"the state document"`
}

func handleStateGet(ws *config.Workspace) mcp.ToolHandlerFor[StateGetInput, StateGetOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input StateGetInput) (*mcp.CallToolResult, StateGetOutput, error) {
		kind, err := state.ParseKind(input.Kind)
		if err != nil {
			return nil, StateGetOutput{}, err
		}
		doc, err := state.NewStore(ws.StateDir()).Get(kind)
		if err != nil {
			return nil, StateGetOutput{}, fmt.Errorf("reading state: %w", err)
		}
		return nil, StateGetOutput{Kind: string(kind), Document: doc}, nil
	}
}
