package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agilebiz/agileai/internal/backlog"
	"github.com/agilebiz/agileai/internal/config"
)

// --- improvements_list tool ---

// ImprovementsListInput is the input for the improvements_list tool.
type ImprovementsListInput struct {
	Status   string `json:"status,omitempty"   jsonschema:"filter by status: open, in_progress, done, rejected"`
	Priority string `json:"priority,omitempty" jsonschema:"filter by priority: low, medium, high, critical"`
}

// ImprovementsListOutput is the output for the improvements_list tool.
type ImprovementsListOutput struct {
	Items []backlog.Item `json:"items" jsonschema:"matching backlog items, newest first"`
	Count int            `json:"count" jsonschema:"number of matching items"`
}

func handleImprovementsList(ws *config.Workspace) mcp.ToolHandlerFor[ImprovementsListInput, ImprovementsListOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ImprovementsListInput) (*mcp.CallToolResult, ImprovementsListOutput, error) {
		store := backlog.NewStore(ws.BacklogPath())
		items, err := store.List(backlog.Filter{
			Status:   input.Status,
			Priority: input.Priority,
		})
		if err != nil {
			return nil, ImprovementsListOutput{}, fmt.Errorf("listing improvements: %w", err)
		}
		return nil, ImprovementsListOutput{Items: items, Count: len(items)}, nil
	}
}

// --- improvements_add tool ---

// ImprovementsAddInput is the input for the improvements_add tool.
type ImprovementsAddInput struct {
	Title       string `json:"title"                 jsonschema:"short item title"`
	Description string `json:"description,omitempty" jsonschema:"longer description"`
	Category    string `json:"category,omitempty"    jsonschema:"free-form category label"`
	Priority    string `json:"priority,omitempty"    jsonschema:"low, medium (default), high, or critical"`
}

// ImprovementsAddOutput is the output for the improvements_add tool.
type ImprovementsAddOutput struct {
	Item *backlog.Item `json:"item" jsonschema:"the created item"`
}

func handleImprovementsAdd(ws *config.Workspace) mcp.ToolHandlerFor[ImprovementsAddInput, ImprovementsAddOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ImprovementsAddInput) (*mcp.CallToolResult, ImprovementsAddOutput, error) {
		store := backlog.NewStore(ws.BacklogPath())
		item, err := store.Add(backlog.Draft{
			Title:       input.Title,
			Description: input.Description,
			Category:    input.Category,
			Priority:    input.Priority,
		})
		if err != nil {
			return nil, ImprovementsAddOutput{}, fmt.Errorf("adding improvement: %w", err)
		}
		return nil, ImprovementsAddOutput{Item: item}, nil
	}
}
