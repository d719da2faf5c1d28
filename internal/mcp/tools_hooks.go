package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agilebiz/agileai/internal/config"
	"github.com/agilebiz/agileai/internal/hook"
)

// --- hooks_status tool ---

// HookStatus is one hook's definition plus its effective configuration.
type HookStatus struct {
	Name           string `json:"name"                  jsonschema:"hook name"`
	Event          string `json:"event"                 jsonschema:"lifecycle event the hook fires on"`
	Enabled        bool   `json:"enabled"               jsonschema:"whether the hook is enabled"`
	TimeoutSeconds int    `json:"timeout_seconds"       jsonschema:"effective timeout in seconds"`
	Description    string `json:"description,omitempty" jsonschema:"what the hook does"`
	Source         string `json:"source"                jsonschema:"builtin or user"`
}

// HooksStatusInput is the input for the hooks_status tool (no parameters needed).
type HooksStatusInput struct{}

// HooksStatusOutput is the output for the hooks_status tool.
type HooksStatusOutput struct {
	Hooks []HookStatus `json:"hooks" jsonschema:"all registered hooks"`
}

func handleHooksStatus(ws *config.Workspace) mcp.ToolHandlerFor[HooksStatusInput, HooksStatusOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ HooksStatusInput) (*mcp.CallToolResult, HooksStatusOutput, error) {
		reg, cfg, err := loadHookState(ws)
		if err != nil {
			return nil, HooksStatusOutput{}, err
		}

		out := HooksStatusOutput{Hooks: make([]HookStatus, 0, len(reg.Hooks))}
		for i := range reg.Hooks {
			h := &reg.Hooks[i]
			out.Hooks = append(out.Hooks, HookStatus{
				Name:           h.Name,
				Event:          h.Event,
				Enabled:        cfg.Enabled(h.Name),
				TimeoutSeconds: cfg.TimeoutSeconds(h),
				Description:    h.Description,
				Source:         h.Source,
			})
		}
		return nil, out, nil
	}
}

// --- hooks_test tool ---

// HooksTestInput is the input for the hooks_test tool.
type HooksTestInput struct {
	Name    string `json:"name"              jsonschema:"hook name to run"`
	Payload string `json:"payload,omitempty" jsonschema:"JSON payload passed on the hook's stdin"`
}

// HooksTestOutput is the output for the hooks_test tool.
type HooksTestOutput struct {
	Result *hook.Result `json:"result" jsonschema:"captured execution result"`
}

func handleHooksTest(ws *config.Workspace) mcp.ToolHandlerFor[HooksTestInput, HooksTestOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input HooksTestInput) (*mcp.CallToolResult, HooksTestOutput, error) {
		if input.Name == "" {
			return nil, HooksTestOutput{}, fmt.Errorf("name is required")
		}
		if input.Payload != "" && !json.Valid([]byte(input.Payload)) {
			return nil, HooksTestOutput{}, fmt.Errorf("payload is not valid JSON")
		}

		reg, cfg, err := loadHookState(ws)
		if err != nil {
			return nil, HooksTestOutput{}, err
		}
		h, err := reg.Get(input.Name)
		if err != nil {
			return nil, HooksTestOutput{}, err
		}

		metrics := hook.NewMetricsStore(ws.HookMetricsPath())
		runner := hook.NewRunner(cfg, metrics, nil)
		result, err := runner.Run(ctx, h, []byte(input.Payload))
		if err != nil {
			return nil, HooksTestOutput{}, fmt.Errorf("running hook: %w", err)
		}
		return nil, HooksTestOutput{Result: result}, nil
	}
}

func loadHookState(ws *config.Workspace) (*hook.Registry, *hook.Config, error) {
	reg, err := hook.LoadRegistry(ws.HookRegistryPath())
	if err != nil {
		return nil, nil, fmt.Errorf("loading hook registry: %w", err)
	}
	cfg, err := hook.LoadConfig(ws.HookConfigPath(), reg)
	if err != nil {
		return nil, nil, fmt.Errorf("loading hook config: %w", err)
	}
	return reg, cfg, nil
}
