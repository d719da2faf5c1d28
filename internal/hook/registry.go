// Package hook provides the hook registry, per-hook configuration, the
// execution runner, and performance metrics backing the dashboard's
// /api/hooks surface.
package hook

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/agilebiz/agileai/internal/fsutil"
)

// RegistrySchemaVersion is the current schema version for the hook registry.
const RegistrySchemaVersion = "agileai.hooks.registry/v1"

// Hook sources.
const (
	SourceBuiltin = "builtin"
	SourceUser    = "user"
)

// ErrHookNotFound is returned when a named hook is not in the registry.
var ErrHookNotFound = errors.New("hook not found")

// nameRE constrains hook names to lowercase kebab-case.
var nameRE = regexp.MustCompile(`^[a-z][a-z0-9-]{1,63}$`)

// Hook is a single registered hook definition.
type Hook struct {
	Name           string   `json:"name"`
	Event          string   `json:"event"`
	Command        string   `json:"command"`
	Args           []string `json:"args,omitempty"`
	Description    string   `json:"description,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"`
	Source         string   `json:"source"`
}

// Validate checks a hook definition for structural problems.
func (h *Hook) Validate() error {
	var fields []string
	if !nameRE.MatchString(h.Name) {
		fields = append(fields, "name")
	}
	if h.Event == "" {
		fields = append(fields, "event")
	}
	if h.Command == "" {
		fields = append(fields, "command")
	}
	if h.TimeoutSeconds < 0 {
		fields = append(fields, "timeout_seconds")
	}
	if h.Source != SourceBuiltin && h.Source != SourceUser {
		fields = append(fields, "source")
	}
	if len(fields) > 0 {
		return fmt.Errorf("invalid hook definition: %v", fields)
	}
	return nil
}

// Registry holds the hook definitions stored in registry.json.
type Registry struct {
	Schema string `json:"schema"`
	Hooks  []Hook `json:"hooks"`
}

// LoadRegistry reads the registry file. A missing file yields the builtin
// registry so a fresh workspace works before init has written anything.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return BuiltinRegistry(), nil
		}
		return nil, fmt.Errorf("reading hook registry: %w", err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parsing hook registry: %w", err)
	}
	return &reg, nil
}

// SaveRegistry writes the registry file with stable hook ordering.
func SaveRegistry(path string, reg *Registry) error {
	if reg.Schema == "" {
		reg.Schema = RegistrySchemaVersion
	}
	sort.Slice(reg.Hooks, func(i, j int) bool {
		return reg.Hooks[i].Name < reg.Hooks[j].Name
	})

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding hook registry: %w", err)
	}
	data = append(data, '\n')

	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("writing hook registry: %w", err)
	}
	return nil
}

// Get returns the hook with the given name.
func (r *Registry) Get(name string) (*Hook, error) {
	for i := range r.Hooks {
		if r.Hooks[i].Name == name {
			return &r.Hooks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrHookNotFound, name)
}

// Names returns all hook names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Hooks))
	for _, h := range r.Hooks {
		names = append(names, h.Name)
	}
	sort.Strings(names)
	return names
}

// BuiltinRegistry returns the hooks every workspace starts with.
// session-start feeds Claude Code session context; the rest keep the
// dashboard's state and backlog views current as agents work.
func BuiltinRegistry() *Registry {
	return &Registry{
		Schema: RegistrySchemaVersion,
		Hooks: []Hook{
			{
				Name:           "session-start",
				Event:          "user_prompt_submit",
				Command:        "agileai",
				Args:           []string{"prime", "--json"},
				Description:    "Inject workspace context at the start of a Claude Code session",
				TimeoutSeconds: 10,
				Source:         SourceBuiltin,
			},
			{
				Name:           "state-backup",
				Event:          "post_tool_use",
				Command:        "agileai",
				Args:           []string{"state", "show", "--json"},
				Description:    "Snapshot project state after tool activity",
				TimeoutSeconds: 10,
				Source:         SourceBuiltin,
			},
			{
				Name:           "improvement-capture",
				Event:          "stop",
				Command:        "agileai",
				Args:           []string{"improve", "list", "--status", "open", "--json"},
				Description:    "Surface open improvement items when a session ends",
				TimeoutSeconds: 10,
				Source:         SourceBuiltin,
			},
		},
	}
}
