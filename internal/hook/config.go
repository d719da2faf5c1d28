package hook

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/agilebiz/agileai/internal/fsutil"
)

// ConfigSchemaVersion is the current schema version for hook configuration.
const ConfigSchemaVersion = "agileai.hooks.config/v1"

// Default limits applied when the config file does not override them.
const (
	DefaultTimeoutSeconds = 30
	DefaultMaxOutputBytes = 64 * 1024
)

// ErrHookDisabled is returned when a disabled hook is invoked.
var ErrHookDisabled = errors.New("hook is disabled")

// ValidationError reports a rejected config patch.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Defaults holds limits applied to hooks without per-hook overrides.
type Defaults struct {
	TimeoutSeconds int `json:"timeout_seconds"`
	MaxOutputBytes int `json:"max_output_bytes"`
}

// Settings holds the per-hook configuration.
type Settings struct {
	Enabled        bool `json:"enabled"`
	TimeoutSeconds int  `json:"timeout_seconds,omitempty"`
}

// Config is the hook configuration document stored in config.json.
type Config struct {
	Schema   string              `json:"schema"`
	Defaults Defaults            `json:"defaults"`
	Hooks    map[string]Settings `json:"hooks"`
}

// DefaultConfig returns the configuration a fresh workspace starts with:
// every builtin hook enabled with default limits.
func DefaultConfig(reg *Registry) *Config {
	cfg := &Config{
		Schema: ConfigSchemaVersion,
		Defaults: Defaults{
			TimeoutSeconds: DefaultTimeoutSeconds,
			MaxOutputBytes: DefaultMaxOutputBytes,
		},
		Hooks: make(map[string]Settings, len(reg.Hooks)),
	}
	for _, h := range reg.Hooks {
		cfg.Hooks[h.Name] = Settings{Enabled: true}
	}
	return cfg
}

// LoadConfig reads the config file. A missing file yields the default
// configuration derived from the registry.
func LoadConfig(path string, reg *Registry) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(reg), nil
		}
		return nil, fmt.Errorf("reading hook config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing hook config: %w", err)
	}
	if cfg.Hooks == nil {
		cfg.Hooks = make(map[string]Settings)
	}
	if cfg.Defaults.TimeoutSeconds <= 0 {
		cfg.Defaults.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Defaults.MaxOutputBytes <= 0 {
		cfg.Defaults.MaxOutputBytes = DefaultMaxOutputBytes
	}
	return &cfg, nil
}

// SaveConfig writes the config file.
func SaveConfig(path string, cfg *Config) error {
	if cfg.Schema == "" {
		cfg.Schema = ConfigSchemaVersion
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding hook config: %w", err)
	}
	data = append(data, '\n')

	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("writing hook config: %w", err)
	}
	return nil
}

// ApplyPatch merges a loosely-typed patch (as received by the dashboard
// PUT handler) into the config. Field types are checked before anything
// is mutated and hook names are validated against the registry, so a bad
// patch leaves the config untouched.
//
// Accepted shape:
//
//	{
//	  "defaults": {"timeout_seconds": 30, "max_output_bytes": 65536},
//	  "hooks": {"session-start": {"enabled": false, "timeout_seconds": 5}}
//	}
func (c *Config) ApplyPatch(patch map[string]any, reg *Registry) error {
	staged := *c
	staged.Hooks = make(map[string]Settings, len(c.Hooks))
	for name, settings := range c.Hooks {
		staged.Hooks[name] = settings
	}

	for key, value := range patch {
		switch key {
		case "defaults":
			if err := staged.patchDefaults(value); err != nil {
				return err
			}
		case "hooks":
			if err := staged.patchHooks(value, reg); err != nil {
				return err
			}
		case "schema":
			// Ignored: the store owns the schema field.
		default:
			return &ValidationError{Field: key, Message: "unknown field"}
		}
	}

	*c = staged
	return nil
}

func (c *Config) patchDefaults(value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return &ValidationError{Field: "defaults", Message: "must be an object"}
	}
	for key, v := range m {
		switch key {
		case "timeout_seconds":
			n, err := positiveInt(v)
			if err != nil {
				return &ValidationError{Field: "defaults.timeout_seconds", Message: err.Error()}
			}
			c.Defaults.TimeoutSeconds = n
		case "max_output_bytes":
			n, err := positiveInt(v)
			if err != nil {
				return &ValidationError{Field: "defaults.max_output_bytes", Message: err.Error()}
			}
			c.Defaults.MaxOutputBytes = n
		default:
			return &ValidationError{Field: "defaults." + key, Message: "unknown field"}
		}
	}
	return nil
}

func (c *Config) patchHooks(value any, reg *Registry) error {
	m, ok := value.(map[string]any)
	if !ok {
		return &ValidationError{Field: "hooks", Message: "must be an object"}
	}
	for name, raw := range m {
		if _, err := reg.Get(name); err != nil {
			return &ValidationError{Field: "hooks." + name, Message: "not in registry"}
		}
		entry, ok := raw.(map[string]any)
		if !ok {
			return &ValidationError{Field: "hooks." + name, Message: "must be an object"}
		}

		settings := c.Hooks[name]
		for key, v := range entry {
			switch key {
			case "enabled":
				b, ok := v.(bool)
				if !ok {
					return &ValidationError{Field: "hooks." + name + ".enabled", Message: "must be a boolean"}
				}
				settings.Enabled = b
			case "timeout_seconds":
				n, err := positiveInt(v)
				if err != nil {
					return &ValidationError{Field: "hooks." + name + ".timeout_seconds", Message: err.Error()}
				}
				settings.TimeoutSeconds = n
			default:
				return &ValidationError{Field: "hooks." + name + "." + key, Message: "unknown field"}
			}
		}
		c.Hooks[name] = settings
	}
	return nil
}

// Enabled reports whether the named hook is enabled. Hooks absent from the
// config default to disabled: only init and explicit enables turn hooks on.
func (c *Config) Enabled(name string) bool {
	settings, ok := c.Hooks[name]
	return ok && settings.Enabled
}

// TimeoutSeconds resolves the effective timeout for a hook: per-hook config
// override, then the hook definition, then the config defaults.
func (c *Config) TimeoutSeconds(h *Hook) int {
	if settings, ok := c.Hooks[h.Name]; ok && settings.TimeoutSeconds > 0 {
		return settings.TimeoutSeconds
	}
	if h.TimeoutSeconds > 0 {
		return h.TimeoutSeconds
	}
	return c.Defaults.TimeoutSeconds
}

// positiveInt coerces a JSON number into a positive int.
// encoding/json decodes numbers as float64; reject fractions.
func positiveInt(v any) (int, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, errors.New("must be a number")
	}
	n := int(f)
	if float64(n) != f {
		return 0, errors.New("must be an integer")
	}
	if n <= 0 {
		return 0, errors.New("must be positive")
	}
	return n, nil
}
