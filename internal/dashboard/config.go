package dashboard

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the dashboard server settings.
type Config struct {
	Host                string   `koanf:"host"`
	Port                int      `koanf:"port"`
	ReadTimeoutSeconds  int      `koanf:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `koanf:"write_timeout_seconds"`
	CORSOrigins         []string `koanf:"cors_origins"`
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig loads the server configuration.
// Precedence (highest to lowest): AGILEAI_ env vars > config file > defaults.
// A missing config file is not an error.
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"host":                  "127.0.0.1",
		"port":                  3001,
		"read_timeout_seconds":  10,
		"write_timeout_seconds": 0,
	}, "."), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("error reading config file %s: %w", path, err)
			}
		}
	}

	// AGILEAI_DASHBOARD_PORT -> port, AGILEAI_DASHBOARD_CORS_ORIGINS -> cors_origins
	if err := k.Load(env.Provider("AGILEAI_DASHBOARD_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "AGILEAI_DASHBOARD_"))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}
