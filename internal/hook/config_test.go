package hook

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_EnablesBuiltins(t *testing.T) {
	reg := BuiltinRegistry()
	cfg := DefaultConfig(reg)

	for _, h := range reg.Hooks {
		if !cfg.Enabled(h.Name) {
			t.Errorf("builtin hook %s should be enabled by default", h.Name)
		}
	}
	if cfg.Defaults.TimeoutSeconds != DefaultTimeoutSeconds {
		t.Errorf("TimeoutSeconds = %d, want %d", cfg.Defaults.TimeoutSeconds, DefaultTimeoutSeconds)
	}
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	reg := BuiltinRegistry()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"), reg)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !cfg.Enabled("session-start") {
		t.Error("default config should enable session-start")
	}
}

func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	reg := BuiltinRegistry()
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig(reg)
	cfg.Hooks["session-start"] = Settings{Enabled: false}
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	loaded, err := LoadConfig(path, reg)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Enabled("session-start") {
		t.Error("session-start should stay disabled after round trip")
	}
	if !loaded.Enabled("state-backup") {
		t.Error("state-backup should stay enabled after round trip")
	}
}

func TestConfig_ApplyPatch(t *testing.T) {
	reg := BuiltinRegistry()

	tests := []struct {
		name      string
		patch     map[string]any
		wantField string // empty means patch must succeed
	}{
		{
			name:  "disable hook",
			patch: map[string]any{"hooks": map[string]any{"session-start": map[string]any{"enabled": false}}},
		},
		{
			name:  "set hook timeout",
			patch: map[string]any{"hooks": map[string]any{"state-backup": map[string]any{"timeout_seconds": float64(5)}}},
		},
		{
			name:  "set defaults",
			patch: map[string]any{"defaults": map[string]any{"timeout_seconds": float64(60)}},
		},
		{
			name:      "enabled must be boolean",
			patch:     map[string]any{"hooks": map[string]any{"session-start": map[string]any{"enabled": "yes"}}},
			wantField: "hooks.session-start.enabled",
		},
		{
			name:      "unknown hook rejected",
			patch:     map[string]any{"hooks": map[string]any{"ghost": map[string]any{"enabled": true}}},
			wantField: "hooks.ghost",
		},
		{
			name:      "unknown top-level field rejected",
			patch:     map[string]any{"telemetry": true},
			wantField: "telemetry",
		},
		{
			name:      "fractional timeout rejected",
			patch:     map[string]any{"defaults": map[string]any{"timeout_seconds": 1.5}},
			wantField: "defaults.timeout_seconds",
		},
		{
			name:      "negative timeout rejected",
			patch:     map[string]any{"defaults": map[string]any{"timeout_seconds": float64(-3)}},
			wantField: "defaults.timeout_seconds",
		},
		{
			name:      "hooks must be object",
			patch:     map[string]any{"hooks": []any{"session-start"}},
			wantField: "hooks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(reg)
			err := cfg.ApplyPatch(tt.patch, reg)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ApplyPatch() error = %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ApplyPatch() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestConfig_ApplyPatch_BadPatchLeavesConfigUntouched(t *testing.T) {
	reg := BuiltinRegistry()
	cfg := DefaultConfig(reg)

	patch := map[string]any{
		"hooks": map[string]any{
			"session-start": map[string]any{"enabled": false},
			"ghost":         map[string]any{"enabled": true},
		},
	}
	if err := cfg.ApplyPatch(patch, reg); err == nil {
		t.Fatal("expected validation error")
	}

	// The valid part of the rejected patch must not have been applied.
	if !cfg.Enabled("session-start") {
		t.Error("rejected patch partially applied")
	}
}

func TestConfig_TimeoutResolution(t *testing.T) {
	reg := BuiltinRegistry()
	cfg := DefaultConfig(reg)
	cfg.Defaults.TimeoutSeconds = 30

	h := &Hook{Name: "session-start", TimeoutSeconds: 10}

	// Definition wins over defaults.
	if got := cfg.TimeoutSeconds(h); got != 10 {
		t.Errorf("TimeoutSeconds() = %d, want 10", got)
	}

	// Per-hook config override wins over definition.
	cfg.Hooks["session-start"] = Settings{Enabled: true, TimeoutSeconds: 5}
	if got := cfg.TimeoutSeconds(h); got != 5 {
		t.Errorf("TimeoutSeconds() = %d, want 5", got)
	}

	// Defaults apply when nothing else is set.
	bare := &Hook{Name: "state-backup"}
	cfg.Hooks["state-backup"] = Settings{Enabled: true}
	if got := cfg.TimeoutSeconds(bare); got != 30 {
		t.Errorf("TimeoutSeconds() = %d, want 30", got)
	}
}

func TestConfig_Enabled_UnknownHookDisabled(t *testing.T) {
	cfg := DefaultConfig(BuiltinRegistry())
	if cfg.Enabled("never-registered") {
		t.Error("hooks absent from config must be disabled")
	}
}
