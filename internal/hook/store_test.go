package hook

import (
	"path/filepath"
	"sync"
	"testing"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	dir := t.TempDir()
	return NewConfigStore(
		filepath.Join(dir, "registry.json"),
		filepath.Join(dir, "config.json"),
	)
}

func TestConfigStore_LoadDefaults(t *testing.T) {
	store := newTestConfigStore(t)

	reg, cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(reg.Hooks) == 0 {
		t.Fatal("missing files should yield the builtin registry")
	}
	if !cfg.Enabled(reg.Hooks[0].Name) {
		t.Error("a missing config file should yield the default config with builtins enabled")
	}
}

func TestConfigStore_PatchPersists(t *testing.T) {
	store := newTestConfigStore(t)

	cfg, err := store.Patch(map[string]any{
		"hooks": map[string]any{
			"session-start": map[string]any{"enabled": false},
		},
	})
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if cfg.Enabled("session-start") {
		t.Error("patch did not apply")
	}

	_, reloaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Enabled("session-start") {
		t.Error("patch was not persisted")
	}
}

func TestConfigStore_PatchRejectsUnknownHook(t *testing.T) {
	store := newTestConfigStore(t)

	// A patch mixing a valid change with an unknown hook must be rejected
	// without applying either part.
	_, err := store.Patch(map[string]any{
		"hooks": map[string]any{
			"session-start": map[string]any{"enabled": false},
			"no-such-hook":  map[string]any{"enabled": true},
		},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	_, cfg, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Enabled("session-start") {
		t.Error("rejected patch must leave the config untouched")
	}
}

func TestConfigStore_ConcurrentPatches(t *testing.T) {
	store := newTestConfigStore(t)

	// Seed every builtin hook enabled so each patch flips a distinct one off.
	reg, _, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	names := reg.Names()
	if _, err := store.Patch(map[string]any{
		"hooks": func() map[string]any {
			m := make(map[string]any, len(names))
			for _, name := range names {
				m[name] = map[string]any{"enabled": true}
			}
			return m
		}(),
	}); err != nil {
		t.Fatal(err)
	}

	for round := 0; round < 10; round++ {
		var wg sync.WaitGroup
		for _, name := range names {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				_, err := store.Patch(map[string]any{
					"hooks": map[string]any{
						name: map[string]any{"enabled": false},
					},
				})
				if err != nil {
					t.Errorf("Patch(%s) error = %v", name, err)
				}
			}(name)
		}
		wg.Wait()

		_, cfg, err := store.Load()
		if err != nil {
			t.Fatal(err)
		}
		for _, name := range names {
			if cfg.Enabled(name) {
				t.Fatalf("round %d: lost update, %s still enabled", round, name)
			}
		}

		// Re-enable for the next round.
		m := make(map[string]any, len(names))
		for _, name := range names {
			m[name] = map[string]any{"enabled": true}
		}
		if _, err := store.Patch(map[string]any{"hooks": m}); err != nil {
			t.Fatal(err)
		}
	}
}
