package hook

import "sync"

// ConfigStore provides serialized read-modify-write access to the hook
// registry and configuration files. Concurrent dashboard PUTs go through
// Patch so one client's change is never lost to another's.
type ConfigStore struct {
	registryPath string
	configPath   string
	mu           sync.Mutex
}

// NewConfigStore creates a ConfigStore over the given registry and config
// file paths.
func NewConfigStore(registryPath, configPath string) *ConfigStore {
	return &ConfigStore{registryPath: registryPath, configPath: configPath}
}

// Load reads the registry and the configuration.
func (s *ConfigStore) Load() (*Registry, *Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Patch applies a config patch and persists the result. The load, merge,
// and save happen under the store mutex.
func (s *ConfigStore) Patch(patch map[string]any) (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyPatch(patch, reg); err != nil {
		return nil, err
	}
	if err := SaveConfig(s.configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// load reads both files. Caller holds the mutex.
func (s *ConfigStore) load() (*Registry, *Config, error) {
	reg, err := LoadRegistry(s.registryPath)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := LoadConfig(s.configPath, reg)
	if err != nil {
		return nil, nil, err
	}
	return reg, cfg, nil
}
