package integrations

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/agilebiz/agileai/internal/envfile"
)

// Setup merges the named server's block into the project .mcp.json and
// appends placeholders for its env keys to the .env file. Entries for
// other servers — including ones agileai never configured — are
// preserved verbatim. Returns the env keys that were newly added.
func Setup(mcpPath, envPath, name string) ([]string, error) {
	server, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	doc, err := readMCPConfig(mcpPath)
	if err != nil {
		return nil, err
	}

	block := map[string]any{}
	if server.URL != "" {
		block["type"] = "http"
		block["url"] = server.URL
	} else {
		block["command"] = server.Command
		if len(server.Args) > 0 {
			args := make([]any, len(server.Args))
			for i, a := range server.Args {
				args[i] = a
			}
			block["args"] = args
		}
	}
	if len(server.EnvKeys) > 0 {
		env := map[string]any{}
		for _, key := range server.EnvKeys {
			env[key] = "${" + key + "}"
		}
		block["env"] = env
	}
	doc.Servers[name] = block

	if err := writeMCPConfig(mcpPath, doc); err != nil {
		return nil, err
	}

	if len(server.EnvKeys) == 0 {
		return nil, nil
	}
	added, err := envfile.EnsureKeys(envPath, server.EnvKeys)
	if err != nil {
		return nil, err
	}
	return added, nil
}

// Remove deletes the named server's block from .mcp.json. The .env file
// is left alone: keys may be shared with other tooling.
func Remove(mcpPath, name string) error {
	if _, err := Lookup(name); err != nil {
		return err
	}

	doc, err := readMCPConfig(mcpPath)
	if err != nil {
		return err
	}
	if _, ok := doc.Servers[name]; !ok {
		return fmt.Errorf("%s is not configured in %s", name, mcpPath)
	}
	delete(doc.Servers, name)
	return writeMCPConfig(mcpPath, doc)
}

// Status describes one catalog server's configuration state.
type Status struct {
	Server     Server   `json:"server"`
	Configured bool     `json:"configured"`
	MissingEnv []string `json:"missing_env,omitempty"`
}

// List reports the configuration status of every catalog server against
// the project's .mcp.json and .env files. An env key counts as present
// when it is set in the process environment or non-empty in .env.
func List(mcpPath, envPath string) ([]Status, error) {
	doc, err := readMCPConfig(mcpPath)
	if err != nil {
		return nil, err
	}
	envKeys, err := envfile.Keys(envPath)
	if err != nil {
		return nil, err
	}

	var statuses []Status
	for _, server := range Catalog() {
		_, configured := doc.Servers[server.Name]
		st := Status{Server: server, Configured: configured}
		for _, key := range server.EnvKeys {
			if os.Getenv(key) != "" {
				continue
			}
			if set, ok := envKeys[key]; ok && set {
				continue
			}
			st.MissingEnv = append(st.MissingEnv, key)
		}
		sort.Strings(st.MissingEnv)
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// mcpConfig is the subset of .mcp.json agileai understands. Unknown
// top-level fields round-trip untouched via Extra.
type mcpConfig struct {
	Servers map[string]any
	Extra   map[string]json.RawMessage
}

func readMCPConfig(path string) (*mcpConfig, error) {
	doc := &mcpConfig{
		Servers: map[string]any{},
		Extra:   map[string]json.RawMessage{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for key, value := range raw {
		if key == "mcpServers" {
			if err := json.Unmarshal(value, &doc.Servers); err != nil {
				return nil, fmt.Errorf("parsing %s mcpServers: %w", path, err)
			}
			continue
		}
		doc.Extra[key] = value
	}
	return doc, nil
}

func writeMCPConfig(path string, doc *mcpConfig) error {
	out := map[string]any{"mcpServers": doc.Servers}
	for key, value := range doc.Extra {
		out[key] = value
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
