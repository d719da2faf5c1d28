package agent

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Persona sources.
const (
	SourceBuiltin   = "builtin"
	SourceWorkspace = "workspace"
)

// ErrPersonaNotFound is returned when a named persona does not exist.
var ErrPersonaNotFound = errors.New("persona not found")

// ErrPersonaExists is returned by Write when the persona file already
// exists and force is false.
var ErrPersonaExists = errors.New("persona already exists")

// ListStats counts what List encountered while scanning the directory.
type ListStats struct {
	Total   int // Markdown files found
	Parsed  int // successfully parsed personas
	Skipped int // unparseable or invalid files
}

// Store provides access to workspace personas, overlaying the builtin
// starter catalog. A workspace persona with the same name shadows the
// builtin.
type Store struct {
	dir string
}

// NewStore creates a Store for the given agents directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the persona directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for a persona name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".md")
}

// List returns all personas sorted by name, workspace entries shadowing
// builtins. Unparseable files are skipped and counted.
func (s *Store) List() ([]*Persona, *ListStats, error) {
	stats := &ListStats{}
	byName := make(map[string]*Persona)

	for _, p := range Builtins() {
		byName[p.Name] = p
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("reading agents directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		stats.Total++

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			stats.Skipped++
			continue
		}
		p, err := Parse(string(data))
		if err != nil || p.Validate() != nil {
			stats.Skipped++
			continue
		}
		// The file name is authoritative for lookup; skip files whose
		// frontmatter disagrees to keep Get and List consistent.
		if p.Name != strings.TrimSuffix(entry.Name(), ".md") {
			stats.Skipped++
			continue
		}
		stats.Parsed++
		p.Source = SourceWorkspace
		byName[p.Name] = p
	}

	personas := make([]*Persona, 0, len(byName))
	for _, p := range byName {
		personas = append(personas, p)
	}
	sort.Slice(personas, func(i, j int) bool {
		return personas[i].Name < personas[j].Name
	})
	return personas, stats, nil
}

// Get returns the persona with the given name, preferring the workspace
// copy over a builtin.
func (s *Store) Get(name string) (*Persona, error) {
	data, err := os.ReadFile(s.Path(name))
	if err == nil {
		p, parseErr := Parse(string(data))
		if parseErr != nil {
			return nil, fmt.Errorf("parsing persona %s: %w", name, parseErr)
		}
		// Same rule as List: the file name is authoritative. A file whose
		// frontmatter disagrees is ignored, leaving any builtin visible.
		if p.Name == name {
			p.Source = SourceWorkspace
			return p, nil
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading persona %s: %w", name, err)
	}

	for _, p := range Builtins() {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPersonaNotFound, name)
}

// Write validates and persists a persona to the workspace.
// If force is false and the file exists, returns ErrPersonaExists.
func (s *Store) Write(p *Persona, force bool) error {
	if err := p.Validate(); err != nil {
		return err
	}

	path := s.Path(p.Name)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrPersonaExists, p.Name)
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating agents directory: %w", err)
	}

	data, err := p.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing persona %s: %w", p.Name, err)
	}
	return nil
}

// Remove deletes a workspace persona. Builtins cannot be removed.
func (s *Store) Remove(name string) error {
	err := os.Remove(s.Path(name))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrPersonaNotFound, name)
	}
	return err
}

// SeedBuiltins writes any builtin personas missing from the workspace, so
// a fresh project starts with editable copies of the starter catalog.
// Existing files are never overwritten. Returns the names written.
func (s *Store) SeedBuiltins() ([]string, error) {
	var seeded []string
	for _, p := range Builtins() {
		err := s.Write(p, false)
		if errors.Is(err, ErrPersonaExists) {
			continue
		}
		if err != nil {
			return seeded, err
		}
		seeded = append(seeded, p.Name)
	}
	return seeded, nil
}
