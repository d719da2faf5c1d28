// Package state manages the project state documents stored under
// .agileai/state/. Three documents exist: runtime (volatile session state),
// persistent (decisions and milestones), and configuration (project
// configuration). Each is a JSON object read and written as a whole.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/agilebiz/agileai/internal/fsutil"
)

// Kind identifies one of the project state documents.
type Kind string

// The three state documents.
const (
	KindRuntime       Kind = "runtime"
	KindPersistent    Kind = "persistent"
	KindConfiguration Kind = "configuration"
)

// ErrUnknownKind is returned for a state kind outside the known set.
var ErrUnknownKind = errors.New("unknown state kind")

// Kinds lists all state document kinds in stable order.
func Kinds() []Kind {
	return []Kind{KindRuntime, KindPersistent, KindConfiguration}
}

// ParseKind validates a state kind string. The whitelist doubles as the
// path-traversal guard for the dashboard's {kind} URL parameter.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindRuntime, KindPersistent, KindConfiguration:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// KindForPath maps a state file path back to its kind. Temp files and
// anything outside the known set return ErrUnknownKind.
func KindForPath(path string) (Kind, error) {
	base := filepath.Base(path)
	name, ok := strings.CutSuffix(base, ".json")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, base)
	}
	return ParseKind(name)
}

// Document is a project state document. Top-level keys are opaque to the
// store except for updated_at, which the store maintains.
type Document map[string]any

// Store provides serialized read-modify-write access to the state files.
// A single mutex guards all three documents; writes are atomic
// (temp file + rename) so readers never observe partial JSON.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a Store for the given state directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the state directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for a state kind.
func (s *Store) Path(kind Kind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}

// Get returns the document for the given kind.
// A missing file yields the default empty shape, not an error.
func (s *Store) Get(kind Kind) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(kind)
}

// Merge shallow-merges patch into the document for the given kind and
// persists the result. Semantics follow the dashboard contract:
//   - only top-level keys are merged
//   - a null value deletes the key
//   - updated_at is set to the write time in UTC
//
// Returns the merged document.
func (s *Store) Merge(kind Kind, patch Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(kind)
	if err != nil {
		return nil, err
	}

	for key, value := range patch {
		if value == nil {
			delete(doc, key)
			continue
		}
		doc[key] = value
	}
	doc["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	if err := s.write(kind, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Replace overwrites the document for the given kind entirely.
// Used by init to seed defaults.
func (s *Store) Replace(kind Kind, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(kind, doc)
}

// read loads a document, falling back to the default shape when the file
// is absent. Caller holds the mutex.
func (s *Store) read(kind Kind) (Document, error) {
	data, err := os.ReadFile(s.Path(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDocument(kind), nil
		}
		return nil, fmt.Errorf("reading %s state: %w", kind, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s state: %w", kind, err)
	}
	if doc == nil {
		doc = DefaultDocument(kind)
	}
	return doc, nil
}

// write persists a document atomically. Caller holds the mutex.
func (s *Store) write(kind Kind, doc Document) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s state: %w", kind, err)
	}
	data = append(data, '\n')

	if err := fsutil.WriteFileAtomic(s.Path(kind), data, 0o644); err != nil {
		return fmt.Errorf("writing %s state: %w", kind, err)
	}
	return nil
}

// DefaultDocument returns the empty shape for a state kind, matching what
// the dashboard serves when no file exists yet.
func DefaultDocument(kind Kind) Document {
	switch kind {
	case KindRuntime:
		return Document{
			"session":       map[string]any{},
			"active_agents": []any{},
		}
	case KindPersistent:
		return Document{
			"decisions":  []any{},
			"milestones": []any{},
		}
	case KindConfiguration:
		return Document{
			"project_name": "",
			"settings":     map[string]any{},
		}
	}
	return Document{}
}
