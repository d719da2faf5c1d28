// Package backlog manages the improvement backlog stored in
// .agileai/improvements/backlog.json and served by /api/improvements.
package backlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agilebiz/agileai/internal/fsutil"
)

// SchemaVersion is the current schema version for the backlog file.
const SchemaVersion = "agileai.improvements/v1"

// Priority levels, lowest to highest.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Item statuses. done and rejected are terminal.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusRejected   = "rejected"
)

// Errors returned by the store.
var (
	ErrItemNotFound   = errors.New("improvement not found")
	ErrTerminalStatus = errors.New("item is in a terminal status")
	ErrInvalidInput   = errors.New("invalid input")
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known status.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone, StatusRejected:
		return true
	}
	return false
}

// terminal reports whether a status permits no further transitions.
func terminal(s string) bool {
	return s == StatusDone || s == StatusRejected
}

// Item is a single improvement backlog entry.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Draft holds the caller-supplied fields for a new item.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// Patch holds optional updates to an existing item. Nil fields are
// left unchanged.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Filter narrows List results. Empty fields match everything.
type Filter struct {
	Status   string
	Priority string
}

// backlogFile is the on-disk shape.
type backlogFile struct {
	Schema string `json:"schema"`
	Items  []Item `json:"items"`
}

// Store provides serialized access to the backlog file.
type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewStore creates a Store backed by the given file.
func NewStore(path string) *Store {
	return &Store{path: path, now: func() time.Time { return time.Now().UTC() }}
}

// Add validates a draft and appends a new open item.
func (s *Store) Add(d Draft) (*Item, error) {
	if strings.TrimSpace(d.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if !ValidPriority(d.Priority) {
		return nil, fmt.Errorf("%w: priority %q", ErrInvalidInput, d.Priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return nil, err
	}

	now := s.now()
	item := Item{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Category:    d.Category,
		Priority:    d.Priority,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	file.Items = append(file.Items, item)

	if err := s.write(file); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns items matching the filter, newest first.
func (s *Store) List(f Filter) ([]Item, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, f.Status)
	}
	if f.Priority != "" && !ValidPriority(f.Priority) {
		return nil, fmt.Errorf("%w: priority %q", ErrInvalidInput, f.Priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(file.Items))
	for _, item := range file.Items {
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if f.Priority != "" && item.Priority != f.Priority {
			continue
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[j].CreatedAt.Before(items[i].CreatedAt)
	})
	return items, nil
}

// Get returns the item with the given ID.
func (s *Store) Get(id string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range file.Items {
		if file.Items[i].ID == id {
			item := file.Items[i]
			return &item, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// Update applies a patch to an existing item. Status transitions out of a
// terminal status are rejected with ErrTerminalStatus.
func (s *Store) Update(id string, p Patch) (*Item, error) {
	if p.Priority != nil && !ValidPriority(*p.Priority) {
		return nil, fmt.Errorf("%w: priority %q", ErrInvalidInput, *p.Priority)
	}
	if p.Status != nil && !ValidStatus(*p.Status) {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, *p.Status)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return nil, err
	}

	for i := range file.Items {
		if file.Items[i].ID != id {
			continue
		}
		item := &file.Items[i]

		if p.Status != nil && *p.Status != item.Status && terminal(item.Status) {
			return nil, fmt.Errorf("%w: %s is %s", ErrTerminalStatus, id, item.Status)
		}

		if p.Title != nil {
			item.Title = strings.TrimSpace(*p.Title)
		}
		if p.Description != nil {
			item.Description = *p.Description
		}
		if p.Category != nil {
			item.Category = *p.Category
		}
		if p.Priority != nil {
			item.Priority = *p.Priority
		}
		if p.Status != nil {
			item.Status = *p.Status
		}
		item.UpdatedAt = s.now()

		if err := s.write(file); err != nil {
			return nil, err
		}
		updated := *item
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// Remove deletes an item.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return err
	}

	for i := range file.Items {
		if file.Items[i].ID == id {
			file.Items = append(file.Items[:i], file.Items[i+1:]...)
			return s.write(file)
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// read loads the backlog file, defaulting to an empty document.
// Caller holds the mutex.
func (s *Store) read() (*backlogFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &backlogFile{Schema: SchemaVersion}, nil
		}
		return nil, fmt.Errorf("reading backlog: %w", err)
	}

	var file backlogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing backlog: %w", err)
	}
	return &file, nil
}

// write persists the backlog file. Caller holds the mutex.
func (s *Store) write(file *backlogFile) error {
	if file.Schema == "" {
		file.Schema = SchemaVersion
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backlog: %w", err)
	}
	data = append(data, '\n')

	if err := fsutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing backlog: %w", err)
	}
	return nil
}
