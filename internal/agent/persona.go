// Package agent manages the persona registry: Markdown prompt files with
// YAML frontmatter that Claude Code loads as specialized assistants.
package agent

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Known model aliases a persona may request. "inherit" defers to the
// session's model.
var knownModels = map[string]bool{
	"":        true, // unset defers to inherit
	"inherit": true,
	"haiku":   true,
	"sonnet":  true,
	"opus":    true,
}

// nameRE constrains persona names to lowercase kebab-case.
var nameRE = regexp.MustCompile(`^[a-z][a-z0-9-]{1,63}$`)

// Persona is a single agent persona: frontmatter metadata plus the
// Markdown prompt body.
type Persona struct {
	Name        string   `yaml:"name" json:"name"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Model       string   `yaml:"model,omitempty" json:"model,omitempty"`
	Tools       []string `yaml:"tools,omitempty" json:"tools,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Version     int      `yaml:"version,omitempty" json:"version,omitempty"`

	// Body is the prompt text after the frontmatter.
	Body string `yaml:"-" json:"body"`

	// Source records where the persona was loaded from:
	// "builtin" or "workspace".
	Source string `yaml:"-" json:"source"`
}

// ValidationError reports why a persona was rejected.
type ValidationError struct {
	Fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid persona: %s", strings.Join(e.Fields, ", "))
}

// Validate checks a persona for structural problems.
func (p *Persona) Validate() error {
	var fields []string
	if !nameRE.MatchString(p.Name) {
		fields = append(fields, "name")
	}
	if strings.TrimSpace(p.Title) == "" {
		fields = append(fields, "title")
	}
	if !knownModels[p.Model] {
		fields = append(fields, "model")
	}
	if strings.TrimSpace(p.Body) == "" {
		fields = append(fields, "body")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Parse reads a persona from raw Markdown with YAML frontmatter.
func Parse(raw string) (*Persona, error) {
	frontmatter, body := splitFrontmatter(raw)
	if frontmatter == "" {
		return nil, fmt.Errorf("persona is missing frontmatter")
	}

	var p Persona
	if err := yaml.Unmarshal([]byte(frontmatter), &p); err != nil {
		return nil, fmt.Errorf("invalid frontmatter: %w", err)
	}
	p.Body = strings.TrimSpace(body)
	return &p, nil
}

// Render serializes the persona back to Markdown with frontmatter.
func (p *Persona) Render() ([]byte, error) {
	meta, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(p.Body))
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// splitFrontmatter separates YAML frontmatter from the body.
// Frontmatter is delimited by --- at the start and end.
func splitFrontmatter(raw string) (frontmatter, body string) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "---") {
		return "", raw
	}

	rest := raw[3:] // skip opening ---
	before, after, ok := strings.Cut(rest, "\n---")
	if !ok {
		return "", raw
	}

	return strings.TrimSpace(before), strings.TrimSpace(after)
}
