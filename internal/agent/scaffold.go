package agent

import (
	"fmt"
	"strings"
)

// ScaffoldOptions holds the fields for a new persona. This is the whole
// input surface of agents create: one flag-driven code path instead of a
// conversational flow.
type ScaffoldOptions struct {
	Name        string
	Title       string
	Description string
	Model       string
	Tools       []string
	Tags        []string
	// From names an existing persona to copy the body and defaults from.
	From string
}

// Scaffold builds a new persona from options, optionally copying an
// existing persona named by From. The result is validated but not
// persisted; callers write it through the Store.
func Scaffold(store *Store, opts ScaffoldOptions) (*Persona, error) {
	p := &Persona{
		Name:        opts.Name,
		Title:       opts.Title,
		Description: opts.Description,
		Model:       opts.Model,
		Tools:       opts.Tools,
		Tags:        opts.Tags,
		Version:     1,
	}

	if opts.From != "" {
		base, err := store.Get(opts.From)
		if err != nil {
			return nil, fmt.Errorf("copying from %s: %w", opts.From, err)
		}
		p.Body = base.Body
		if p.Title == "" {
			p.Title = base.Title
		}
		if p.Description == "" {
			p.Description = base.Description
		}
		if p.Model == "" {
			p.Model = base.Model
		}
		if len(p.Tools) == 0 {
			p.Tools = append([]string(nil), base.Tools...)
		}
		if len(p.Tags) == 0 {
			p.Tags = append([]string(nil), base.Tags...)
		}
	}

	if p.Title == "" && p.Name != "" {
		p.Title = defaultTitle(p.Name)
	}
	if p.Body == "" {
		p.Body = starterBody(p)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// defaultTitle derives "Code Review Agent" from "code-review".
func defaultTitle(name string) string {
	words := strings.Split(name, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ") + " Agent"
}

// starterBody produces a minimal prompt skeleton for a new persona.
func starterBody(p *Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the %s for this project.", p.Title)
	if p.Description != "" {
		fmt.Fprintf(&b, " %s.", strings.TrimRight(p.Description, "."))
	}
	b.WriteString("\n\n## Responsibilities\n\n- \n\n## Working style\n\n- \n\n## Boundaries\n\n- \n")
	return b.String()
}
