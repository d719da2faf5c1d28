package agent

import (
	"embed"
	"sort"
	"strings"
)

//go:embed personas/*.md
var builtinFS embed.FS

// Builtins returns the starter persona catalog shipped with agileai.
// Files that fail to parse are skipped; the embedded catalog is covered
// by tests so that never happens in a release build.
func Builtins() []*Persona {
	entries, err := builtinFS.ReadDir("personas")
	if err != nil {
		return nil
	}

	var personas []*Persona
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		data, err := builtinFS.ReadFile("personas/" + entry.Name())
		if err != nil {
			continue
		}
		p, err := Parse(string(data))
		if err != nil {
			continue
		}
		p.Source = SourceBuiltin
		personas = append(personas, p)
	}

	sort.Slice(personas, func(i, j int) bool {
		return personas[i].Name < personas[j].Name
	})
	return personas
}
