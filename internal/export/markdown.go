// Package export provides formatting and output for backlog items.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/agilebiz/agileai/internal/backlog"
)

// statusOrder lists the report sections, open work first.
var statusOrder = []string{
	backlog.StatusOpen,
	backlog.StatusInProgress,
	backlog.StatusDone,
	backlog.StatusRejected,
}

// statusHeadings maps statuses to their report section titles.
var statusHeadings = map[string]string{
	backlog.StatusOpen:       "Open",
	backlog.StatusInProgress: "In Progress",
	backlog.StatusDone:       "Done",
	backlog.StatusRejected:   "Rejected",
}

// FormatMarkdown formats the backlog as a single markdown report.
// Items are grouped by status in statusOrder; empty groups are omitted.
func FormatMarkdown(items []backlog.Item) string {
	var builder strings.Builder

	writeFrontmatter(&builder, items)
	builder.WriteString("# Improvement Backlog\n")

	for _, status := range statusOrder {
		writeStatusSection(&builder, items, status)
	}

	return builder.String()
}

// writeFrontmatter writes the YAML frontmatter section.
func writeFrontmatter(builder *strings.Builder, items []backlog.Item) {
	open := 0
	for i := range items {
		if items[i].Status == backlog.StatusOpen {
			open++
		}
	}

	builder.WriteString("---\n")
	builder.WriteString("schema: agileai.improvements.export/v1\n")
	fmt.Fprintf(builder, "date: %s\n", time.Now().UTC().Format("2006-01-02"))
	fmt.Fprintf(builder, "total: %d\n", len(items))
	fmt.Fprintf(builder, "open: %d\n", open)
	builder.WriteString("---\n\n")
}

// writeStatusSection writes one status group, skipping empty ones.
func writeStatusSection(builder *strings.Builder, items []backlog.Item, status string) {
	var group []*backlog.Item
	for i := range items {
		if items[i].Status == status {
			group = append(group, &items[i])
		}
	}
	if len(group) == 0 {
		return
	}

	fmt.Fprintf(builder, "\n## %s\n\n", statusHeadings[status])
	for _, item := range group {
		writeItem(builder, item)
	}
}

// writeItem writes a single backlog item as a list entry.
func writeItem(builder *strings.Builder, item *backlog.Item) {
	fmt.Fprintf(builder, "- **%s** (%s", item.Title, item.Priority)
	if item.Category != "" {
		fmt.Fprintf(builder, ", %s", item.Category)
	}
	builder.WriteString(")\n")

	if item.Description != "" {
		fmt.Fprintf(builder, "  %s\n", strings.ReplaceAll(item.Description, "\n", "\n  "))
	}
}
