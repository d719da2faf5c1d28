// Package export provides formatting and file output for the improvement
// backlog.
//
// This package handles exporting backlog items to formats suitable for
// reports, hand-off documents and data pipelines.
//
// # Supported Formats
//
// The package supports two output formats:
//
//   - JSON: Machine-readable format preserving the full item schema
//   - Markdown: Human-readable report with YAML frontmatter
//
// # JSON Export
//
// JSON export preserves the complete item structure:
//
//	export.FormatJSON(printer, items)             // Write to printer
//	export.WriteJSONFiles(items, "/path/to/dir")  // Write individual files
//
// Each item is written with the full agileai.improvements/v1 schema,
// suitable for consumption by other tools.
//
// # Markdown Export
//
// Markdown export creates a single report document:
//
//	report := export.FormatMarkdown(items)
//
// The report groups items by status, open work first, with priority and
// category noted per item. Example output:
//
//	---
//	schema: agileai.improvements.export/v1
//	date: 2026-08-29
//	total: 4
//	open: 2
//	---
//
//	# Improvement Backlog
//
//	## Open
//
//	- **Add retry to uploader** (high, reliability)
//	  Uploader gives up on the first 5xx; add backoff with jitter.
//
//	## Done
//
//	- **Extract config validation** (medium)
//
// # File Naming
//
// When writing JSON to files, items are named by their ID:
// <item-id>.json.
package export
