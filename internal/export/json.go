// Package export provides formatting and output for backlog items.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agilebiz/agileai/internal/backlog"
	"github.com/agilebiz/agileai/internal/output"
)

// FormatJSON outputs the items as a JSON array to the printer.
func FormatJSON(printer *output.Printer, items []backlog.Item) error {
	return printer.WriteJSON(items)
}

// WriteJSONFiles writes each item as a separate JSON file to the output directory.
// Files are named <item-id>.json.
func WriteJSONFiles(items []backlog.Item, dir string) error {
	for i := range items {
		item := &items[i]
		filename := filepath.Join(dir, item.ID+".json")

		data, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			return output.NewSystemError(fmt.Sprintf("failed to marshal item %s: %v", item.ID, err))
		}

		if err := os.WriteFile(filename, data, 0o600); err != nil {
			return output.NewSystemError(fmt.Sprintf("failed to write file %s: %v", filename, err))
		}
	}

	return nil
}
