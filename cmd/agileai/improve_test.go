package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// addImprovement adds an item and returns its id.
func addImprovement(t *testing.T, dir, title string, extra ...string) string {
	t.Helper()
	args := append([]string{"improve", "add", title, "--json"}, extra...)
	out, err := execCLI(t, dir, args...)
	if err != nil {
		t.Fatalf("improve add failed: %v\nOutput: %s", err, out)
	}
	result := decodeCLIJSON(t, out)
	item := result["item"].(map[string]any)
	return item["id"].(string)
}

func TestImproveCommand_AddAndList(t *testing.T) {
	dir := initTestWorkspace(t)

	id := addImprovement(t, dir, "Add retry to uploader", "--priority", "high")

	out, err := execCLI(t, dir, "improve", "list", "--json")
	if err != nil {
		t.Fatalf("improve list failed: %v\nOutput: %s", err, out)
	}
	result := decodeCLIJSON(t, out)
	if result["total"].(float64) != 1 {
		t.Fatalf("total = %v, want 1", result["total"])
	}
	item := result["items"].([]any)[0].(map[string]any)
	if item["id"] != id {
		t.Errorf("id = %v, want %v", item["id"], id)
	}
	if item["priority"] != "high" {
		t.Errorf("priority = %v, want high", item["priority"])
	}
	if item["status"] != "open" {
		t.Errorf("status = %v, want open", item["status"])
	}
}

func TestImproveCommand_AddBadPriority(t *testing.T) {
	dir := initTestWorkspace(t)

	out, err := execCLI(t, dir, "improve", "add", "Something", "--priority", "urgent", "--json")
	if err == nil {
		t.Fatalf("expected error for bad priority, got output: %s", out)
	}
}

func TestImproveCommand_ListFilter(t *testing.T) {
	dir := initTestWorkspace(t)

	addImprovement(t, dir, "First", "--priority", "low")
	id := addImprovement(t, dir, "Second", "--priority", "high")

	out, err := execCLI(t, dir, "improve", "list", "--priority", "high", "--json")
	if err != nil {
		t.Fatalf("improve list failed: %v", err)
	}
	result := decodeCLIJSON(t, out)
	items := result["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 high item, got %d", len(items))
	}
	if items[0].(map[string]any)["id"] != id {
		t.Error("filter returned the wrong item")
	}

	// Unknown filter values are rejected.
	if _, err := execCLI(t, dir, "improve", "list", "--status", "nope", "--json"); err == nil {
		t.Error("expected error for unknown status filter")
	}
}

func TestImproveCommand_Done(t *testing.T) {
	dir := initTestWorkspace(t)

	id := addImprovement(t, dir, "Fix flaky test")

	// Abbreviated ids resolve to the full item.
	out, err := execCLI(t, dir, "improve", "done", id[:8], "--json")
	if err != nil {
		t.Fatalf("improve done failed: %v\nOutput: %s", err, out)
	}
	result := decodeCLIJSON(t, out)
	item := result["item"].(map[string]any)
	if item["status"] != "done" {
		t.Errorf("status = %v, want done", item["status"])
	}

	// done is terminal; a second done conflicts.
	out, err = execCLI(t, dir, "improve", "done", id, "--json")
	if err == nil {
		t.Fatalf("expected conflict for second done, got output: %s", out)
	}
	errResult := decodeCLIJSON(t, out)
	if errResult["code"].(float64) != 3 {
		t.Errorf("code = %v, want 3 (conflict)", errResult["code"])
	}
}

func TestImproveCommand_DoneUnknown(t *testing.T) {
	dir := initTestWorkspace(t)

	out, err := execCLI(t, dir, "improve", "done", "ffffffff", "--json")
	if err == nil {
		t.Fatalf("expected error for unknown id, got output: %s", out)
	}
}

func TestImproveCommand_ExportMarkdown(t *testing.T) {
	dir := initTestWorkspace(t)

	addImprovement(t, dir, "Add retry to uploader", "--priority", "high", "--category", "reliability")

	out, err := execCLI(t, dir, "improve", "export")
	if err != nil {
		t.Fatalf("improve export failed: %v\nOutput: %s", err, out)
	}
	for _, want := range []string{
		"schema: agileai.improvements.export/v1",
		"# Improvement Backlog",
		"## Open",
		"**Add retry to uploader** (high, reliability)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q:\n%s", want, out)
		}
	}
}

func TestImproveCommand_ExportJSONFiles(t *testing.T) {
	dir := initTestWorkspace(t)

	id := addImprovement(t, dir, "Fix flaky test")
	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	out, err := execCLI(t, dir, "improve", "export", "--format", "json", "--dir", outDir, "--json")
	if err != nil {
		t.Fatalf("improve export failed: %v\nOutput: %s", err, out)
	}

	if _, err := os.Stat(filepath.Join(outDir, id+".json")); err != nil {
		t.Errorf("expected per-item JSON file: %v", err)
	}
}

func TestImproveCommand_ExportBadFormat(t *testing.T) {
	dir := initTestWorkspace(t)

	out, err := execCLI(t, dir, "improve", "export", "--format", "xml", "--json")
	if err == nil {
		t.Fatalf("expected error for unknown format, got output: %s", out)
	}
}
