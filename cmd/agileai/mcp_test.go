package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMCPCommand_Setup(t *testing.T) {
	dir := initTestWorkspace(t)

	out, err := execCLI(t, dir, "mcp", "setup", "github", "--json")
	if err != nil {
		t.Fatalf("mcp setup failed: %v\nOutput: %s", err, out)
	}

	result := decodeCLIJSON(t, out)
	if result["status"] != "configured" {
		t.Errorf("status = %v, want configured", result["status"])
	}

	// .mcp.json carries the server block.
	data, err := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	if err != nil {
		t.Fatalf("reading .mcp.json: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parsing .mcp.json: %v", err)
	}
	servers := doc["mcpServers"].(map[string]any)
	if _, ok := servers["github"]; !ok {
		t.Errorf(".mcp.json should contain the github server: %s", data)
	}

	// .env gets placeholder keys for required env vars.
	envData, err := os.ReadFile(filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("reading .env: %v", err)
	}
	if !strings.Contains(string(envData), "GITHUB_PERSONAL_ACCESS_TOKEN") {
		t.Errorf(".env should contain the token placeholder: %s", envData)
	}
}

func TestMCPCommand_SetupUnknown(t *testing.T) {
	dir := initTestWorkspace(t)

	out, err := execCLI(t, dir, "mcp", "setup", "nope", "--json")
	if err == nil {
		t.Fatalf("expected error for unknown server, got output: %s", out)
	}
}

func TestMCPCommand_List(t *testing.T) {
	dir := initTestWorkspace(t)

	if _, err := execCLI(t, dir, "mcp", "setup", "github", "--json"); err != nil {
		t.Fatalf("mcp setup failed: %v", err)
	}

	out, err := execCLI(t, dir, "mcp", "list", "--json")
	if err != nil {
		t.Fatalf("mcp list failed: %v\nOutput: %s", err, out)
	}
	result := decodeCLIJSON(t, out)
	servers := result["servers"].([]any)

	var github map[string]any
	for _, raw := range servers {
		st := raw.(map[string]any)
		if st["server"].(map[string]any)["name"] == "github" {
			github = st
		}
	}
	if github == nil {
		t.Fatalf("github missing from list: %s", out)
	}
	if github["configured"] != true {
		t.Error("github should be configured")
	}
	// The placeholder value in .env does not count as a real key.
	if _, ok := github["missing_env"]; !ok {
		t.Errorf("github should report missing env keys: %s", out)
	}
}

func TestMCPCommand_Remove(t *testing.T) {
	dir := initTestWorkspace(t)

	if _, err := execCLI(t, dir, "mcp", "setup", "github", "--json"); err != nil {
		t.Fatalf("mcp setup failed: %v", err)
	}
	if _, err := execCLI(t, dir, "mcp", "remove", "github", "--json"); err != nil {
		t.Fatalf("mcp remove failed: %v", err)
	}

	// Removing again is an error: the server is no longer configured.
	out, err := execCLI(t, dir, "mcp", "remove", "github", "--json")
	if err == nil {
		t.Fatalf("expected error for double remove, got output: %s", out)
	}
}
