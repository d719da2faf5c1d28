package setup

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agilebiz/agileai/internal/output"
)

const (
	// AgileaiHookMarkerBegin marks the start of agileai-managed content.
	AgileaiHookMarkerBegin = "# BEGIN agileai"
	// AgileaiHookMarkerEnd marks the end of agileai-managed content.
	AgileaiHookMarkerEnd = "# END agileai"
)

// ClaudeHookContent is the hook script content that runs agileai prime.
var ClaudeHookContent = AgileaiHookMarkerBegin + `
# agileai session context injection
if command -v agileai >/dev/null 2>&1 && [ -d ".agileai" ]; then
  agileai prime 2>/dev/null
fi
` + AgileaiHookMarkerEnd

// ResolveClaudeHookPath determines the hook path based on scope.
// If project is true, returns a project-local path; otherwise returns the global path.
func ResolveClaudeHookPath(project bool) (string, string, error) {
	if project {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", output.NewSystemErrorWithCause("failed to get working directory", err)
		}
		return filepath.Join(cwd, ".claude", "hooks", "user_prompt_submit.sh"), "project", nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", output.NewSystemErrorWithCause("failed to get home directory", err)
	}
	return filepath.Join(home, ".claude", "hooks", "user_prompt_submit.sh"), "global", nil
}

// IsAgileaiSectionInstalled checks if the agileai section exists in a hook file.
func IsAgileaiSectionInstalled(hookPath string) bool {
	content, err := os.ReadFile(hookPath)
	if err != nil {
		return false
	}
	return strings.Contains(string(content), AgileaiHookMarkerBegin)
}

// InstallAgileaiSection adds or updates the agileai section in a hook file.
// Existing foreign content is preserved; an existing agileai section is
// replaced rather than duplicated.
func InstallAgileaiSection(hookPath string) error {
	hookDir := filepath.Dir(hookPath)
	if err := os.MkdirAll(hookDir, 0o755); err != nil {
		return output.NewSystemErrorWithCause("failed to create hook directory", err)
	}

	var content string
	existingContent, err := os.ReadFile(hookPath)
	if err == nil {
		content = string(existingContent)
		content = RemoveAgileaiSectionFromContent(content)
	} else if !os.IsNotExist(err) {
		return output.NewSystemErrorWithCause("failed to read hook file", err)
	}

	if !strings.HasPrefix(content, "#!") {
		content = "#!/bin/bash\n" + content
	}

	content = strings.TrimRight(content, "\n") + "\n\n" + ClaudeHookContent + "\n"

	// #nosec G306 -- hook needs execute permission
	if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
		return output.NewSystemErrorWithCause("failed to write hook file", err)
	}

	return nil
}

// RemoveAgileaiSectionFromHook removes the agileai section from a hook file.
// A file left with nothing but its shebang is deleted outright.
func RemoveAgileaiSectionFromHook(hookPath string) error {
	content, err := os.ReadFile(hookPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return output.NewSystemErrorWithCause("failed to read hook file", err)
	}

	newContent := RemoveAgileaiSectionFromContent(string(content))

	cleaned := strings.TrimSpace(strings.TrimPrefix(newContent, "#!/bin/bash"))
	if cleaned == "" {
		if err := os.Remove(hookPath); err != nil {
			return output.NewSystemErrorWithCause("failed to remove hook file", err)
		}
		return nil
	}

	// #nosec G306 -- hook needs execute permission
	if err := os.WriteFile(hookPath, []byte(newContent), 0o755); err != nil {
		return output.NewSystemErrorWithCause("failed to write hook file", err)
	}

	return nil
}

// RemoveAgileaiSectionFromContent removes the agileai section from a content string.
func RemoveAgileaiSectionFromContent(content string) string {
	lines := strings.Split(content, "\n")
	var result []string
	inSection := false

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), AgileaiHookMarkerBegin) {
			inSection = true
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), AgileaiHookMarkerEnd) {
			inSection = false
			continue
		}
		if !inSection {
			result = append(result, line)
		}
	}

	finalContent := strings.Join(result, "\n")
	for strings.Contains(finalContent, "\n\n\n") {
		finalContent = strings.ReplaceAll(finalContent, "\n\n\n", "\n\n")
	}

	return strings.TrimRight(finalContent, "\n") + "\n"
}
