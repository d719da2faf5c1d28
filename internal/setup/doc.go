// Package setup provides business logic for installing and managing
// agileai integrations with agent coding environments.
//
// This package contains pure functions for hook installation, removal,
// and detection. Command-layer adapters in cmd/agileai/ handle CLI
// concerns (flags, output formatting, cobra wiring) and delegate to
// this package for the actual work.
//
// # Claude Integration
//
// Claude Code hook operations (install, remove, check):
//
//	path, scope, err := setup.ResolveClaudeHookPath(false)
//	installed := setup.IsAgileaiSectionInstalled(path)
//	err := setup.InstallAgileaiSection(path)
//	err := setup.RemoveAgileaiSectionFromHook(path)
package setup
