// Package output provides structured output handling for the agileai CLI.
//
// This package handles both human-readable and JSON output formats, supporting
// the agent-friendly design principle that all commands should work well for
// both human users and automated agents.
//
// # Printer
//
// The Printer is the primary interface for command output. It automatically
// handles format switching based on the --json flag and TTY detection:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonFlag, output.IsTTY(cmd.OutOrStdout()))
//
//	// For success output
//	printer.Success(map[string]any{"message": "Persona created", "name": persona.Name})
//
//	// For error output
//	printer.Error(err)
//
//	// For raw output
//	printer.Println("Some text")
//	printer.Print("Formatted: %s\n", value)
//
// # JSON Mode
//
// When JSON mode is enabled (via --json flag), all output is structured:
//
//	// Success: {"message": "...", "name": "...", ...}
//	// Error: {"error": "message", "code": N}
//
// # Styling
//
// For human-readable output, the package provides lipgloss-based styling
// that automatically disables when output is piped:
//
//	printer.styles.Error   // Red, bold
//	printer.styles.Success // Green
//	printer.styles.Warning // Yellow
//	printer.styles.Title   // Blue, bold (section headers)
//	printer.styles.Key     // Cyan (key-value listings)
//
// # Exit Codes
//
// The package defines standard exit codes and error types:
//
//	output.ExitSuccess     // 0: Success
//	output.ExitUserError   // 1: User error (bad args, missing fields)
//	output.ExitSystemError // 2: System error (I/O failed, hook execution failed)
//	output.ExitConflict    // 3: Conflict (persona exists, state mismatch)
//
// # Error Types
//
// Use the error constructors to create properly-coded errors:
//
//	output.NewUserError("unknown hook: session-start")
//	output.NewSystemError("writing hook config failed")
//	output.NewConflictError("persona already exists: finance")
//
// These errors carry exit codes that are used for both JSON error output
// and process exit codes.
package output
