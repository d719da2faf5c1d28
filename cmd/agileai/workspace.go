// Package main provides the entry point for the agileai CLI.
package main

import (
	"errors"

	"github.com/agilebiz/agileai/internal/config"
	"github.com/agilebiz/agileai/internal/output"
)

// requireWorkspace resolves the current workspace, printing a user error
// when none is found. The returned error is ready to bubble up to main.
func requireWorkspace(printer *output.Printer) (*config.Workspace, error) {
	ws, err := config.CurrentWorkspace()
	if err != nil {
		if errors.Is(err, config.ErrNoWorkspace) {
			userErr := output.NewUserError(err.Error())
			printer.Error(userErr)
			return nil, userErr
		}
		sysErr := output.NewSystemErrorWithCause("resolving workspace", err)
		printer.Error(sysErr)
		return nil, sysErr
	}
	return ws, nil
}
