package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/agilebiz/agileai/internal/output"
	"github.com/agilebiz/agileai/internal/state"
)

// newStateCmd creates the state parent command with subcommands.
func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Manage project state documents",
		Long: `Manage the project state documents under .agileai/state/.

There are three state kinds:
  runtime        Session-scoped working state (current task, decisions)
  persistent     Long-lived project knowledge
  configuration  Project settings agents should honor

Subcommands:
  show  Print a state document
  set   Merge a JSON patch into a state document

Examples:
  agileai state show runtime
  agileai state set runtime '{"current_task":"implement auth"}'
  agileai state set runtime '{"current_task":null}'   # delete a key
  agileai state set persistent --replace '{}'          # reset a document`,
	}

	cmd.AddCommand(newStateShowCmd())
	cmd.AddCommand(newStateSetCmd())
	return cmd
}

// newStateShowCmd creates the state show subcommand.
func newStateShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <kind>",
		Short: "Print a state document",
		Args:  cobra.ExactArgs(1),
		RunE:  runStateShow,
	}
}

// runStateShow executes the state show command.
func runStateShow(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	kind, err := state.ParseKind(args[0])
	if err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}

	store := state.NewStore(ws.StateDir())
	doc, err := store.Get(kind)
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("reading state", err)
		printer.Error(sysErr)
		return sysErr
	}

	// State documents are free-form JSON either way; print them as JSON
	// in both modes.
	return printer.WriteJSON(doc)
}

// stateSetFlags holds the command-line flags for state set.
type stateSetFlags struct {
	replace bool
}

// newStateSetCmd creates the state set subcommand.
func newStateSetCmd() *cobra.Command {
	flags := &stateSetFlags{}

	cmd := &cobra.Command{
		Use:   "set <kind> <json>",
		Short: "Merge a JSON patch into a state document",
		Long: `Merge a JSON object into a state document.

Top-level keys in the patch are set on the document; a null value
deletes the key. With --replace the document is replaced wholesale.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStateSet(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.replace, "replace", false, "Replace the document instead of merging")
	return cmd
}

// runStateSet executes the state set command.
func runStateSet(cmd *cobra.Command, kindArg, patchArg string, flags *stateSetFlags) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	kind, err := state.ParseKind(kindArg)
	if err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}

	var patch state.Document
	if err := json.Unmarshal([]byte(patchArg), &patch); err != nil {
		userErr := output.NewUserError("patch must be a JSON object")
		printer.Error(userErr)
		return userErr
	}

	store := state.NewStore(ws.StateDir())

	var doc state.Document
	if flags.replace {
		if err := store.Replace(kind, patch); err != nil {
			sysErr := output.NewSystemErrorWithCause("writing state", err)
			printer.Error(sysErr)
			return sysErr
		}
		doc = patch
	} else {
		doc, err = store.Merge(kind, patch)
		if err != nil {
			sysErr := output.NewSystemErrorWithCause("writing state", err)
			printer.Error(sysErr)
			return sysErr
		}
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"kind":  string(kind),
			"state": doc,
		})
	}

	printer.Print("Updated %s state (%d keys)\n", kind, len(doc))
	return nil
}
