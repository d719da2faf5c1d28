package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agilebiz/agileai/internal/backlog"
	"github.com/agilebiz/agileai/internal/export"
	"github.com/agilebiz/agileai/internal/output"
)

// newImproveCmd creates the improve parent command with subcommands.
func newImproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "improve",
		Short: "Manage the improvement backlog",
		Long: `Manage the improvement backlog in .agileai/improvements/backlog.json.

Improvements are small, reviewable suggestions captured during agent
sessions: refactors, missing tests, doc gaps. Each has a priority
(low, medium, high, critical) and a status (open, in_progress, done,
rejected).

Subcommands:
  add     Add an improvement
  list    List improvements
  done    Mark an improvement done
  export  Export the backlog as markdown or JSON

Examples:
  agileai improve add "Add retry to uploader" --priority high
  agileai improve list --status open
  agileai improve done 3f2a91c0
  agileai improve export > BACKLOG.md`,
	}

	cmd.AddCommand(newImproveAddCmd())
	cmd.AddCommand(newImproveListCmd())
	cmd.AddCommand(newImproveDoneCmd())
	cmd.AddCommand(newImproveExportCmd())
	return cmd
}

// improveAddFlags holds the command-line flags for improve add.
type improveAddFlags struct {
	description string
	category    string
	priority    string
}

// newImproveAddCmd creates the improve add subcommand.
func newImproveAddCmd() *cobra.Command {
	flags := &improveAddFlags{}

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an improvement to the backlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImproveAdd(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.description, "description", "", "Longer description")
	cmd.Flags().StringVar(&flags.category, "category", "", "Free-form category (e.g. testing, docs)")
	cmd.Flags().StringVar(&flags.priority, "priority", "", "Priority: low, medium, high, critical (default medium)")

	return cmd
}

// runImproveAdd executes the improve add command.
func runImproveAdd(cmd *cobra.Command, title string, flags *improveAddFlags) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	store := backlog.NewStore(ws.BacklogPath())
	item, err := store.Add(backlog.Draft{
		Title:       title,
		Description: flags.description,
		Category:    flags.category,
		Priority:    flags.priority,
	})
	if err != nil {
		if errors.Is(err, backlog.ErrInvalidInput) {
			userErr := output.NewUserError(err.Error())
			printer.Error(userErr)
			return userErr
		}
		sysErr := output.NewSystemErrorWithCause("adding improvement", err)
		printer.Error(sysErr)
		return sysErr
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status": "created",
			"item":   item,
		})
	}

	printer.Print("Added improvement %s (%s)\n", item.ID, item.Priority)
	return nil
}

// improveListFlags holds the command-line flags for improve list.
type improveListFlags struct {
	status   string
	priority string
}

// newImproveListCmd creates the improve list subcommand.
func newImproveListCmd() *cobra.Command {
	flags := &improveListFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List improvements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImproveList(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&flags.priority, "priority", "", "Filter by priority")

	return cmd
}

// runImproveList executes the improve list command.
func runImproveList(cmd *cobra.Command, flags *improveListFlags) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	if flags.status != "" && !backlog.ValidStatus(flags.status) {
		userErr := output.NewUserError("unknown status: " + flags.status)
		printer.Error(userErr)
		return userErr
	}
	if flags.priority != "" && !backlog.ValidPriority(flags.priority) {
		userErr := output.NewUserError("unknown priority: " + flags.priority)
		printer.Error(userErr)
		return userErr
	}

	store := backlog.NewStore(ws.BacklogPath())
	items, err := store.List(backlog.Filter{Status: flags.status, Priority: flags.priority})
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("listing improvements", err)
		printer.Error(sysErr)
		return sysErr
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"items": items,
			"total": len(items),
		})
	}

	printer.Section("Improvements")
	if len(items) == 0 {
		printer.Print("No improvements found.\n")
		return nil
	}
	rows := make([][]string, 0, len(items))
	for i := range items {
		it := &items[i]
		rows = append(rows, []string{shortID(it.ID), it.Priority, it.Status, it.Title})
	}
	printer.Table([]string{"ID", "PRIORITY", "STATUS", "TITLE"}, rows)
	return nil
}

// shortID abbreviates a UUID for table output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// newImproveDoneCmd creates the improve done subcommand.
func newImproveDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark an improvement done",
		Long: `Mark an improvement done.

The id may be abbreviated to any unique prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImproveDone(cmd, args[0])
		},
	}
}

// runImproveDone executes the improve done command.
func runImproveDone(cmd *cobra.Command, idArg string) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	store := backlog.NewStore(ws.BacklogPath())

	id, err := resolveItemID(store, idArg)
	if err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}

	status := backlog.StatusDone
	item, err := store.Update(id, backlog.Patch{Status: &status})
	if err != nil {
		switch {
		case errors.Is(err, backlog.ErrItemNotFound):
			userErr := output.NewUserError(err.Error())
			printer.Error(userErr)
			return userErr
		case errors.Is(err, backlog.ErrTerminalStatus):
			conflictErr := output.NewConflictError(err.Error())
			printer.Error(conflictErr)
			return conflictErr
		default:
			sysErr := output.NewSystemErrorWithCause("updating improvement", err)
			printer.Error(sysErr)
			return sysErr
		}
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status": "done",
			"item":   item,
		})
	}

	printer.Print("Marked %s done: %s\n", shortID(item.ID), item.Title)
	return nil
}

// resolveItemID expands an abbreviated id to the full item id. An exact
// match always wins; otherwise the prefix must be unique.
func resolveItemID(store *backlog.Store, idArg string) (string, error) {
	items, err := store.List(backlog.Filter{})
	if err != nil {
		return "", err
	}

	var matches []string
	for i := range items {
		if items[i].ID == idArg {
			return idArg, nil
		}
		if strings.HasPrefix(items[i].ID, idArg) {
			matches = append(matches, items[i].ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", backlog.ErrItemNotFound, idArg)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous id %s matches %d items", idArg, len(matches))
	}
}

// improveExportFlags holds the command-line flags for improve export.
type improveExportFlags struct {
	format string
	dir    string
	status string
}

// newImproveExportCmd creates the improve export subcommand.
func newImproveExportCmd() *cobra.Command {
	flags := &improveExportFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the backlog as markdown or JSON",
		Long: `Export the improvement backlog for reports and hand-off documents.

By default a single markdown report grouped by status is printed to
stdout. With --format json the items are printed as a JSON array, and
--dir writes one JSON file per item instead.

Examples:
  agileai improve export > BACKLOG.md
  agileai improve export --status open
  agileai improve export --format json | jq '.[].title'
  agileai improve export --format json --dir ./out`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImproveExport(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "markdown", "Output format: markdown or json")
	cmd.Flags().StringVar(&flags.dir, "dir", "", "Write one JSON file per item to this directory")
	cmd.Flags().StringVar(&flags.status, "status", "", "Only export items with this status")

	return cmd
}

// runImproveExport executes the improve export command.
func runImproveExport(cmd *cobra.Command, flags *improveExportFlags) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	if flags.status != "" && !backlog.ValidStatus(flags.status) {
		userErr := output.NewUserError("unknown status: " + flags.status)
		printer.Error(userErr)
		return userErr
	}

	items, err := backlog.NewStore(ws.BacklogPath()).List(backlog.Filter{Status: flags.status})
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("listing improvements", err)
		printer.Error(sysErr)
		return sysErr
	}

	switch flags.format {
	case "markdown":
		if flags.dir != "" {
			userErr := output.NewUserError("--dir is only supported with --format json")
			printer.Error(userErr)
			return userErr
		}
		printer.Print("%s", export.FormatMarkdown(items))
		return nil
	case "json":
		if flags.dir != "" {
			if err := export.WriteJSONFiles(items, flags.dir); err != nil {
				printer.Error(err)
				return err
			}
			if printer.IsJSON() {
				return printer.Success(map[string]any{
					"status": "exported",
					"count":  len(items),
					"dir":    flags.dir,
				})
			}
			printer.Print("Exported %s to %s\n", formatCount(len(items), "item"), flags.dir)
			return nil
		}
		return export.FormatJSON(printer, items)
	default:
		userErr := output.NewUserError("unknown format: " + flags.format)
		printer.Error(userErr)
		return userErr
	}
}
