package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agilebiz/agileai/internal/agent"
	"github.com/agilebiz/agileai/internal/output"
)

// newAgentsCmd creates the agents parent command with subcommands.
func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Manage agent personas",
		Long: `Manage agent personas in the workspace.

Personas are Markdown files with YAML frontmatter under .agileai/agents/.
The built-in catalog is always available; a workspace persona with the
same name shadows the builtin.

Subcommands:
  list    List all personas
  show    Show a persona including its prompt body
  create  Create a new persona

Examples:
  agileai agents list
  agileai agents show developer
  agileai agents create code-review --title "Code Review Agent"
  agileai agents create ux-review --from reviewer --tags design`,
	}

	cmd.AddCommand(newAgentsListCmd())
	cmd.AddCommand(newAgentsShowCmd())
	cmd.AddCommand(newAgentsCreateCmd())
	return cmd
}

// newAgentsListCmd creates the agents list subcommand.
func newAgentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List agent personas",
		Long:  `List all agent personas, builtin and workspace, sorted by name.`,
		RunE:  runAgentsList,
	}
}

// runAgentsList executes the agents list command.
func runAgentsList(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	store := agent.NewStore(ws.AgentsDir())
	personas, stats, err := store.List()
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("listing personas", err)
		printer.Error(sysErr)
		return sysErr
	}

	if printer.IsJSON() {
		summaries := make([]map[string]any, 0, len(personas))
		for _, p := range personas {
			summaries = append(summaries, map[string]any{
				"name":   p.Name,
				"title":  p.Title,
				"tags":   p.Tags,
				"source": p.Source,
			})
		}
		return printer.Success(map[string]any{
			"agents":  summaries,
			"total":   len(personas),
			"skipped": stats.Skipped,
		})
	}

	printer.Section("Agent Personas")
	rows := make([][]string, 0, len(personas))
	for _, p := range personas {
		rows = append(rows, []string{p.Name, p.Title, strings.Join(p.Tags, ", "), p.Source})
	}
	printer.Table([]string{"NAME", "TITLE", "TAGS", "SOURCE"}, rows)

	if stats.Skipped > 0 {
		printer.Println()
		printer.Warn("%d file(s) could not be parsed and were skipped", stats.Skipped)
	}
	return nil
}

// newAgentsShowCmd creates the agents show subcommand.
func newAgentsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a single agent persona",
		Long:  `Show a persona's metadata and prompt body.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runAgentsShow,
	}
}

// runAgentsShow executes the agents show command.
func runAgentsShow(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	store := agent.NewStore(ws.AgentsDir())
	p, err := store.Get(args[0])
	if err != nil {
		if errors.Is(err, agent.ErrPersonaNotFound) {
			userErr := output.NewUserError(err.Error())
			printer.Error(userErr)
			return userErr
		}
		sysErr := output.NewSystemErrorWithCause("loading persona", err)
		printer.Error(sysErr)
		return sysErr
	}

	if printer.IsJSON() {
		return printer.WriteJSON(p)
	}

	printHumanPersona(printer, p)
	return nil
}

// printHumanPersona outputs a persona in human-readable format.
func printHumanPersona(printer *output.Printer, p *agent.Persona) {
	printer.Section(p.Title)
	printer.KeyValue("Name", p.Name)
	if p.Description != "" {
		printer.KeyValue("Description", p.Description)
	}
	if p.Model != "" {
		printer.KeyValue("Model", p.Model)
	}
	if len(p.Tools) > 0 {
		printer.KeyValue("Tools", strings.Join(p.Tools, ", "))
	}
	if len(p.Tags) > 0 {
		printer.KeyValue("Tags", strings.Join(p.Tags, ", "))
	}
	printer.KeyValue("Source", p.Source)
	printer.Println()
	printer.Print("%s\n", strings.TrimRight(p.Body, "\n"))
}

// agentsCreateFlags holds the command-line flags for agents create.
type agentsCreateFlags struct {
	title       string
	description string
	model       string
	tools       []string
	tags        []string
	from        string
	force       bool
}

// newAgentsCreateCmd creates the agents create subcommand.
func newAgentsCreateCmd() *cobra.Command {
	flags := &agentsCreateFlags{}

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new agent persona",
		Long: `Create a new agent persona in the workspace.

The persona is written to .agileai/agents/<name>.md. Use --from to copy
the body and defaults of an existing persona.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgentsCreate(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.title, "title", "", "Display title")
	cmd.Flags().StringVar(&flags.description, "description", "", "One-line description")
	cmd.Flags().StringVar(&flags.model, "model", "", "Preferred model (haiku, sonnet, opus)")
	cmd.Flags().StringSliceVar(&flags.tools, "tools", nil, "Allowed tools")
	cmd.Flags().StringSliceVar(&flags.tags, "tags", nil, "Tags for grouping")
	cmd.Flags().StringVar(&flags.from, "from", "", "Copy body and defaults from an existing persona")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite an existing workspace persona")

	return cmd
}

// runAgentsCreate executes the agents create command.
func runAgentsCreate(cmd *cobra.Command, name string, flags *agentsCreateFlags) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	store := agent.NewStore(ws.AgentsDir())
	p, err := agent.Scaffold(store, agent.ScaffoldOptions{
		Name:        name,
		Title:       flags.title,
		Description: flags.description,
		Model:       flags.model,
		Tools:       flags.tools,
		Tags:        flags.tags,
		From:        flags.from,
	})
	if err != nil {
		var vErr *agent.ValidationError
		if errors.As(err, &vErr) || errors.Is(err, agent.ErrPersonaNotFound) {
			userErr := output.NewUserError(err.Error())
			printer.Error(userErr)
			return userErr
		}
		sysErr := output.NewSystemErrorWithCause("building persona", err)
		printer.Error(sysErr)
		return sysErr
	}

	if err := store.Write(p, flags.force); err != nil {
		if errors.Is(err, agent.ErrPersonaExists) {
			conflictErr := output.NewConflictError(err.Error() + " (use --force to overwrite)")
			printer.Error(conflictErr)
			return conflictErr
		}
		sysErr := output.NewSystemErrorWithCause("writing persona", err)
		printer.Error(sysErr)
		return sysErr
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status": "created",
			"name":   p.Name,
			"path":   store.Path(p.Name),
		})
	}

	printer.Print("Created persona %s at %s\n", p.Name, store.Path(p.Name))
	return nil
}
