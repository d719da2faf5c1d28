package main

import (
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agilebiz/agileai/internal/dashboard"
	"github.com/agilebiz/agileai/internal/output"
)

// dashboardFlags holds the command-line flags for the dashboard command.
type dashboardFlags struct {
	host string
	port int
}

// newDashboardCmd creates the dashboard command.
func newDashboardCmd() *cobra.Command {
	flags := &dashboardFlags{}

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the local dashboard API",
		Long: `Serve the local dashboard HTTP API over the workspace.

The server exposes hook configuration and metrics, the improvement
backlog, project state and agent personas as JSON, plus a server-sent
events stream at /api/hooks/events that pushes hook activity and state
changes as they happen.

Configuration is read from .agileai/dashboard.yaml, overridable via
AGILEAI_DASHBOARD_* environment variables and the flags below.

The server runs until interrupted (Ctrl-C).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "Bind address (overrides config)")
	cmd.Flags().IntVar(&flags.port, "port", 0, "Port (overrides config)")

	return cmd
}

// runDashboard executes the dashboard command.
func runDashboard(cmd *cobra.Command, flags *dashboardFlags) error {
	printer := newPrinter(cmd)

	ws, err := requireWorkspace(printer)
	if err != nil {
		return err
	}

	cfg, err := dashboard.LoadConfig(ws.DashboardConfigPath())
	if err != nil {
		userErr := output.NewUserError("dashboard config: " + err.Error())
		printer.Error(userErr)
		return userErr
	}
	if flags.host != "" {
		cfg.Host = flags.host
	}
	if flags.port != 0 {
		cfg.Port = flags.port
	}

	logger, err := zap.NewProduction()
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("initializing logger", err)
		printer.Error(sysErr)
		return sysErr
	}
	defer func() { _ = logger.Sync() }()

	srv := dashboard.NewServer(cfg, ws, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printer.Stderr("dashboard listening on http://%s\n", cfg.Addr())

	if err := srv.Serve(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sysErr := output.NewSystemErrorWithCause("dashboard server", err)
		printer.Error(sysErr)
		return sysErr
	}
	return nil
}
