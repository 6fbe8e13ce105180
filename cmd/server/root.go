package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Without a subcommand it serves the API.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskmanager",
		Short: "Task Manager API server",
		Long: `Task Manager serves the /api/v1 REST API for per-user task lists,
together with a gRPC health service and Prometheus metrics.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewHealthcheckCmd())

	return cmd
}
