package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	internalgrpc "github.com/EgehanKilicarslan/taskmanager/backend-go/internal/grpc"
)

// NewHealthcheckCmd creates the healthcheck subcommand. It exits non-zero
// unless the target reports SERVING, which suits container health probes.
func NewHealthcheckCmd() *cobra.Command {
	var (
		addr    string
		service string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Query the gRPC health service of a running instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			status, err := checkHealth(ctx, addr, service)
			if err != nil {
				return err
			}
			cmd.Println(status.String())
			if status != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("service %q is %s", service, status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:50052", "gRPC address of the instance")
	cmd.Flags().StringVar(&service, "service", internalgrpc.ServiceName, "service name to check (empty for the whole server)")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "how long to wait for an answer")

	return cmd
}

func checkHealth(ctx context.Context, addr, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	client, err := internalgrpc.NewClient(addr)
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("failed to create gRPC client: %w", err)
	}
	defer client.Close()

	status, err := client.Check(ctx, service)
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check failed: %w", err)
	}
	return status, nil
}
