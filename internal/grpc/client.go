package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// Client queries the health service of a running API instance
type Client struct {
	Health healthpb.HealthClient
	conn   *grpc.ClientConn
}

// NewClient creates a new gRPC client. Extra options are appended to the defaults.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	conn, err := grpc.NewClient(
		addr,
		append([]grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time:                30 * time.Second,
				Timeout:             10 * time.Second,
				PermitWithoutStream: false,
			}),
		}, opts...)...,
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		Health: healthpb.NewHealthClient(conn),
		conn:   conn,
	}, nil
}

// Check returns the serving status of service ("" for the whole server).
func (c *Client) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := c.Health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Close closes the gRPC connection
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
