package adapter

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealthPinger probes the standard gRPC health service.
type GRPCHealthPinger struct {
	conn   *grpc.ClientConn
	client healthpb.HealthClient
}

// NewGRPCHealthPinger returns a [Pinger] that asks the standard gRPC health
// service at address for the overall server status. The connection is
// established lazily on the first Ping.
func NewGRPCHealthPinger(address string) (*GRPCHealthPinger, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc health client %s: %w", address, err)
	}

	return &GRPCHealthPinger{
		conn:   conn,
		client: healthpb.NewHealthClient(conn),
	}, nil
}

// Ping implements [Pinger].
func (g *GRPCHealthPinger) Ping(ctx context.Context) error {
	resp, err := g.client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return fmt.Errorf("grpc health check: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: %s", ErrNotServing, resp.GetStatus())
	}
	return nil
}

// Close releases the underlying connection.
func (g *GRPCHealthPinger) Close() error {
	return g.conn.Close()
}
