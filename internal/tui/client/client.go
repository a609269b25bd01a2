package client

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/matheus3301/chatsim/internal/api/apiv1"
)

// Client wraps the gRPC connection to the daemon.
type Client struct {
	conn   *grpc.ClientConn
	Engine *apiv1.EngineClient
}

// New dials the daemon's Unix domain socket and returns a typed client.
func New(socketPath string) (*Client, error) {
	conn, err := apiv1.Dial(socketPath)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:   conn,
		Engine: apiv1.NewEngineClient(conn),
	}, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Probe reports whether a daemon answers GetStatus on socketPath.
func Probe(socketPath string) bool {
	c, err := New(socketPath)
	if err != nil {
		return false
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = c.Engine.GetStatus(ctx, &apiv1.Empty{})
	return err == nil
}

// WaitFor polls Probe until it succeeds or timeout passes.
func WaitFor(socketPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if Probe(socketPath) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
