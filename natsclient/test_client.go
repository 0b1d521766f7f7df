package natsclient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	clientPort  = "4222/tcp"
	monitorPort = "8222/tcp"
)

// TestServer is a NATS server running in a container.
type TestServer struct {
	container testcontainers.Container
	URL       string
}

type testServerConfig struct {
	image        string
	startTimeout time.Duration
}

// TestOption configures a TestServer
type TestOption func(*testServerConfig)

// WithImage overrides the NATS container image, e.g. "nats:2.10-alpine"
func WithImage(image string) TestOption {
	return func(cfg *testServerConfig) { cfg.image = image }
}

// WithStartTimeout bounds how long the container may take to become ready
func WithStartTimeout(timeout time.Duration) TestOption {
	return func(cfg *testServerConfig) { cfg.startTimeout = timeout }
}

// StartTestServer starts a NATS container and waits until it accepts clients.
func StartTestServer(ctx context.Context, opts ...TestOption) (*TestServer, error) {
	cfg := &testServerConfig{
		image:        "nats:2.11.7-alpine",
		startTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        cfg.image,
			ExposedPorts: []string{clientPort, monitorPort},
			Cmd:          []string{"--port", "4222", "--http_port", "8222"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(clientPort),
				wait.ForHTTP("/healthz").WithPort(monitorPort),
			).WithDeadline(cfg.startTimeout),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start NATS container: %w", err)
	}

	url, err := containerURL(ctx, container)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	return &TestServer{container: container, URL: url}, nil
}

func containerURL(ctx context.Context, container testcontainers.Container) (string, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, clientPort)
	if err != nil {
		return "", fmt.Errorf("container port: %w", err)
	}
	return fmt.Sprintf("nats://%s:%s", host, port.Port()), nil
}

// Connect returns a connected Client that never reconnects.
func (s *TestServer) Connect(ctx context.Context, name string) (*Client, error) {
	client, err := NewClient(s.URL, WithName(name), WithMaxReconnects(0))
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	if err := client.WaitForConnection(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	return client, nil
}

// Terminate stops the container.
func (s *TestServer) Terminate(ctx context.Context) error {
	return s.container.Terminate(ctx)
}

// NewTestClient starts a server for one test and connects a client to it. Both
// are torn down on cleanup.
func NewTestClient(t testing.TB, opts ...TestOption) *Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	server, err := StartTestServer(ctx, opts...)
	if err != nil {
		t.Fatalf("start NATS test server: %v", err)
	}
	t.Cleanup(func() { _ = server.Terminate(context.Background()) })

	client, err := server.Connect(ctx, t.Name())
	if err != nil {
		t.Fatalf("connect to NATS test server: %v", err)
	}
	t.Cleanup(func() { _ = client.Close(context.Background()) })
	return client
}

// NewTestConnection is NewTestClient for callers that only need the connection.
func NewTestConnection(t testing.TB, opts ...TestOption) *nats.Conn {
	t.Helper()
	return NewTestClient(t, opts...).Conn()
}
