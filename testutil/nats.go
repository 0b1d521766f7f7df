package testutil

import (
	"os"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/s3a-spatialaudio/VISR-sub001/natsclient"
)

// IntegrationEnabled reports whether container-backed tests should run.
func IntegrationEnabled() bool {
	return os.Getenv("INTEGRATION_TESTS") != ""
}

// NATSConnection returns a connection to a containerized NATS server that lives for
// the duration of the test.
func NATSConnection(t testing.TB, opts ...natsclient.TestOption) *nats.Conn {
	t.Helper()
	if !IntegrationEnabled() {
		t.Skip("Skipping integration test. Set INTEGRATION_TESTS=1 to run.")
	}
	return natsclient.NewTestConnection(t, opts...)
}
