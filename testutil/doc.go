// Package testutil provides helpers for signal-flow tests.
//
// # Contexts
//
// NewContext creates a SignalFlowContext backed by freshly populated parameter and
// protocol registries, so every test builds against independent registries.
//
// # Components
//
// Recorder is an atomic component capturing every block it receives. Generator is
// an atomic component emitting a deterministic ramp. MockProcessor counts Process
// calls and can inject failures.
//
// # NATS
//
// NATSConnection starts a NATS server in a container through testcontainers and
// returns a connection to it. It skips the test unless INTEGRATION_TESTS is set.
package testutil
