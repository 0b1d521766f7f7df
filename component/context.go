package component

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/metric"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol"
)

// SignalFlowContext carries the parameters shared by every component of one flow.
// It is created once and passed to every component constructor.
type SignalFlowContext struct {
	period            int
	samplingFrequency float64
	flowID            string
	protocols         *protocol.Registry
	logger            *slog.Logger
	nc                *nats.Conn
	metrics           *metric.Metrics
}

// ContextOption configures a SignalFlowContext.
type ContextOption func(*SignalFlowContext)

// WithProtocols sets the protocol registry used by polymorphic parameter ports.
func WithProtocols(r *protocol.Registry) ContextOption {
	return func(c *SignalFlowContext) { c.protocols = r }
}

// WithLogger sets the logger for status messages. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *SignalFlowContext) { c.logger = logger }
}

// WithNATS enables publishing of status messages to NATS.
func WithNATS(nc *nats.Conn) ContextOption {
	return func(c *SignalFlowContext) { c.nc = nc }
}

// WithMetrics enables counting of status messages.
func WithMetrics(m *metric.Metrics) ContextOption {
	return func(c *SignalFlowContext) { c.metrics = m }
}

// WithFlowID sets the flow identifier. Defaults to a random UUID.
func WithFlowID(id string) ContextOption {
	return func(c *SignalFlowContext) { c.flowID = id }
}

// NewContext creates a context for blocks of period samples at samplingFrequency Hz.
func NewContext(period int, samplingFrequency float64, opts ...ContextOption) (*SignalFlowContext, error) {
	if period <= 0 {
		return nil, errors.Invalidf(errors.ErrInvalidConfig, "SignalFlowContext", "New",
			"period must be positive, got %d", period)
	}
	if samplingFrequency <= 0 {
		return nil, errors.Invalidf(errors.ErrInvalidConfig, "SignalFlowContext", "New",
			"sampling frequency must be positive, got %g", samplingFrequency)
	}

	c := &SignalFlowContext{period: period, samplingFrequency: samplingFrequency}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.flowID == "" {
		c.flowID = uuid.NewString()
	}
	return c, nil
}

// Period returns the block size in samples.
func (c *SignalFlowContext) Period() int { return c.period }

// SamplingFrequency returns the sampling frequency in Hz.
func (c *SignalFlowContext) SamplingFrequency() float64 { return c.samplingFrequency }

// FlowID returns the flow identifier.
func (c *SignalFlowContext) FlowID() string { return c.flowID }

// Protocols returns the protocol registry, nil if none was configured.
func (c *SignalFlowContext) Protocols() *protocol.Registry { return c.protocols }

// Logger returns the flow logger.
func (c *SignalFlowContext) Logger() *slog.Logger { return c.logger }

// Metrics returns the flow metrics, nil if none were configured.
func (c *SignalFlowContext) Metrics() *metric.Metrics { return c.metrics }

// String implements fmt.Stringer.
func (c *SignalFlowContext) String() string {
	return fmt.Sprintf("SignalFlowContext{period: %d, fs: %g, flow: %s}", c.period, c.samplingFrequency, c.flowID)
}
