// Package metric provides the Prometheus metrics of signal flows and an HTTP server
// exposing them.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the flow-level metrics shared by all flows of a process
type Metrics struct {
	BlocksProcessed   *prometheus.CounterVec
	ProcessDuration   *prometheus.HistogramVec
	ProcessFailures   *prometheus.CounterVec
	BuildDuration     prometheus.Histogram
	ProtocolInstances *prometheus.GaugeVec
	StatusMessages    *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		BlocksProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "visr",
				Subsystem: "flow",
				Name:      "blocks_processed_total",
				Help:      "Total number of audio blocks processed",
			},
			[]string{"flow"},
		),

		ProcessDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "visr",
				Subsystem: "flow",
				Name:      "process_duration_seconds",
				Help:      "Duration of one process() call per atomic component",
				Buckets:   []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 1e-2},
			},
			[]string{"flow", "component"},
		),

		ProcessFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "visr",
				Subsystem: "flow",
				Name:      "process_failures_total",
				Help:      "Total number of failed process() calls",
			},
			[]string{"flow", "component"},
		),

		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "visr",
				Subsystem: "flow",
				Name:      "build_duration_seconds",
				Help:      "Time to resolve a component hierarchy into an executable flow",
				Buckets:   prometheus.DefBuckets,
			},
		),

		ProtocolInstances: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "visr",
				Subsystem: "flow",
				Name:      "protocol_instances",
				Help:      "Number of live communication protocol instances",
			},
			[]string{"protocol"},
		),

		StatusMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "visr",
				Subsystem: "flow",
				Name:      "status_messages_total",
				Help:      "Total number of component status messages",
			},
			[]string{"kind"},
		),
	}
}

func (c *Metrics) register(reg *prometheus.Registry) {
	reg.MustRegister(
		c.BlocksProcessed,
		c.ProcessDuration,
		c.ProcessFailures,
		c.BuildDuration,
		c.ProtocolInstances,
		c.StatusMessages,
	)
}

// RecordBlock increments the processed block counter
func (c *Metrics) RecordBlock(flow string) {
	c.BlocksProcessed.WithLabelValues(flow).Inc()
}

// RecordProcessDuration records the duration of one process() call
func (c *Metrics) RecordProcessDuration(flow, component string, duration time.Duration) {
	c.ProcessDuration.WithLabelValues(flow, component).Observe(duration.Seconds())
}

// RecordProcessFailure increments the failure counter of a component
func (c *Metrics) RecordProcessFailure(flow, component string) {
	c.ProcessFailures.WithLabelValues(flow, component).Inc()
}

// RecordBuild records the duration of a flow build
func (c *Metrics) RecordBuild(duration time.Duration) {
	c.BuildDuration.Observe(duration.Seconds())
}

// AddProtocolInstances adjusts the live instance gauge of a protocol
func (c *Metrics) AddProtocolInstances(protocol string, delta int) {
	c.ProtocolInstances.WithLabelValues(protocol).Add(float64(delta))
}

// RecordStatus increments the status message counter for a kind
func (c *Metrics) RecordStatus(kind string) {
	c.StatusMessages.WithLabelValues(kind).Inc()
}
