package buffer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/s3a-spatialaudio/VISR-sub001/metric"
)

// bufferMetrics holds Prometheus metrics for buffer operations.
type bufferMetrics struct {
	writes prometheus.Counter
	reads  prometheus.Counter
	peeks  prometheus.Counter
	size   prometheus.Gauge
}

func newBufferMetrics(registry *metric.MetricsRegistry, prefix string) (*bufferMetrics, error) {
	labels := prometheus.Labels{"owner": prefix}
	m := &bufferMetrics{
		writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "visr",
			Subsystem:   "queue",
			Name:        "writes_total",
			ConstLabels: labels,
			Help:        "Total number of values enqueued",
		}),
		reads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "visr",
			Subsystem:   "queue",
			Name:        "reads_total",
			ConstLabels: labels,
			Help:        "Total number of values dequeued",
		}),
		peeks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "visr",
			Subsystem:   "queue",
			Name:        "peeks_total",
			ConstLabels: labels,
			Help:        "Total number of peek operations",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "visr",
			Subsystem:   "queue",
			Name:        "size",
			ConstLabels: labels,
			Help:        "Current number of queued values",
		}),
	}

	if err := registry.RegisterCounter(prefix, "queue_writes", m.writes); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "queue_reads", m.reads); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "queue_peeks", m.peeks); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "queue_size", m.size); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *bufferMetrics) recordWrite(size int) {
	m.writes.Inc()
	m.size.Set(float64(size))
}

func (m *bufferMetrics) recordRead(size int) {
	m.reads.Inc()
	m.size.Set(float64(size))
}

func (m *bufferMetrics) recordPeek() {
	m.peeks.Inc()
}

func (m *bufferMetrics) updateSize(size int) {
	m.size.Set(float64(size))
}
