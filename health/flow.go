package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/s3a-spatialaudio/VISR-sub001/component/flowgraph"
)

// FromAnalysis converts the connectivity analysis of a built flow. Warnings
// degrade the flow, errors make it unhealthy.
func FromAnalysis(name string, result flowgraph.AnalysisResult) Status {
	detail := fmt.Sprintf("%d orphaned ports, %d disconnected components",
		len(result.OrphanedPorts), len(result.DisconnectedNodes))
	switch result.ValidationStatus {
	case flowgraph.StatusValid:
		return NewHealthy(name, "Flow graph valid")
	case flowgraph.StatusWarnings:
		return NewDegraded(name, "Flow graph has warnings: "+detail)
	default:
		return NewUnhealthy(name, "Flow graph invalid: "+detail)
	}
}

// Run describes the progress of block processing.
type Run struct {
	Started   time.Time
	Blocks    uint64
	LastBlock time.Time
	Err       error
}

// FromRun converts the progress of block processing. A run that failed is
// unhealthy and carries the sanitized error.
func FromRun(name string, run Run) Status {
	metrics := &Metrics{
		BlocksProcessed: run.Blocks,
		LastActivity:    run.LastBlock,
	}
	if !run.Started.IsZero() {
		metrics.Uptime = time.Since(run.Started)
	}

	if run.Err != nil {
		metrics.ErrorCount = 1
		return NewUnhealthy(name, sanitizeErrorMessage(run.Err.Error())).WithMetrics(metrics)
	}
	if run.Started.IsZero() {
		return NewDegraded(name, "Processing not started").WithMetrics(metrics)
	}
	return NewHealthy(name, "Processing").WithMetrics(metrics)
}

// Handler serves the aggregate of m as JSON. Unhealthy aggregates answer 503.
func Handler(m *Monitor, systemName string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := m.AggregateHealth(systemName)
		w.Header().Set("Content-Type", "application/json")
		if status.IsUnhealthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(status)
	})
}
