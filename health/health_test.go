package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3a-spatialaudio/VISR-sub001/component/flowgraph"
)

func TestStatus_Predicates(t *testing.T) {
	tests := []struct {
		name      string
		status    Status
		healthy   bool
		degraded  bool
		unhealthy bool
	}{
		{"healthy", NewHealthy("c", "ok"), true, false, false},
		{"degraded", NewDegraded("c", "meh"), false, true, false},
		{"unhealthy", NewUnhealthy("c", "bad"), false, false, true},
		{"empty", Status{}, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.healthy, tt.status.IsHealthy())
			assert.Equal(t, tt.healthy, tt.status.Healthy)
			assert.Equal(t, tt.degraded, tt.status.IsDegraded())
			assert.Equal(t, tt.unhealthy, tt.status.IsUnhealthy())
		})
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name string
		subs []Status
		want string
	}{
		{"empty", nil, StateHealthy},
		{"all healthy", []Status{NewHealthy("a", ""), NewHealthy("b", "")}, StateHealthy},
		{"one degraded", []Status{NewHealthy("a", ""), NewDegraded("b", "")}, StateDegraded},
		{"unhealthy wins", []Status{NewDegraded("a", ""), NewUnhealthy("b", "")}, StateUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate("sys", tt.subs)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, "sys", got.Component)
			assert.Len(t, got.SubStatuses, len(tt.subs))
		})
	}

	subs := []Status{NewHealthy("a", "")}
	agg := Aggregate("sys", subs)
	subs[0].Message = "mutated"
	assert.Empty(t, agg.SubStatuses[0].Message)
}

func TestSanitizeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"unix path", "failed to open /etc/visr/config.json", "failed to open [PATH]"},
		{"windows path", "cannot read C:\\Users\\Admin\\config.json", "cannot read [PATH]"},
		{"http url", "connection failed to https://example.com/v1/health", "connection failed to [URL]"},
		{"nats url", "cannot connect to nats://localhost:4222", "cannot connect to [URL]"},
		{"ip address", "timeout connecting to 192.168.1.100", "timeout connecting to [IP]"},
		{"port", "failed to bind to :8080", "failed to bind to [PORT]"},
		{"credential", "auth failed token=abc123", "auth failed [REDACTED]"},
		{"component names survive", "Flow.Process: process() of root:gain failed: boom",
			"Flow.Process: process() of root:gain failed: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeErrorMessage(tt.input))
		})
	}
}

func TestFromAnalysis(t *testing.T) {
	assert.True(t, FromAnalysis("flow", flowgraph.AnalysisResult{ValidationStatus: flowgraph.StatusValid}).IsHealthy())

	warn := FromAnalysis("flow", flowgraph.AnalysisResult{
		ValidationStatus:  flowgraph.StatusWarnings,
		OrphanedPorts:     []flowgraph.OrphanedPort{{ComponentName: "meter", PortName: "level"}},
		DisconnectedNodes: []flowgraph.DisconnectedNode{},
	})
	assert.True(t, warn.IsDegraded())
	assert.Contains(t, warn.Message, "1 orphaned ports, 0 disconnected components")

	assert.True(t, FromAnalysis("flow", flowgraph.AnalysisResult{ValidationStatus: flowgraph.StatusErrors}).IsUnhealthy())
}

func TestFromRun(t *testing.T) {
	pending := FromRun("processing", Run{})
	assert.True(t, pending.IsDegraded())

	started := time.Now().Add(-time.Second)
	running := FromRun("processing", Run{Started: started, Blocks: 12, LastBlock: time.Now()})
	assert.True(t, running.IsHealthy())
	require.NotNil(t, running.Metrics)
	assert.Equal(t, uint64(12), running.Metrics.BlocksProcessed)
	assert.GreaterOrEqual(t, running.Metrics.Uptime, time.Second)

	failed := FromRun("processing", Run{Started: started, Blocks: 3,
		Err: errors.New("read nats://10.0.0.1:4222 failed")})
	assert.True(t, failed.IsUnhealthy())
	assert.Equal(t, "read [URL] failed", failed.Message)
	assert.Equal(t, 1, failed.Metrics.ErrorCount)
}

func TestMonitor(t *testing.T) {
	m := NewMonitor()
	m.Update("b", NewHealthy("ignored", "ok"))
	m.Update("a", Status{Status: StateDegraded})

	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.Component)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, []string{"a", "b"}, m.Names())

	agg := m.AggregateHealth("sys")
	assert.True(t, agg.IsDegraded())
	require.Len(t, agg.SubStatuses, 2)
	assert.Equal(t, "a", agg.SubStatuses[0].Component)

	m.Remove("a")
	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.True(t, m.AggregateHealth("sys").IsHealthy())
}

func TestMonitor_Concurrent(t *testing.T) {
	m := NewMonitor()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				m.Update("processing", FromRun("processing", Run{Started: time.Now(), Blocks: uint64(j)}))
				_ = m.AggregateHealth("sys")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{"processing"}, m.Names())
}

func TestHandler(t *testing.T) {
	m := NewMonitor()
	m.Update("flow", NewHealthy("flow", "Flow graph valid"))

	rec := httptest.NewRecorder()
	Handler(m, "visrflow").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "visrflow", body.Component)
	assert.True(t, body.Healthy)

	m.Update("processing", NewUnhealthy("processing", "aborted"))
	rec = httptest.NewRecorder()
	Handler(m, "visrflow").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
