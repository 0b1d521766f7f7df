package component

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/s3a-spatialaudio/VISR-sub001/metric"
)

// StatusKind is the severity of a component status message.
type StatusKind int

const (
	// StatusInformation reports regular operation.
	StatusInformation StatusKind = iota
	// StatusWarning reports a recoverable anomaly.
	StatusWarning
	// StatusError reports a failure of the component.
	StatusError
	// StatusCritical reports a failure that invalidates the flow.
	StatusCritical
)

// String returns the kind name.
func (k StatusKind) String() string {
	switch k {
	case StatusInformation:
		return "Information"
	case StatusWarning:
		return "Warning"
	case StatusError:
		return "Error"
	case StatusCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

func (k StatusKind) level() slog.Level {
	switch k {
	case StatusInformation:
		return slog.LevelInfo
	case StatusWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// StatusEntry is the JSON document published to NATS for each status message.
type StatusEntry struct {
	Timestamp string `json:"timestamp"` // RFC3339 format
	Kind      string `json:"kind"`
	Component string `json:"component"`
	FlowID    string `json:"flow_id"`
	Message   string `json:"message"`
}

// StatusLogger emits component status messages. It logs locally through slog and,
// when a NATS connection is set, publishes a StatusEntry to
// status.<flow_id>.<component>. Publishing failures are logged, never returned.
type StatusLogger struct {
	componentName string
	flowID        string
	nc            *nats.Conn
	logger        *slog.Logger
	metrics       *metric.Metrics
}

// NewStatusLogger creates a status logger for one component.
func NewStatusLogger(componentName, flowID string, nc *nats.Conn, logger *slog.Logger, metrics *metric.Metrics) *StatusLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusLogger{
		componentName: componentName,
		flowID:        flowID,
		nc:            nc,
		logger:        logger,
		metrics:       metrics,
	}
}

// Subject returns the NATS subject status entries are published to.
func (sl *StatusLogger) Subject() string {
	return fmt.Sprintf("status.%s.%s", subjectToken(sl.flowID), subjectToken(sl.componentName))
}

// subjectToken keeps a name usable as a single NATS subject token.
func subjectToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', ' ', '\t', '*', '>':
			return '_'
		}
		return r
	}, s)
}

// Status emits a message of the given kind.
func (sl *StatusLogger) Status(kind StatusKind, msg string) {
	sl.StatusContext(context.Background(), kind, msg)
}

// StatusContext emits a message of the given kind with context.
func (sl *StatusLogger) StatusContext(ctx context.Context, kind StatusKind, msg string) {
	sl.logger.Log(ctx, kind.level(), msg, "component", sl.componentName, "kind", kind.String())

	if sl.metrics != nil && kind >= StatusError {
		sl.metrics.RecordStatus(kind.String())
	}

	sl.publish(ctx, kind, msg)
}

func (sl *StatusLogger) publish(ctx context.Context, kind StatusKind, msg string) {
	nc := sl.nc
	if nc == nil {
		return
	}

	select {
	case <-ctx.Done():
		return
	default:
	}

	entry := StatusEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Kind:      kind.String(),
		Component: sl.componentName,
		FlowID:    sl.flowID,
		Message:   msg,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		sl.logger.Error("Failed to marshal status entry", "error", err)
		return
	}

	subject := sl.Subject()
	if err := nc.Publish(subject, data); err != nil {
		sl.logger.Error("Failed to publish status to NATS", "error", err, "subject", subject)
	}
}
