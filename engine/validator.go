package flowengine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/s3a-spatialaudio/VISR-sub001/component/flowgraph"
)

// ValidationError reports a graph analysis that found errors.
type ValidationError struct {
	Result flowgraph.AnalysisResult
}

func (e *ValidationError) Error() string {
	var required []string
	for _, p := range e.Result.OrphanedPorts {
		if p.Required {
			required = append(required, fmt.Sprintf("%s.%s%v", p.ComponentName, p.PortName, p.Channels))
		}
	}
	if len(required) == 0 {
		return "flow validation failed"
	}
	return fmt.Sprintf("flow validation failed: unconnected inputs %s", strings.Join(required, ", "))
}

// validate analyses g. Findings that do not prevent execution are logged.
func validate(g *flowgraph.FlowGraph, logger *slog.Logger) (flowgraph.AnalysisResult, error) {
	result := g.Analyze()
	if result.ValidationStatus == flowgraph.StatusErrors {
		return result, &ValidationError{Result: result}
	}

	for _, p := range result.OrphanedPorts {
		logger.Warn("Flow validation warning",
			"type", p.Issue,
			"component", p.ComponentName,
			"port", p.PortName,
			"channels", p.Channels)
	}
	for _, n := range result.DisconnectedNodes {
		logger.Warn("Flow validation warning",
			"type", n.Issue,
			"component", n.ComponentName)
	}
	return result, nil
}
