package flowengine

import (
	"time"

	"github.com/s3a-spatialaudio/VISR-sub001/metric"
)

// flowMetrics labels the shared flow metrics with one flow id. A nil metric set
// disables recording.
type flowMetrics struct {
	m    *metric.Metrics
	flow string
}

func (fm flowMetrics) recordBlock() {
	if fm.m == nil {
		return
	}
	fm.m.RecordBlock(fm.flow)
}

func (fm flowMetrics) recordProcess(component string, d time.Duration, err error) {
	if fm.m == nil {
		return
	}
	fm.m.RecordProcessDuration(fm.flow, component, d)
	if err != nil {
		fm.m.RecordProcessFailure(fm.flow, component)
	}
}

func (fm flowMetrics) recordBuild(d time.Duration) {
	if fm.m == nil {
		return
	}
	fm.m.RecordBuild(d)
}

func (fm flowMetrics) protocolInstances(protocol string, delta int) {
	if fm.m == nil {
		return
	}
	fm.m.AddProtocolInstances(protocol, delta)
}
