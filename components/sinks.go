package components

import (
	"math"

	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/doublebuffering"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/messagequeue"
)

// QueueSink drains its "in" MessageQueue input every block. Each value is
// appended to Received, passed to OnValue when set and reported as an
// information status message.
type QueueSink struct {
	*component.Atomic
	In *component.ParameterInput[*messagequeue.Input[*parameter.Scalar[float64]]]

	Received []float64
	OnValue  func(float64)
}

// NewQueueSink creates a queue sink for double values.
func NewQueueSink(ctx *component.SignalFlowContext, name string, parent *component.Composite) (*QueueSink, error) {
	s := &QueueSink{}
	var err error
	if s.Atomic, err = component.NewAtomic(ctx, name, parent, s); err != nil {
		return nil, err
	}
	s.In, err = component.NewParameterInput(s, "in", parameter.TypeDouble, nil,
		messagequeue.NewInput[*parameter.Scalar[float64]])
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Process implements component.Processor.
func (s *QueueSink) Process() error {
	q := s.In.Protocol()
	for !q.Empty() {
		v, err := q.Pop()
		if err != nil {
			return errors.Wrap(err, s.FullName(), "Process", "drain queue")
		}
		s.Received = append(s.Received, v.Value)
		if s.OnValue != nil {
			s.OnValue(v.Value)
		}
		s.Status(component.StatusInformation, "received %g", v.Value)
	}
	return nil
}

// LevelMeter publishes the RMS level of all channels of "in" on its "level"
// DoubleBuffering output once per block.
type LevelMeter struct {
	*component.Atomic
	In    *component.AudioInput[float32]
	Level *component.ParameterOutput[*doublebuffering.Output[*parameter.Scalar[float64]]]

	// Threshold, when positive, raises a warning status for every block whose
	// level exceeds it.
	Threshold float64
}

// NewLevelMeter creates a level meter with width input channels.
func NewLevelMeter(ctx *component.SignalFlowContext, name string, parent *component.Composite, width int) (*LevelMeter, error) {
	m := &LevelMeter{}
	var err error
	if m.Atomic, err = component.NewAtomic(ctx, name, parent, m); err != nil {
		return nil, err
	}
	if m.In, err = component.NewAudioInput[float32](m, "in", width); err != nil {
		return nil, err
	}
	m.Level, err = component.NewParameterOutput(m, "level", parameter.TypeDouble, nil,
		doublebuffering.NewOutput[*parameter.Scalar[float64]])
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Process implements component.Processor.
func (m *LevelMeter) Process() error {
	var sum float64
	n := 0
	for ch := 0; ch < m.In.Width(); ch++ {
		for _, v := range m.In.Channel(ch) {
			sum += float64(v) * float64(v)
			n++
		}
	}
	level := 0.0
	if n > 0 {
		level = math.Sqrt(sum / float64(n))
	}

	out := m.Level.Protocol()
	p, err := out.Data()
	if err != nil {
		return errors.Wrap(err, m.FullName(), "Process", "write level")
	}
	p.Value = level
	if err := out.SwapBuffers(); err != nil {
		return errors.Wrap(err, m.FullName(), "Process", "publish level")
	}
	if m.Threshold > 0 && level > m.Threshold {
		m.Status(component.StatusWarning, "level %.3f above %.3f", level, m.Threshold)
	}
	return nil
}
