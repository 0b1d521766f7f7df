package component_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/doublebuffering"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/messagequeue"
	"github.com/s3a-spatialaudio/VISR-sub001/protocolregistry"
)

const testPeriod = 64

func newTestContext(t *testing.T) *component.SignalFlowContext {
	t.Helper()
	_, protocols, err := protocolregistry.New()
	require.NoError(t, err)
	ctx, err := component.NewContext(testPeriod, 48000,
		component.WithProtocols(protocols), component.WithFlowID("test-flow"))
	require.NoError(t, err)
	return ctx
}

// passthrough is a minimal atomic component with one audio input and output.
type passthrough struct {
	*component.Atomic
	in  *component.AudioInput[float32]
	out *component.AudioOutput[float32]
	ctl *component.ParameterInput[*doublebuffering.Input[*parameter.Scalar[float64]]]
	evt *component.ParameterOutput[*messagequeue.Output[*parameter.Scalar[float64]]]
	mon *component.ParameterOutput[*doublebuffering.Output[*parameter.Scalar[float64]]]

	calls int
}

func (p *passthrough) Process() error {
	p.calls++
	for ch := 0; ch < p.in.Width(); ch++ {
		copy(p.out.Channel(ch), p.in.Channel(ch))
	}
	return nil
}

func newPassthrough(t *testing.T, ctx *component.SignalFlowContext, name string,
	parent *component.Composite, width int) *passthrough {
	t.Helper()
	p := &passthrough{}
	var err error
	p.Atomic, err = component.NewAtomic(ctx, name, parent, p)
	require.NoError(t, err)
	p.in, err = component.NewAudioInput[float32](p, "in", width)
	require.NoError(t, err)
	p.out, err = component.NewAudioOutput[float32](p, "out", width)
	require.NoError(t, err)
	p.ctl, err = component.NewParameterInput(p, "gain", parameter.TypeDouble, nil,
		doublebuffering.NewInput[*parameter.Scalar[float64]])
	require.NoError(t, err)
	p.evt, err = component.NewParameterOutput(p, "events", parameter.TypeDouble, nil,
		messagequeue.NewOutput[*parameter.Scalar[float64]])
	require.NoError(t, err)
	p.mon, err = component.NewParameterOutput(p, "level", parameter.TypeDouble, nil,
		doublebuffering.NewOutput[*parameter.Scalar[float64]])
	require.NoError(t, err)
	return p
}
