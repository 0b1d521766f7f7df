package components

import (
	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/doublebuffering"
)

// Gain scales every channel of "in" by the value of its "gain" parameter input.
//
// A new gain published through the DoubleBuffering protocol is approached with a
// linear ramp over one block. The first published value is applied without a
// ramp, also when blocks ran before it was published.
type Gain struct {
	*component.Atomic
	In      *component.AudioInput[float32]
	Out     *component.AudioOutput[float32]
	Control *component.ParameterInput[*doublebuffering.Input[*parameter.Scalar[float64]]]

	current float64
	started bool
}

// NewGain creates a gain with width channels.
func NewGain(ctx *component.SignalFlowContext, name string, parent *component.Composite, width int) (*Gain, error) {
	g := &Gain{}
	var err error
	if g.Atomic, err = component.NewAtomic(ctx, name, parent, g); err != nil {
		return nil, err
	}
	if g.In, err = component.NewAudioInput[float32](g, "in", width); err != nil {
		return nil, err
	}
	if g.Out, err = component.NewAudioOutput[float32](g, "out", width); err != nil {
		return nil, err
	}
	g.Control, err = component.NewParameterInput(g, "gain", parameter.TypeDouble, nil,
		doublebuffering.NewInput[*parameter.Scalar[float64]])
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Current returns the gain reached at the end of the last block.
func (g *Gain) Current() float64 { return g.current }

// Process implements component.Processor.
func (g *Gain) Process() error {
	from := g.current
	ctrl := g.Control.Protocol()
	if ctrl.Changed() {
		p, err := ctrl.Data()
		if err != nil {
			return errors.Wrap(err, g.FullName(), "Process", "read gain")
		}
		ctrl.ResetChanged()
		g.current = p.Value
		if !g.started {
			from = p.Value
		}
		g.started = ctrl.Swaps() > 0
	}

	to := g.current
	for ch := 0; ch < g.In.Width(); ch++ {
		in, out := g.In.Channel(ch), g.Out.Channel(ch)
		if from == to {
			for i, v := range in {
				out[i] = v * float32(to)
			}
			continue
		}
		step := (to - from) / float64(len(in))
		for i, v := range in {
			out[i] = v * float32(from+step*float64(i+1))
		}
	}
	return nil
}
