package components

import (
	"github.com/s3a-spatialaudio/VISR-sub001/component"
)

// Constant writes Value to every sample of every channel of "out".
type Constant struct {
	*component.Atomic
	Out   *component.AudioOutput[float32]
	Value float32
}

// NewConstant creates a constant source with width channels.
func NewConstant(ctx *component.SignalFlowContext, name string, parent *component.Composite, width int, value float32) (*Constant, error) {
	c := &Constant{Value: value}
	var err error
	if c.Atomic, err = component.NewAtomic(ctx, name, parent, c); err != nil {
		return nil, err
	}
	if c.Out, err = component.NewAudioOutput[float32](c, "out", width); err != nil {
		return nil, err
	}
	return c, nil
}

// Process implements component.Processor.
func (c *Constant) Process() error {
	for ch := 0; ch < c.Out.Width(); ch++ {
		out := c.Out.Channel(ch)
		for i := range out {
			out[i] = c.Value
		}
	}
	return nil
}
