package components

import (
	"fmt"

	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// Sum adds inputs "in0" ... "in<n-1>" channel by channel into "out".
type Sum struct {
	*component.Atomic
	Inputs []*component.AudioInput[float32]
	Out    *component.AudioOutput[float32]
}

// NewSum creates a sum of inputs signals with width channels each.
func NewSum(ctx *component.SignalFlowContext, name string, parent *component.Composite, inputs, width int) (*Sum, error) {
	if inputs < 1 {
		return nil, errors.Invalidf(errors.ErrInvalidConfig, "Sum", "New",
			"%s needs at least one input, got %d", name, inputs)
	}
	s := &Sum{}
	var err error
	if s.Atomic, err = component.NewAtomic(ctx, name, parent, s); err != nil {
		return nil, err
	}
	for i := 0; i < inputs; i++ {
		in, err := component.NewAudioInput[float32](s, fmt.Sprintf("in%d", i), width)
		if err != nil {
			return nil, err
		}
		s.Inputs = append(s.Inputs, in)
	}
	if s.Out, err = component.NewAudioOutput[float32](s, "out", width); err != nil {
		return nil, err
	}
	return s, nil
}

// Process implements component.Processor.
func (s *Sum) Process() error {
	for ch := 0; ch < s.Out.Width(); ch++ {
		out := s.Out.Channel(ch)
		copy(out, s.Inputs[0].Channel(ch))
		for _, in := range s.Inputs[1:] {
			for i, v := range in.Channel(ch) {
				out[i] += v
			}
		}
	}
	return nil
}
