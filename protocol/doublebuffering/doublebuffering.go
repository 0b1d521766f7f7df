// Package doublebuffering implements the DoubleBuffering protocol.
//
// An instance holds a front buffer read by any number of inputs and a back buffer
// written by at most one output. SwapBuffers exchanges the two by reference and is
// the single publication point: inputs never observe a value while it is written.
// After a swap the back buffer holds the previously published value.
package doublebuffering

import (
	"slices"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol"
)

// Name is the protocol name.
const Name = "DoubleBuffering"

// Type is the protocol type id.
var Type = protocol.ID(Name)

type input interface {
	protocol.Input
	attachInput(p *Protocol) error
	detach()
	markChanged()
}

type output interface {
	protocol.Output
	attachOutput(p *Protocol) error
	detach()
}

// Protocol is a DoubleBuffering instance.
type Protocol struct {
	protocol.Base
	front  parameter.Parameter
	back   parameter.Parameter
	swaps  uint64
	output output
	inputs []input
}

var _ protocol.Protocol = (*Protocol)(nil)

// New creates a DoubleBuffering instance with two parameter instances of paramType.
func New(paramType parameter.TypeID, cfg parameter.Config, params *parameter.Registry) (*Protocol, error) {
	front, err := params.Create(paramType, cfg)
	if err != nil {
		return nil, errors.Wrap(err, Name, "New", "front buffer creation")
	}
	back, err := params.Create(paramType, cfg)
	if err != nil {
		return nil, errors.Wrap(err, Name, "New", "back buffer creation")
	}
	return &Protocol{Base: protocol.NewBase(Name, paramType), front: front, back: back}, nil
}

// Register adds DoubleBuffering to a protocol registry.
func Register(r *protocol.Registry) error {
	return r.Register(&protocol.Registration{
		Name:        Name,
		Description: "Front/back buffer pair published by reference swap",
		Constructor: func(paramType parameter.TypeID, cfg parameter.Config, params *parameter.Registry) (protocol.Protocol, error) {
			p, err := New(paramType, cfg, params)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		NewInput:        func() protocol.Input { return NewInput[parameter.Parameter]() },
		NewOutput:       func() protocol.Output { return NewOutput[parameter.Parameter]() },
		MultipleInputs:  true,
		MultipleOutputs: false,
	})
}

// Front returns the read-visible buffer.
func (p *Protocol) Front() parameter.Parameter { return p.front }

// Back returns the write target.
func (p *Protocol) Back() parameter.Parameter { return p.back }

// Swaps returns the number of publications so far.
func (p *Protocol) Swaps() uint64 { return p.swaps }

// SwapBuffers publishes the back buffer and marks every input changed.
func (p *Protocol) SwapBuffers() {
	p.front, p.back = p.back, p.front
	p.swaps++
	for _, in := range p.inputs {
		in.markChanged()
	}
}

// ConnectInput attaches an input. Any number of inputs may attach.
func (p *Protocol) ConnectInput(in protocol.Input) error {
	if err := p.CheckEndpoint(in, "ConnectInput"); err != nil {
		return err
	}
	e, ok := in.(input)
	if !ok {
		return errors.Invalidf(errors.ErrEndpointMismatch, Name, "ConnectInput",
			"%T is not a %s input", in, Name)
	}
	if slices.Contains(p.inputs, e) {
		return nil
	}
	if err := e.attachInput(p); err != nil {
		return err
	}
	p.inputs = append(p.inputs, e)
	return nil
}

// ConnectOutput attaches the output. A second distinct output fails.
func (p *Protocol) ConnectOutput(out protocol.Output) error {
	if err := p.CheckEndpoint(out, "ConnectOutput"); err != nil {
		return err
	}
	e, ok := out.(output)
	if !ok {
		return errors.Invalidf(errors.ErrEndpointMismatch, Name, "ConnectOutput",
			"%T is not a %s output", out, Name)
	}
	if p.output == e {
		return nil
	}
	if p.output != nil {
		return errors.Invalidf(errors.ErrAlreadyConnected, Name, "ConnectOutput",
			"protocol already has an output")
	}
	if err := e.attachOutput(p); err != nil {
		return err
	}
	p.output = e
	return nil
}

// DisconnectInput detaches an input and reports whether it was attached.
func (p *Protocol) DisconnectInput(in protocol.Input) bool {
	e, ok := in.(input)
	if !ok {
		return false
	}
	idx := slices.Index(p.inputs, e)
	if idx < 0 {
		return false
	}
	e.detach()
	p.inputs = slices.Delete(p.inputs, idx, idx+1)
	return true
}

// DisconnectOutput detaches the output and reports whether it was attached.
func (p *Protocol) DisconnectOutput(out protocol.Output) bool {
	e, ok := out.(output)
	if !ok || p.output == nil || p.output != e {
		return false
	}
	e.detach()
	p.output = nil
	return true
}
