// Package shareddata implements the SharedData protocol: one parameter instance
// shared by reference between at most one output and any number of inputs.
//
// No copy or synchronization takes place. Readers observe whatever the writer last
// wrote; the scheduler orders the writer's update before the readers of an iteration.
package shareddata

import (
	"slices"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol"
)

// Name is the protocol name.
const Name = "SharedData"

// Type is the protocol type id.
var Type = protocol.ID(Name)

type input interface {
	protocol.Input
	attachInput(p *Protocol) error
	detach()
}

type output interface {
	protocol.Output
	attachOutput(p *Protocol) error
	detach()
}

// Protocol is a SharedData instance.
type Protocol struct {
	protocol.Base
	data   parameter.Parameter
	output output
	inputs []input
}

var _ protocol.Protocol = (*Protocol)(nil)

// New creates a SharedData instance holding one parameter of type paramType.
func New(paramType parameter.TypeID, cfg parameter.Config, params *parameter.Registry) (*Protocol, error) {
	data, err := params.Create(paramType, cfg)
	if err != nil {
		return nil, errors.Wrap(err, Name, "New", "parameter creation")
	}
	return &Protocol{Base: protocol.NewBase(Name, paramType), data: data}, nil
}

// Register adds SharedData to a protocol registry.
func Register(r *protocol.Registry) error {
	return r.Register(&protocol.Registration{
		Name:        Name,
		Description: "Single instance shared by reference, no synchronization",
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

// Data returns the shared parameter instance.
func (p *Protocol) Data() parameter.Parameter { return p.data }

// Inputs returns the number of attached inputs.
func (p *Protocol) Inputs() int { return len(p.inputs) }

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
