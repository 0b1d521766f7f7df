// Package messagequeue implements the MessageQueue protocol: an unbounded FIFO of
// discrete parameter values between exactly one output and one input.
//
// Every enqueued value is observed once, in order. Peeking or popping an empty queue
// is a usage error; readers check Empty first.
package messagequeue

import (
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/pkg/buffer"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol"
)

// Name is the protocol name.
const Name = "MessageQueue"

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

// Protocol is a MessageQueue instance.
type Protocol struct {
	protocol.Base
	prototype parameter.Parameter
	queue     *buffer.Ring[parameter.Parameter]
	input     input
	output    output
}

var _ protocol.Protocol = (*Protocol)(nil)

// New creates an empty queue for values of paramType. The configuration is validated
// by creating one prototype value.
func New(paramType parameter.TypeID, cfg parameter.Config, params *parameter.Registry,
	options ...buffer.Option[parameter.Parameter]) (*Protocol, error) {
	prototype, err := params.Create(paramType, cfg)
	if err != nil {
		return nil, errors.Wrap(err, Name, "New", "parameter creation")
	}
	queue, err := buffer.NewRing(options...)
	if err != nil {
		return nil, errors.Wrap(err, Name, "New", "queue creation")
	}
	return &Protocol{
		Base:      protocol.NewBase(Name, paramType),
		prototype: prototype,
		queue:     queue,
	}, nil
}

// Register adds MessageQueue to a protocol registry.
func Register(r *protocol.Registry) error {
	return r.Register(&protocol.Registration{
		Name:        Name,
		Description: "Unbounded FIFO of discrete values, single producer and consumer",
		Constructor: func(paramType parameter.TypeID, cfg parameter.Config, params *parameter.Registry) (protocol.Protocol, error) {
			p, err := New(paramType, cfg, params)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		NewInput:        func() protocol.Input { return NewInput[parameter.Parameter]() },
		NewOutput:       func() protocol.Output { return NewOutput[parameter.Parameter]() },
		MultipleInputs:  false,
		MultipleOutputs: false,
	})
}

// Empty reports whether the queue holds no values.
func (p *Protocol) Empty() bool { return p.queue.IsEmpty() }

// Size returns the number of queued values.
func (p *Protocol) Size() int { return p.queue.Size() }

// Clear discards all queued values.
func (p *Protocol) Clear() { p.queue.Clear() }

// Stats returns the queue statistics.
func (p *Protocol) Stats() *buffer.Statistics { return p.queue.Stats() }

// Enqueue appends a copy of v at the back.
func (p *Protocol) Enqueue(v parameter.Parameter) error {
	if v == nil || v.Type() != p.ParameterType() {
		return errors.Invalidf(errors.ErrTypeMismatch, Name, "Enqueue",
			"value %T does not carry parameter type %s", v, p.ParameterType())
	}
	p.queue.Write(v.Clone())
	return nil
}

// Front returns the oldest value without removing it.
func (p *Protocol) Front() (parameter.Parameter, error) {
	v, ok := p.queue.Peek()
	if !ok {
		return nil, errors.Usagef(errors.ErrEmptyQueue, Name, "Front", "no value to peek")
	}
	return v, nil
}

// Pop removes and returns the oldest value.
func (p *Protocol) Pop() (parameter.Parameter, error) {
	v, ok := p.queue.Read()
	if !ok {
		return nil, errors.Usagef(errors.ErrEmptyQueue, Name, "Pop", "no value to pop")
	}
	return v, nil
}

// ConnectInput attaches the input. A second distinct input fails.
func (p *Protocol) ConnectInput(in protocol.Input) error {
	if err := p.CheckEndpoint(in, "ConnectInput"); err != nil {
		return err
	}
	e, ok := in.(input)
	if !ok {
		return errors.Invalidf(errors.ErrEndpointMismatch, Name, "ConnectInput",
			"%T is not a %s input", in, Name)
	}
	if p.input == e {
		return nil
	}
	if p.input != nil {
		return errors.Invalidf(errors.ErrAlreadyConnected, Name, "ConnectInput",
			"protocol already has an input")
	}
	if err := e.attachInput(p); err != nil {
		return err
	}
	p.input = e
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

// DisconnectInput detaches the input and reports whether it was attached.
func (p *Protocol) DisconnectInput(in protocol.Input) bool {
	e, ok := in.(input)
	if !ok || p.input == nil || p.input != e {
		return false
	}
	e.detach()
	p.input = nil
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
