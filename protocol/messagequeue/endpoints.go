package messagequeue

import (
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol"
)

// Input dequeues values as T.
type Input[T parameter.Parameter] struct {
	proto *Protocol
}

// NewInput creates an unattached input.
func NewInput[T parameter.Parameter]() *Input[T] {
	return &Input[T]{}
}

// ProtocolType implements protocol.Endpoint.
func (in *Input[T]) ProtocolType() protocol.TypeID { return Type }

// Connected implements protocol.Endpoint.
func (in *Input[T]) Connected() bool { return in.proto != nil }

// Empty reports whether no value is pending. An unattached input is empty.
func (in *Input[T]) Empty() bool {
	return in.proto == nil || in.proto.Empty()
}

// Size returns the number of pending values.
func (in *Input[T]) Size() int {
	if in.proto == nil {
		return 0
	}
	return in.proto.Size()
}

// Front returns the oldest pending value without removing it.
func (in *Input[T]) Front() (T, error) {
	var zero T
	if in.proto == nil {
		return zero, protocol.NotConnected(Name, "Input.Front")
	}
	v, err := in.proto.Front()
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// Pop removes and returns the oldest pending value.
func (in *Input[T]) Pop() (T, error) {
	var zero T
	if in.proto == nil {
		return zero, protocol.NotConnected(Name, "Input.Pop")
	}
	v, err := in.proto.Pop()
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// Clear discards all pending values.
func (in *Input[T]) Clear() {
	if in.proto != nil {
		in.proto.Clear()
	}
}

func (in *Input[T]) attachInput(p *Protocol) error {
	if in.proto != nil {
		return errors.Invalidf(errors.ErrAlreadyConnected, Name, "ConnectInput",
			"input is attached to another protocol instance")
	}
	if err := protocol.CheckData[T](Name, "ConnectInput", p.prototype); err != nil {
		return err
	}
	in.proto = p
	return nil
}

func (in *Input[T]) detach() { in.proto = nil }

// Output enqueues values of type T.
type Output[T parameter.Parameter] struct {
	proto *Protocol
}

// NewOutput creates an unattached output.
func NewOutput[T parameter.Parameter]() *Output[T] {
	return &Output[T]{}
}

// ProtocolType implements protocol.Endpoint.
func (out *Output[T]) ProtocolType() protocol.TypeID { return Type }

// Connected implements protocol.Endpoint.
func (out *Output[T]) Connected() bool { return out.proto != nil }

// Enqueue appends a copy of v.
func (out *Output[T]) Enqueue(v T) error {
	if out.proto == nil {
		return protocol.NotConnected(Name, "Output.Enqueue")
	}
	return out.proto.Enqueue(v)
}

// Size returns the number of values not yet consumed.
func (out *Output[T]) Size() int {
	if out.proto == nil {
		return 0
	}
	return out.proto.Size()
}

func (out *Output[T]) attachOutput(p *Protocol) error {
	if out.proto != nil {
		return errors.Invalidf(errors.ErrAlreadyConnected, Name, "ConnectOutput",
			"output is attached to another protocol instance")
	}
	if err := protocol.CheckData[T](Name, "ConnectOutput", p.prototype); err != nil {
		return err
	}
	out.proto = p
	return nil
}

func (out *Output[T]) detach() { out.proto = nil }
