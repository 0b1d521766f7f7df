package shareddata

import (
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol"
)

// Input reads the shared instance as T.
type Input[T parameter.Parameter] struct {
	proto *Protocol
	data  T
}

// NewInput creates an unattached input.
func NewInput[T parameter.Parameter]() *Input[T] {
	return &Input[T]{}
}

// ProtocolType implements protocol.Endpoint.
func (in *Input[T]) ProtocolType() protocol.TypeID { return Type }

// Connected implements protocol.Endpoint.
func (in *Input[T]) Connected() bool { return in.proto != nil }

// Data returns the shared instance. Mutating it through an input is a misuse.
func (in *Input[T]) Data() (T, error) {
	if in.proto == nil {
		var zero T
		return zero, protocol.NotConnected(Name, "Input.Data")
	}
	return in.data, nil
}

func (in *Input[T]) attachInput(p *Protocol) error {
	if in.proto != nil {
		return errors.Invalidf(errors.ErrAlreadyConnected, Name, "ConnectInput",
			"input is attached to another protocol instance")
	}
	if err := protocol.CheckData[T](Name, "ConnectInput", p.data); err != nil {
		return err
	}
	in.proto = p
	in.data = p.data.(T)
	return nil
}

func (in *Input[T]) detach() {
	var zero T
	in.proto = nil
	in.data = zero
}

// Output writes the shared instance as T.
type Output[T parameter.Parameter] struct {
	proto *Protocol
	data  T
}

// NewOutput creates an unattached output.
func NewOutput[T parameter.Parameter]() *Output[T] {
	return &Output[T]{}
}

// ProtocolType implements protocol.Endpoint.
func (out *Output[T]) ProtocolType() protocol.TypeID { return Type }

// Connected implements protocol.Endpoint.
func (out *Output[T]) Connected() bool { return out.proto != nil }

// Data returns the shared instance for in-place mutation.
func (out *Output[T]) Data() (T, error) {
	if out.proto == nil {
		var zero T
		return zero, protocol.NotConnected(Name, "Output.Data")
	}
	return out.data, nil
}

// SetData copies v into the shared instance.
func (out *Output[T]) SetData(v T) error {
	if out.proto == nil {
		return protocol.NotConnected(Name, "Output.SetData")
	}
	return out.data.Assign(v)
}

func (out *Output[T]) attachOutput(p *Protocol) error {
	if out.proto != nil {
		return errors.Invalidf(errors.ErrAlreadyConnected, Name, "ConnectOutput",
			"output is attached to another protocol instance")
	}
	if err := protocol.CheckData[T](Name, "ConnectOutput", p.data); err != nil {
		return err
	}
	out.proto = p
	out.data = p.data.(T)
	return nil
}

func (out *Output[T]) detach() {
	var zero T
	out.proto = nil
	out.data = zero
}
