package doublebuffering

import (
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol"
)

// Input reads the front buffer as T and tracks publications.
type Input[T parameter.Parameter] struct {
	proto   *Protocol
	changed bool
}

// NewInput creates an unattached input. Its changed flag starts set, so the first
// read after construction observes a value.
func NewInput[T parameter.Parameter]() *Input[T] {
	return &Input[T]{changed: true}
}

// ProtocolType implements protocol.Endpoint.
func (in *Input[T]) ProtocolType() protocol.TypeID { return Type }

// Connected implements protocol.Endpoint.
func (in *Input[T]) Connected() bool { return in.proto != nil }

// Data returns the current front buffer.
func (in *Input[T]) Data() (T, error) {
	if in.proto == nil {
		var zero T
		return zero, protocol.NotConnected(Name, "Input.Data")
	}
	return in.proto.front.(T), nil
}

// Changed reports whether a swap happened since the last ResetChanged.
func (in *Input[T]) Changed() bool { return in.changed }

// ResetChanged clears the changed flag after the reader consumed the value.
func (in *Input[T]) ResetChanged() { in.changed = false }

// Swaps returns the number of publications of the attached protocol, 0 while
// unattached.
func (in *Input[T]) Swaps() uint64 {
	if in.proto == nil {
		return 0
	}
	return in.proto.Swaps()
}

func (in *Input[T]) markChanged() { in.changed = true }

func (in *Input[T]) attachInput(p *Protocol) error {
	if in.proto != nil {
		return errors.Invalidf(errors.ErrAlreadyConnected, Name, "ConnectInput",
			"input is attached to another protocol instance")
	}
	if err := protocol.CheckData[T](Name, "ConnectInput", p.front); err != nil {
		return err
	}
	in.proto = p
	return nil
}

func (in *Input[T]) detach() { in.proto = nil }

// Output writes the back buffer as T.
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

// Data returns the back buffer for in-place mutation. The returned instance changes
// after every swap.
func (out *Output[T]) Data() (T, error) {
	if out.proto == nil {
		var zero T
		return zero, protocol.NotConnected(Name, "Output.Data")
	}
	return out.proto.back.(T), nil
}

// SetData copies v into the back buffer.
func (out *Output[T]) SetData(v T) error {
	if out.proto == nil {
		return protocol.NotConnected(Name, "Output.SetData")
	}
	return out.proto.back.Assign(v)
}

// SwapBuffers publishes the back buffer.
func (out *Output[T]) SwapBuffers() error {
	if out.proto == nil {
		return protocol.NotConnected(Name, "Output.SwapBuffers")
	}
	out.proto.SwapBuffers()
	return nil
}

func (out *Output[T]) attachOutput(p *Protocol) error {
	if out.proto != nil {
		return errors.Invalidf(errors.ErrAlreadyConnected, Name, "ConnectOutput",
			"output is attached to another protocol instance")
	}
	if err := protocol.CheckData[T](Name, "ConnectOutput", p.back); err != nil {
		return err
	}
	out.proto = p
	return nil
}

func (out *Output[T]) detach() { out.proto = nil }
