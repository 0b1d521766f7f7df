package component

import (
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// Processor is the per-block processing step of an atomic component.
// Process must not block.
type Processor interface {
	Process() error
}

// ProcessFunc adapts a function to Processor.
type ProcessFunc func() error

// Process implements Processor.
func (f ProcessFunc) Process() error { return f() }

// Atomic is a leaf component performing one processing step per audio block.
//
// Concrete components usually embed *Atomic and pass themselves as the Processor:
//
//	g := &Gain{}
//	g.Atomic, err = component.NewAtomic(ctx, "gain", parent, g)
//
// The embedding type must then define its own Process method.
type Atomic struct {
	Base
	proc Processor
}

var _ Component = (*Atomic)(nil)

// NewAtomic creates an atomic component and registers it with parent, if any.
func NewAtomic(ctx *SignalFlowContext, name string, parent *Composite, proc Processor) (*Atomic, error) {
	a := &Atomic{proc: proc}
	if err := a.init(a, ctx, name, parent); err != nil {
		return nil, errors.Wrap(err, "Atomic", "New", "register component "+name)
	}
	return a, nil
}

// IsComposite implements Component.
func (a *Atomic) IsComposite() bool { return false }

// IsAtomic implements Component.
func (a *Atomic) IsAtomic() bool { return true }

// Processor returns the processing step.
func (a *Atomic) Processor() Processor { return a.proc }

// Process runs one block of the processing step.
func (a *Atomic) Process() error {
	if a.proc == nil {
		return errors.Usagef(errors.ErrNotConnected, a.FullName(), "Process", "no processor set")
	}
	return a.proc.Process()
}

// Close implements Component.
func (a *Atomic) Close() error {
	if a.closed {
		return nil
	}
	return a.closePorts()
}
