// Package component implements the hierarchical component and port model of a
// signal flow.
//
// Atomic components perform one processing step per audio block. Composite
// components own child components and the audio and parameter connection tables
// that wire their children and their own external ports together. Ports are
// created against an owning component and register themselves with it.
package component

import (
	"fmt"
	"slices"
	"strings"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// NameSeparator joins component names in FullName.
const NameSeparator = ":"

// reservedNameChars may not appear in component or port names.
const reservedNameChars = NameSeparator + "/"

// Component is a named node of a signal flow owning audio and parameter ports.
type Component interface {
	// Name returns the local name, unique among siblings.
	Name() string
	// FullName returns the hierarchical name without the top-level component's name.
	FullName() string
	// Parent returns the enclosing composite, nil for a top-level component.
	Parent() *Composite
	IsComposite() bool
	IsAtomic() bool
	Context() *SignalFlowContext

	AudioPorts() []AudioPort
	ParameterPorts() []ParameterPort
	AudioPort(name string) (AudioPort, bool)
	ParameterPort(name string) (ParameterPort, bool)

	// Status emits a status message attributed to the component.
	Status(kind StatusKind, format string, args ...any)

	// Close tears the component down and removes it from its parent.
	Close() error

	base() *Base
}

// Base holds the state shared by atomic and composite components.
type Base struct {
	name   string
	parent *Composite
	ctx    *SignalFlowContext
	self   Component
	status *StatusLogger
	closed bool

	audioPorts []AudioPort
	paramPorts []ParameterPort
}

func (b *Base) init(self Component, ctx *SignalFlowContext, name string, parent *Composite) error {
	if ctx == nil {
		return errors.WrapFatal(errors.ErrMissingConfig, "Component", "New", "nil signal flow context")
	}
	if name == "" {
		return errors.Invalidf(errors.ErrInvalidConfig, "Component", "New", "component name must not be empty")
	}
	if name == ThisComponent {
		return errors.Invalidf(errors.ErrInvalidConfig, "Component", "New",
			"component name %q is reserved", ThisComponent)
	}
	if strings.ContainsAny(name, reservedNameChars) {
		return errors.Invalidf(errors.ErrInvalidConfig, "Component", "New",
			"component name %q contains one of %q", name, reservedNameChars)
	}
	b.name = name
	b.parent = parent
	b.ctx = ctx
	b.self = self

	if parent != nil {
		if err := parent.addChild(self); err != nil {
			return err
		}
	}
	b.status = NewStatusLogger(b.FullName(), ctx.FlowID(), ctx.nc, ctx.Logger(), ctx.Metrics())
	return nil
}

func (b *Base) base() *Base { return b }

// Name implements Component.
func (b *Base) Name() string { return b.name }

// FullName implements Component.
func (b *Base) FullName() string {
	if b.parent == nil || b.parent.parent == nil {
		return b.name
	}
	return b.parent.FullName() + NameSeparator + b.name
}

// Parent implements Component.
func (b *Base) Parent() *Composite { return b.parent }

// Context implements Component.
func (b *Base) Context() *SignalFlowContext { return b.ctx }

// TopLevel reports whether the component has no parent.
func (b *Base) TopLevel() bool { return b.parent == nil }

// AudioPorts implements Component. Ports are returned in creation order.
func (b *Base) AudioPorts() []AudioPort { return slices.Clone(b.audioPorts) }

// ParameterPorts implements Component. Ports are returned in creation order.
func (b *Base) ParameterPorts() []ParameterPort { return slices.Clone(b.paramPorts) }

// AudioPort implements Component.
func (b *Base) AudioPort(name string) (AudioPort, bool) {
	for _, p := range b.audioPorts {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// ParameterPort implements Component.
func (b *Base) ParameterPort(name string) (ParameterPort, bool) {
	for _, p := range b.paramPorts {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Status implements Component.
func (b *Base) Status(kind StatusKind, format string, args ...any) {
	b.status.Status(kind, fmt.Sprintf(format, args...))
}

// StatusLogger returns the component's status logger.
func (b *Base) StatusLogger() *StatusLogger { return b.status }

func (b *Base) addAudioPort(p AudioPort) error {
	if b.closed {
		return errors.Usagef(errors.ErrClosed, b.FullName(), "AddAudioPort", "cannot add port %q", p.Name())
	}
	if _, ok := b.AudioPort(p.Name()); ok {
		return errors.Invalidf(errors.ErrDuplicateName, b.FullName(), "AddAudioPort",
			"audio port %q already exists", p.Name())
	}
	b.audioPorts = append(b.audioPorts, p)
	return nil
}

func (b *Base) addParameterPort(p ParameterPort) error {
	if b.closed {
		return errors.Usagef(errors.ErrClosed, b.FullName(), "AddParameterPort", "cannot add port %q", p.Name())
	}
	if _, ok := b.ParameterPort(p.Name()); ok {
		return errors.Invalidf(errors.ErrDuplicateName, b.FullName(), "AddParameterPort",
			"parameter port %q already exists", p.Name())
	}
	b.paramPorts = append(b.paramPorts, p)
	return nil
}

// closePorts releases the ports and removes the component from its parent's tables.
func (b *Base) closePorts() error {
	for _, p := range b.audioPorts {
		p.Reset()
	}
	if b.parent != nil {
		if err := b.parent.removeChild(b.self); err != nil {
			return err
		}
	}
	b.audioPorts = nil
	b.paramPorts = nil
	b.closed = true
	return nil
}

// String implements fmt.Stringer.
func (b *Base) String() string {
	kind := "atomic"
	if b.self != nil && b.self.IsComposite() {
		kind = "composite"
	}
	return fmt.Sprintf("%s(%s)", kind, b.FullName())
}
