package component

import (
	"strings"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol"
)

// ParameterPort is a port exchanging values of one parameter type through one
// communication protocol. Its endpoint is attached to a protocol instance when the
// flow is built.
type ParameterPort interface {
	Name() string
	FullName() string
	Direction() Direction
	Owner() Component
	ParameterType() parameter.TypeID
	ProtocolType() protocol.TypeID
	Config() parameter.Config
	SetConfig(cfg parameter.Config) error
	Frozen() bool
	Freeze()
	Unfreeze()
	Endpoint() protocol.Endpoint

	parameterPort() *ParameterPortBase
}

// ParameterPortBase implements the endpoint independent part of ParameterPort.
type ParameterPortBase struct {
	PortBase
	parameterType parameter.TypeID
	protocolType  protocol.TypeID
	config        parameter.Config
	frozen        bool
	endpoint      protocol.Endpoint
}

func (p *ParameterPortBase) parameterPort() *ParameterPortBase { return p }

// ParameterType returns the parameter type id.
func (p *ParameterPortBase) ParameterType() parameter.TypeID { return p.parameterType }

// ProtocolType returns the protocol type id.
func (p *ParameterPortBase) ProtocolType() protocol.TypeID { return p.protocolType }

// Config returns the parameter configuration, possibly nil.
func (p *ParameterPortBase) Config() parameter.Config { return p.config }

// SetConfig replaces the parameter configuration. It fails once the flow is built.
func (p *ParameterPortBase) SetConfig(cfg parameter.Config) error {
	if p.frozen {
		return errors.Usagef(errors.ErrConfigFrozen, p.FullName(), "SetConfig",
			"configuration cannot change after the flow is built")
	}
	p.config = parameter.CloneConfig(cfg)
	return nil
}

// Frozen reports whether the configuration is immutable.
func (p *ParameterPortBase) Frozen() bool { return p.frozen }

// Freeze makes the configuration immutable. Called when the flow is built.
func (p *ParameterPortBase) Freeze() { p.frozen = true }

// Unfreeze makes the configuration mutable again. Called when the flow is torn down.
func (p *ParameterPortBase) Unfreeze() { p.frozen = false }

// Endpoint returns the protocol endpoint held by the port.
func (p *ParameterPortBase) Endpoint() protocol.Endpoint { return p.endpoint }

func newParameterPort(owner Component, name string, dir Direction, paramType parameter.TypeID,
	cfg parameter.Config, endpoint protocol.Endpoint) (ParameterPortBase, error) {
	if owner == nil {
		return ParameterPortBase{}, errors.WrapFatal(errors.ErrMissingConfig, "ParameterPort", "New", "nil owner")
	}
	if name == "" {
		return ParameterPortBase{}, errors.Invalidf(errors.ErrInvalidConfig, owner.FullName(), "NewParameterPort",
			"port name must not be empty")
	}
	if strings.ContainsAny(name, reservedNameChars) {
		return ParameterPortBase{}, errors.Invalidf(errors.ErrInvalidConfig, owner.FullName(), "NewParameterPort",
			"port name %q contains one of %q", name, reservedNameChars)
	}
	if endpoint == nil {
		return ParameterPortBase{}, errors.Invalidf(errors.ErrEndpointMismatch, owner.FullName(), "NewParameterPort",
			"port %q: nil endpoint", name)
	}
	return ParameterPortBase{
		PortBase:      PortBase{name: name, direction: dir, owner: Canonical(owner)},
		parameterType: paramType,
		protocolType:  endpoint.ProtocolType(),
		config:        parameter.CloneConfig(cfg),
		endpoint:      endpoint,
	}, nil
}

// ParameterInput is a parameter input port holding a typed protocol input endpoint.
type ParameterInput[E protocol.Input] struct {
	ParameterPortBase
	protocolInput E
}

// NewParameterInput creates a parameter input on owner. The protocol type is taken
// from the endpoint created by newEndpoint, e.g.
//
//	component.NewParameterInput(a, "gain", parameter.TypeDouble, nil,
//		doublebuffering.NewInput[*parameter.Scalar[float64]])
func NewParameterInput[E protocol.Input](owner Component, name string, paramType parameter.TypeID,
	cfg parameter.Config, newEndpoint func() E) (*ParameterInput[E], error) {
	ep := newEndpoint()
	base, err := newParameterPort(owner, name, Input, paramType, cfg, ep)
	if err != nil {
		return nil, err
	}
	p := &ParameterInput[E]{ParameterPortBase: base, protocolInput: ep}
	if err := owner.base().addParameterPort(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Protocol returns the typed protocol input endpoint.
func (p *ParameterInput[E]) Protocol() E { return p.protocolInput }

// ParameterOutput is a parameter output port holding a typed protocol output endpoint.
type ParameterOutput[E protocol.Output] struct {
	ParameterPortBase
	protocolOutput E
}

// NewParameterOutput creates a parameter output on owner.
func NewParameterOutput[E protocol.Output](owner Component, name string, paramType parameter.TypeID,
	cfg parameter.Config, newEndpoint func() E) (*ParameterOutput[E], error) {
	ep := newEndpoint()
	base, err := newParameterPort(owner, name, Output, paramType, cfg, ep)
	if err != nil {
		return nil, err
	}
	p := &ParameterOutput[E]{ParameterPortBase: base, protocolOutput: ep}
	if err := owner.base().addParameterPort(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Protocol returns the typed protocol output endpoint.
func (p *ParameterOutput[E]) Protocol() E { return p.protocolOutput }

// NewParameterPort creates a port whose protocol is chosen at runtime. The endpoint
// is created through the protocol registry of the owner's context and accepts any
// parameter type.
func NewParameterPort(owner Component, name string, dir Direction, paramType parameter.TypeID,
	protoType protocol.TypeID, cfg parameter.Config) (ParameterPort, error) {
	if owner == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "ParameterPort", "New", "nil owner")
	}
	reg := owner.Context().Protocols()
	if reg == nil {
		return nil, errors.Usagef(errors.ErrUnregisteredType, owner.FullName(), "NewParameterPort",
			"port %q: context has no protocol registry", name)
	}
	if dir == Input {
		ep, err := reg.CreateInput(protoType)
		if err != nil {
			return nil, errors.Wrap(err, owner.FullName(), "NewParameterPort", "create input endpoint for "+name)
		}
		p, err := NewParameterInput(owner, name, paramType, cfg, func() protocol.Input { return ep })
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	ep, err := reg.CreateOutput(protoType)
	if err != nil {
		return nil, errors.Wrap(err, owner.FullName(), "NewParameterPort", "create output endpoint for "+name)
	}
	p, err := NewParameterOutput(owner, name, paramType, cfg, func() protocol.Output { return ep })
	if err != nil {
		return nil, err
	}
	return p, nil
}
