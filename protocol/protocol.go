// Package protocol defines the contract shared by all communication protocols, the
// endpoint types held by parameter ports, and the registry that creates protocol
// instances and endpoints from runtime type ids.
package protocol

import (
	"fmt"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
)

// TypeID identifies a communication protocol. It is derived from the protocol name.
type TypeID uint32

// ID returns the protocol type id for a protocol name.
func ID(name string) TypeID {
	return TypeID(parameter.ID(name))
}

// String implements fmt.Stringer.
func (id TypeID) String() string {
	return fmt.Sprintf("0x%08x", uint32(id))
}

// Endpoint is the part of a protocol held by a parameter port.
// ProtocolType is the kind tag checked when the endpoint is attached.
type Endpoint interface {
	ProtocolType() TypeID
	// Connected reports whether the endpoint is attached to a protocol instance.
	Connected() bool
}

// Input is an endpoint through which a receiving port reads parameter data.
type Input interface {
	Endpoint
}

// Output is an endpoint through which a sending port writes parameter data.
type Output interface {
	Endpoint
}

// Protocol is a communication protocol instance carrying one parameter type.
//
// Connecting an endpoint of another protocol kind, or one of a parameter type
// different from the instance's, fails with ErrEndpointMismatch or ErrTypeMismatch.
// Disconnect reports false for endpoints that are not attached to this instance.
type Protocol interface {
	ParameterType() parameter.TypeID
	ProtocolType() TypeID
	ConnectInput(in Input) error
	ConnectOutput(out Output) error
	DisconnectInput(in Input) bool
	DisconnectOutput(out Output) bool
}

// Base holds the identity shared by protocol implementations.
type Base struct {
	parameterType parameter.TypeID
	protocolType  TypeID
	name          string
}

// NewBase creates the identity of a protocol instance.
func NewBase(name string, parameterType parameter.TypeID) Base {
	return Base{parameterType: parameterType, protocolType: ID(name), name: name}
}

// ParameterType returns the parameter type carried by the instance.
func (b *Base) ParameterType() parameter.TypeID { return b.parameterType }

// ProtocolType returns the protocol type id.
func (b *Base) ProtocolType() TypeID { return b.protocolType }

// Name returns the protocol name.
func (b *Base) Name() string { return b.name }

// CheckEndpoint verifies the kind tag of an endpoint offered to the instance.
func (b *Base) CheckEndpoint(e Endpoint, method string) error {
	if e == nil {
		return errors.Invalidf(errors.ErrEndpointMismatch, b.name, method, "nil endpoint")
	}
	if e.ProtocolType() != b.protocolType {
		return errors.Invalidf(errors.ErrEndpointMismatch, b.name, method,
			"endpoint %T has protocol type %s, expected %s", e, e.ProtocolType(), b.protocolType)
	}
	return nil
}

// CheckData verifies that a parameter instance has the dynamic type a typed
// endpoint expects.
func CheckData[T parameter.Parameter](name, method string, p parameter.Parameter) error {
	if _, ok := p.(T); !ok {
		var zero T
		return errors.Invalidf(errors.ErrTypeMismatch, name, method,
			"protocol carries %T, endpoint expects %T", p, zero)
	}
	return nil
}

// NotConnected is the usage error returned by endpoints accessed before attachment.
func NotConnected(name, method string) error {
	return errors.Usagef(errors.ErrNotConnected, name, method, "endpoint is not attached to a protocol")
}
