// Package protocolregistry populates the parameter and protocol registries with every
// built-in type. Call it once at startup, before any flow is built.
package protocolregistry

import (
	"errors"

	pkgerrors "github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/doublebuffering"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/messagequeue"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/shareddata"
)

// Register registers the built-in parameter types in params and the built-in
// protocols (SharedData, DoubleBuffering, MessageQueue) in protocols.
func Register(params *parameter.Registry, protocols *protocol.Registry) error {
	// Nil registry is a programming error (fatal), not invalid input
	if params == nil || protocols == nil {
		return pkgerrors.WrapFatal(
			errors.New("registry cannot be nil"),
			"ProtocolRegistry", "Register", "registry validation")
	}

	if err := parameter.RegisterDefaults(params); err != nil {
		return pkgerrors.Wrap(err, "ProtocolRegistry", "Register", "built-in parameter registration")
	}

	if err := shareddata.Register(protocols); err != nil {
		return pkgerrors.Wrap(err, "ProtocolRegistry", "Register", "SharedData protocol registration")
	}

	if err := doublebuffering.Register(protocols); err != nil {
		return pkgerrors.Wrap(err, "ProtocolRegistry", "Register", "DoubleBuffering protocol registration")
	}

	if err := messagequeue.Register(protocols); err != nil {
		return pkgerrors.Wrap(err, "ProtocolRegistry", "Register", "MessageQueue protocol registration")
	}

	return nil
}

// New creates a parameter and a protocol registry populated with all built-ins.
// Callers may register additional types before the first flow is built.
func New() (*parameter.Registry, *protocol.Registry, error) {
	params := parameter.NewRegistry()
	protocols := protocol.NewRegistry(params)
	if err := Register(params, protocols); err != nil {
		return nil, nil, err
	}
	return params, protocols, nil
}
