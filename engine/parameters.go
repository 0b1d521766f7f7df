package flowengine

import (
	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/component/flowgraph"
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol"
)

// instance is one protocol instance and the endpoints attached to it.
type instance struct {
	name    string
	proto   protocol.Protocol
	ports   []component.ParameterPort
	inputs  []protocol.Input
	outputs []protocol.Output
}

func (in *instance) detach() {
	for _, ep := range in.inputs {
		in.proto.DisconnectInput(ep)
	}
	for _, ep := range in.outputs {
		in.proto.DisconnectOutput(ep)
	}
	for _, p := range in.ports {
		p.Unfreeze()
	}
	in.inputs, in.outputs = nil, nil
}

// connectParameters creates one protocol instance per parameter group and freezes
// the configurations of its ports.
func (f *Flow) connectParameters(reg *protocol.Registry) error {
	for _, pg := range f.graph.ParameterGroups() {
		inst, err := f.instantiate(reg, pg)
		if inst != nil {
			f.instances = append(f.instances, inst)
			f.metrics.protocolInstances(inst.name, 1)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *Flow) instantiate(reg *protocol.Registry, pg flowgraph.ParameterGroup) (*instance, error) {
	first := pg.Ports()[0]
	id := pg.ProtocolType()
	registration, ok := reg.Lookup(id)
	if !ok {
		return nil, errors.Invalidf(errors.ErrUnregisteredType, "Flow", "New",
			"port %s uses protocol %s", first.FullName(), id)
	}

	writers := len(pg.Senders) + len(pg.Inputs)
	readers := len(pg.Receivers) + len(pg.Outputs)
	if writers > 1 && !registration.MultipleOutputs {
		return nil, errors.Invalidf(errors.ErrAlreadyConnected, "Flow", "New",
			"parameter group of %s has %d writers, protocol %q allows one", first.FullName(), writers, registration.Name)
	}
	if readers > 1 && !registration.MultipleInputs {
		return nil, errors.Invalidf(errors.ErrAlreadyConnected, "Flow", "New",
			"parameter group of %s has %d readers, protocol %q allows one", first.FullName(), readers, registration.Name)
	}

	cfg, err := pg.Config()
	if err != nil {
		return nil, err
	}
	proto, err := reg.CreateProtocol(id, pg.ParameterType(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Flow", "New", "protocol creation for "+first.FullName())
	}

	// The instance is returned on failure too, so that Close releases the
	// endpoints attached so far.
	inst := &instance{name: registration.Name, proto: proto}

	for _, p := range pg.Senders {
		if err := inst.attachOutput(p, p.Endpoint()); err != nil {
			return inst, err
		}
	}
	for _, p := range pg.Inputs {
		ep, err := reg.CreateOutput(id)
		if err != nil {
			return inst, errors.Wrap(err, "Flow", "New", "host endpoint for "+p.FullName())
		}
		if err := inst.attachOutput(p, ep); err != nil {
			return inst, err
		}
		f.writers[p.Name()] = ep
	}
	for _, p := range pg.Receivers {
		if err := inst.attachInput(p, p.Endpoint()); err != nil {
			return inst, err
		}
	}
	for _, p := range pg.Outputs {
		ep, err := reg.CreateInput(id)
		if err != nil {
			return inst, errors.Wrap(err, "Flow", "New", "host endpoint for "+p.FullName())
		}
		if err := inst.attachInput(p, ep); err != nil {
			return inst, err
		}
		f.readers[p.Name()] = ep
	}

	for _, p := range pg.Ports() {
		p.Freeze()
		inst.ports = append(inst.ports, p)
	}
	return inst, nil
}

func (in *instance) attachOutput(p component.ParameterPort, ep protocol.Output) error {
	if err := in.proto.ConnectOutput(ep); err != nil {
		return errors.Wrap(err, "Flow", "New", "connection of "+p.FullName())
	}
	in.outputs = append(in.outputs, ep)
	return nil
}

func (in *instance) attachInput(p component.ParameterPort, ep protocol.Input) error {
	if err := in.proto.ConnectInput(ep); err != nil {
		return errors.Wrap(err, "Flow", "New", "connection of "+p.FullName())
	}
	in.inputs = append(in.inputs, ep)
	return nil
}

// ParameterWriter returns the endpoint through which the host feeds the top-level
// parameter input port. The endpoint is polymorphic: it is the protocol's output
// endpoint for parameter.Parameter, e.g.
//
//	*doublebuffering.Output[parameter.Parameter]
func (f *Flow) ParameterWriter(port string) (protocol.Output, error) {
	ep, ok := f.writers[port]
	if !ok {
		return nil, errors.Invalidf(errors.ErrNotFound, "Flow", "ParameterWriter",
			"top-level parameter input %q", port)
	}
	return ep, nil
}

// ParameterReader returns the endpoint through which the host reads the top-level
// parameter output port.
func (f *Flow) ParameterReader(port string) (protocol.Input, error) {
	ep, ok := f.readers[port]
	if !ok {
		return nil, errors.Invalidf(errors.ErrNotFound, "Flow", "ParameterReader",
			"top-level parameter output %q", port)
	}
	return ep, nil
}

// Writer returns the host endpoint of a top-level parameter input as E.
func Writer[E protocol.Output](f *Flow, port string) (E, error) {
	var zero E
	ep, err := f.ParameterWriter(port)
	if err != nil {
		return zero, err
	}
	typed, ok := ep.(E)
	if !ok {
		return zero, errors.Invalidf(errors.ErrEndpointMismatch, "Flow", "Writer",
			"port %q is served by %T, not %T", port, ep, zero)
	}
	return typed, nil
}

// Reader returns the host endpoint of a top-level parameter output as E.
func Reader[E protocol.Input](f *Flow, port string) (E, error) {
	var zero E
	ep, err := f.ParameterReader(port)
	if err != nil {
		return zero, err
	}
	typed, ok := ep.(E)
	if !ok {
		return zero, errors.Invalidf(errors.ErrEndpointMismatch, "Flow", "Reader",
			"port %q is served by %T, not %T", port, ep, zero)
	}
	return typed, nil
}
