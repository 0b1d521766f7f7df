package flowgraph

import (
	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol"
)

// Ports returns every member of the group: senders, receivers, then external ports.
func (pg ParameterGroup) Ports() []component.ParameterPort {
	ports := make([]component.ParameterPort, 0, len(pg.Senders)+len(pg.Receivers)+len(pg.Inputs)+len(pg.Outputs))
	ports = append(ports, pg.Senders...)
	ports = append(ports, pg.Receivers...)
	ports = append(ports, pg.Inputs...)
	return append(ports, pg.Outputs...)
}

// ParameterType returns the parameter type shared by all members.
func (pg ParameterGroup) ParameterType() parameter.TypeID { return pg.Ports()[0].ParameterType() }

// ProtocolType returns the protocol type shared by all members.
func (pg ParameterGroup) ProtocolType() protocol.TypeID { return pg.Ports()[0].ProtocolType() }

// Connected reports whether the group joins more than one port.
func (pg ParameterGroup) Connected() bool { return len(pg.Ports()) > 1 }

// Config returns the configuration shared by all members that set one. It fails
// when two members carry different configurations.
func (pg ParameterGroup) Config() (parameter.Config, error) {
	var cfg parameter.Config
	var from component.ParameterPort
	for _, p := range pg.Ports() {
		pc := p.Config()
		if pc == nil {
			continue
		}
		if cfg == nil {
			cfg, from = pc, p
			continue
		}
		if !parameter.ConfigsEqual(cfg, pc) {
			return nil, errors.Invalidf(errors.ErrInvalidConfig, "FlowGraph", "ParameterGroup",
				"%s and %s carry different parameter configurations", from.FullName(), p.FullName())
		}
	}
	return cfg, nil
}

// unionFind joins parameter ports into groups.
type unionFind map[component.ParameterPort]component.ParameterPort

func (u unionFind) find(p component.ParameterPort) component.ParameterPort {
	parent, ok := u[p]
	if !ok {
		u[p] = p
		return p
	}
	if parent == p {
		return p
	}
	root := u.find(parent)
	u[p] = root
	return root
}

func (u unionFind) union(a, b component.ParameterPort) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u[rb] = ra
	}
}

// groupParameters forms one group per set of connected endpoint ports. Endpoint
// ports without connections form singleton groups.
func (g *FlowGraph) groupParameters(composites []*component.Composite) ([]ParameterGroup, error) {
	uf := make(unionFind)
	var order []component.ParameterPort
	seen := make(map[component.ParameterPort]bool)
	visit := func(p component.ParameterPort) {
		uf.find(p)
		if !seen[p] {
			seen[p] = true
			order = append(order, p)
		}
	}

	for _, n := range g.nodes {
		for _, p := range n.Component.ParameterPorts() {
			visit(p)
		}
	}
	for _, p := range g.top.ParameterPorts() {
		visit(p)
	}
	for _, c := range composites {
		for _, conn := range c.ParameterConnections() {
			visit(conn.Sender)
			visit(conn.Receiver)
			uf.union(conn.Sender, conn.Receiver)
		}
	}

	index := make(map[component.ParameterPort]int)
	var groups []ParameterGroup
	for _, p := range order {
		owner := p.Owner()
		external := g.IsExternal(owner)
		if !external && !owner.IsAtomic() {
			continue // relay port of a nested composite
		}
		root := uf.find(p)
		gi, ok := index[root]
		if !ok {
			gi = len(groups)
			index[root] = gi
			groups = append(groups, ParameterGroup{})
		}
		pg := &groups[gi]
		if owner.IsAtomic() {
			if p.Direction() == component.Output {
				pg.Senders = append(pg.Senders, p)
			} else {
				pg.Receivers = append(pg.Receivers, p)
			}
		}
		if external {
			if p.Direction() == component.Input {
				pg.Inputs = append(pg.Inputs, p)
			} else {
				pg.Outputs = append(pg.Outputs, p)
			}
		}
	}

	for _, pg := range groups {
		if _, err := pg.Config(); err != nil {
			return nil, err
		}
	}
	return groups, nil
}
