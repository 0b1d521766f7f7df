// Package flowgraph flattens a component hierarchy into the graph of atomic
// components that a scheduler executes.
//
// Audio connections are resolved per channel through every nesting level: each
// channel of an atomic input or of an external output of the top-level component is
// traced back through composite ports to the atomic output or top-level input that
// drives it. Parameter connections are grouped into connection groups, one per
// protocol instance.
package flowgraph

import (
	"slices"

	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// Node is an atomic component of the flattened graph.
type Node struct {
	Name      string
	Component *component.Atomic
	Index     int // position in hierarchy order
}

// ChannelRef addresses one channel of an audio port.
type ChannelRef struct {
	Port    component.AudioPort
	Channel int
}

// AudioEdge feeds one channel of a sink from one channel of a source. Sources are
// atomic outputs and top-level inputs; sinks are atomic inputs and top-level outputs.
type AudioEdge struct {
	From ChannelRef
	To   ChannelRef
}

// ParameterGroup is a set of parameter ports joined by connections, served by one
// protocol instance. Ports of nested composites only relay and are not members.
//
// Senders and Receivers are atomic ports whose own endpoints attach to the
// protocol. Inputs and Outputs are ports of the top-level component, through which
// the host writes into and reads from the flow.
type ParameterGroup struct {
	Senders   []component.ParameterPort
	Receivers []component.ParameterPort
	Inputs    []component.ParameterPort
	Outputs   []component.ParameterPort
}

// FlowGraph is the flattened graph of a component hierarchy.
type FlowGraph struct {
	top         component.Component
	nodes       []*Node
	byAtomic    map[*component.Atomic]*Node
	audioEdges  []AudioEdge
	paramGroups []ParameterGroup

	// sinks lists every sink channel, connected or not, in hierarchy order.
	sinks  []ChannelRef
	driver map[ChannelRef]ChannelRef
}

// Build flattens the hierarchy rooted at top.
//
// It fails when a connection addresses channels beyond the current width of its
// ports, when a channel is driven by more than one connection, or when a driver
// chain does not terminate in an atomic output or a top-level input.
func Build(top component.Component) (*FlowGraph, error) {
	if top == nil {
		return nil, errors.Invalidf(errors.ErrNotFound, "FlowGraph", "Build", "nil top-level component")
	}
	top = component.Canonical(top)
	g := &FlowGraph{
		top:      top,
		byAtomic: make(map[*component.Atomic]*Node),
		driver:   make(map[ChannelRef]ChannelRef),
	}

	var composites []*component.Composite
	g.collect(top, &composites)

	// Every receiving channel at every level has at most one driver.
	drivers := make(map[ChannelRef]ChannelRef)
	for _, c := range composites {
		for _, conn := range c.AudioConnections() {
			if err := checkWidths(c, conn); err != nil {
				return nil, err
			}
			for i := 0; i < conn.ReceiveChannels.Len(); i++ {
				key := ChannelRef{conn.Receiver, conn.ReceiveChannels.At(i)}
				from := ChannelRef{conn.Sender, conn.SendChannels.At(i)}
				if prev, exists := drivers[key]; exists {
					if prev == from {
						continue
					}
					return nil, errors.Invalidf(errors.ErrAlreadyConnected, c.FullName(), "Build",
						"channel %d of %s is driven by both %s[%d] and %s[%d]", key.Channel,
						conn.Receiver.FullName(), prev.Port.FullName(), prev.Channel,
						conn.Sender.FullName(), from.Channel)
				}
				drivers[key] = from
			}
		}
	}

	for _, sink := range g.sinkPorts() {
		for ch := 0; ch < sink.Width(); ch++ {
			ref := ChannelRef{sink, ch}
			g.sinks = append(g.sinks, ref)
			src, ok, err := g.trace(ref, drivers)
			if err != nil {
				return nil, err
			}
			if ok {
				g.driver[ref] = src
				g.audioEdges = append(g.audioEdges, AudioEdge{From: src, To: ref})
			}
		}
	}

	groups, err := g.groupParameters(composites)
	if err != nil {
		return nil, err
	}
	g.paramGroups = groups
	return g, nil
}

// checkWidths re-validates a connection against its ports, whose widths may
// have changed since it was made.
func checkWidths(c *component.Composite, conn component.AudioConnection) error {
	if err := conn.SendChannels.CheckWidth(conn.Sender.Width()); err != nil {
		return errors.WrapInvalid(err, c.FullName(), "Build", "send channels of "+conn.Sender.FullName())
	}
	if err := conn.ReceiveChannels.CheckWidth(conn.Receiver.Width()); err != nil {
		return errors.WrapInvalid(err, c.FullName(), "Build", "receive channels of "+conn.Receiver.FullName())
	}
	return nil
}

func (g *FlowGraph) collect(c component.Component, composites *[]*component.Composite) {
	switch v := c.(type) {
	case *component.Atomic:
		n := &Node{Name: v.FullName(), Component: v, Index: len(g.nodes)}
		g.nodes = append(g.nodes, n)
		g.byAtomic[v] = n
	case *component.Composite:
		*composites = append(*composites, v)
		for _, child := range v.Children() {
			g.collect(child, composites)
		}
	}
}

// IsExternal reports whether a port belongs to the top-level component.
func (g *FlowGraph) IsExternal(owner component.Component) bool {
	return owner == g.top
}

// isSource reports whether a port terminates a driver chain.
func (g *FlowGraph) isSource(p component.AudioPort) bool {
	if g.IsExternal(p.Owner()) {
		return p.Direction() == component.Input
	}
	return p.Owner().IsAtomic() && p.Direction() == component.Output
}

func (g *FlowGraph) sinkPorts() []component.AudioPort {
	var sinks []component.AudioPort
	for _, n := range g.nodes {
		if g.IsExternal(n.Component) {
			continue
		}
		for _, p := range n.Component.AudioPorts() {
			if p.Direction() == component.Input {
				sinks = append(sinks, p)
			}
		}
	}
	if g.top.IsComposite() {
		for _, p := range g.top.AudioPorts() {
			if p.Direction() == component.Output {
				sinks = append(sinks, p)
			}
		}
	}
	return sinks
}

// trace follows drivers from a sink channel through composite ports. A chain that
// ends at an undriven composite port leaves the sink unconnected.
func (g *FlowGraph) trace(sink ChannelRef, drivers map[ChannelRef]ChannelRef) (ChannelRef, bool, error) {
	cur := sink
	for steps := 0; steps <= len(drivers); steps++ {
		from, ok := drivers[cur]
		if !ok {
			return ChannelRef{}, false, nil
		}
		if g.isSource(from.Port) {
			return from, true, nil
		}
		cur = from
	}
	return ChannelRef{}, false, errors.Invalidf(errors.ErrCycle, "FlowGraph", "Build",
		"driver chain of %s[%d] does not terminate", sink.Port.FullName(), sink.Channel)
}

// Top returns the top-level component.
func (g *FlowGraph) Top() component.Component { return g.top }

// Nodes returns the atomic components in hierarchy order.
func (g *FlowGraph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Node returns the node of an atomic component.
func (g *FlowGraph) Node(a *component.Atomic) (*Node, bool) {
	n, ok := g.byAtomic[a]
	return n, ok
}

// AudioEdges returns the resolved per-channel audio edges ordered by sink.
func (g *FlowGraph) AudioEdges() []AudioEdge { return slices.Clone(g.audioEdges) }

// Source returns the channel driving a sink channel.
func (g *FlowGraph) Source(sink component.AudioPort, ch int) (ChannelRef, bool) {
	src, ok := g.driver[ChannelRef{sink, ch}]
	return src, ok
}

// ParameterGroups returns the parameter connection groups.
func (g *FlowGraph) ParameterGroups() []ParameterGroup { return slices.Clone(g.paramGroups) }
