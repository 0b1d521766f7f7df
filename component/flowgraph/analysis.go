package flowgraph

import (
	"cmp"
	"slices"
	"strings"

	"github.com/s3a-spatialaudio/VISR-sub001/component"
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// Validation statuses of an AnalysisResult.
const (
	StatusValid    = "valid"
	StatusWarnings = "warnings"
	StatusErrors   = "errors"
)

// Orphan issues.
const (
	IssueNoSource      = "no_source"      // audio input channel without driver
	IssueUnusedOutput  = "unused_output"  // audio output feeding nothing
	IssueNoPublishers  = "no_publishers"  // parameter input without sender
	IssueNoSubscribers = "no_subscribers" // parameter output without receiver
)

// AnalysisResult contains the results of connectivity analysis
type AnalysisResult struct {
	ConnectedGroups   [][]string         `json:"connected_groups"`
	DisconnectedNodes []DisconnectedNode `json:"disconnected_nodes"`
	OrphanedPorts     []OrphanedPort     `json:"orphaned_ports"`
	ValidationStatus  string             `json:"validation_status"`
}

// DisconnectedNode represents a component with no connections
type DisconnectedNode struct {
	ComponentName string `json:"component_name"`
	Issue         string `json:"issue"`
}

// OrphanedPort represents a port, or some channels of it, with no connections
type OrphanedPort struct {
	ComponentName string              `json:"component_name"`
	PortName      string              `json:"port_name"`
	Direction     component.Direction `json:"direction"`
	Channels      []int               `json:"channels,omitempty"`
	Issue         string              `json:"issue"`
	Required      bool                `json:"required"`
}

// Analyze reports connectivity problems. Unconnected channels of atomic audio
// inputs are required and make the status StatusErrors; other orphans are warnings.
func (g *FlowGraph) Analyze() AnalysisResult {
	result := AnalysisResult{
		ConnectedGroups:   g.connectedGroups(),
		DisconnectedNodes: []DisconnectedNode{},
		OrphanedPorts:     []OrphanedPort{},
		ValidationStatus:  StatusValid,
	}

	linked := make(map[*Node]bool)
	mark := func(p interface{ Owner() component.Component }) {
		if a, ok := p.Owner().(*component.Atomic); ok {
			if n, ok := g.byAtomic[a]; ok {
				linked[n] = true
			}
		}
	}
	for _, e := range g.audioEdges {
		mark(e.From.Port)
		mark(e.To.Port)
	}
	for _, pg := range g.paramGroups {
		if pg.Connected() {
			for _, p := range pg.Ports() {
				mark(p)
			}
		}
	}

	result.OrphanedPorts = append(result.OrphanedPorts, g.audioOrphans()...)
	result.OrphanedPorts = append(result.OrphanedPorts, g.parameterOrphans()...)

	for _, n := range g.nodes {
		if !linked[n] && !g.IsExternal(n.Component) {
			result.DisconnectedNodes = append(result.DisconnectedNodes, DisconnectedNode{
				ComponentName: n.Name,
				Issue:         "Component has no connections",
			})
		}
	}

	hasRequired := slices.ContainsFunc(result.OrphanedPorts, func(o OrphanedPort) bool { return o.Required })
	switch {
	case hasRequired:
		result.ValidationStatus = StatusErrors
	case len(result.OrphanedPorts) > 0 || len(result.DisconnectedNodes) > 0:
		result.ValidationStatus = StatusWarnings
	}
	return result
}

func (g *FlowGraph) audioOrphans() []OrphanedPort {
	var orphans []OrphanedPort

	var port component.AudioPort
	var missing []int
	flush := func() {
		if port != nil && len(missing) > 0 {
			orphans = append(orphans, OrphanedPort{
				ComponentName: port.Owner().FullName(),
				PortName:      port.Name(),
				Direction:     port.Direction(),
				Channels:      missing,
				Issue:         IssueNoSource,
				Required:      !g.IsExternal(port.Owner()),
			})
		}
		missing = nil
	}
	for _, sink := range g.sinks {
		if sink.Port != port {
			flush()
			port = sink.Port
		}
		if _, ok := g.driver[sink]; !ok {
			missing = append(missing, sink.Channel)
		}
	}
	flush()

	used := make(map[component.AudioPort]bool)
	for _, e := range g.audioEdges {
		used[e.From.Port] = true
	}
	sources := make([]component.AudioPort, 0)
	for _, n := range g.nodes {
		if g.IsExternal(n.Component) {
			continue
		}
		for _, p := range n.Component.AudioPorts() {
			if p.Direction() == component.Output {
				sources = append(sources, p)
			}
		}
	}
	if g.top.IsComposite() {
		for _, p := range g.top.AudioPorts() {
			if p.Direction() == component.Input {
				sources = append(sources, p)
			}
		}
	}
	for _, p := range sources {
		if !used[p] && p.Width() > 0 {
			orphans = append(orphans, OrphanedPort{
				ComponentName: p.Owner().FullName(),
				PortName:      p.Name(),
				Direction:     p.Direction(),
				Issue:         IssueUnusedOutput,
			})
		}
	}
	return orphans
}

func (g *FlowGraph) parameterOrphans() []OrphanedPort {
	var orphans []OrphanedPort
	for _, pg := range g.paramGroups {
		if pg.Connected() {
			continue
		}
		p := pg.Ports()[0]
		if g.top.IsAtomic() {
			continue // ports of a top-level atomic are served by the host
		}
		issue := IssueNoPublishers
		if p.Direction() == component.Output {
			issue = IssueNoSubscribers
		}
		orphans = append(orphans, OrphanedPort{
			ComponentName: p.Owner().FullName(),
			PortName:      p.Name(),
			Direction:     p.Direction(),
			Issue:         issue,
		})
	}
	return orphans
}

// dependencies returns for each node the nodes it consumes data from.
func (g *FlowGraph) dependencies() map[*Node]map[*Node]bool {
	deps := make(map[*Node]map[*Node]bool, len(g.nodes))
	add := func(from, to component.Component) {
		fa, ok1 := from.(*component.Atomic)
		ta, ok2 := to.(*component.Atomic)
		if !ok1 || !ok2 {
			return
		}
		fn, ok1 := g.byAtomic[fa]
		tn, ok2 := g.byAtomic[ta]
		if !ok1 || !ok2 {
			return
		}
		if deps[tn] == nil {
			deps[tn] = make(map[*Node]bool)
		}
		deps[tn][fn] = true
	}
	for _, e := range g.audioEdges {
		add(e.From.Port.Owner(), e.To.Port.Owner())
	}
	for _, pg := range g.paramGroups {
		for _, s := range pg.Senders {
			for _, r := range pg.Receivers {
				add(s.Owner(), r.Owner())
			}
		}
	}
	return deps
}

// TopologicalOrder returns the atomic components with every producer before its
// consumers. Independent components keep hierarchy order. A dependency cycle fails
// with ErrCycle naming the components involved.
func (g *FlowGraph) TopologicalOrder() ([]*Node, error) {
	deps := g.dependencies()
	consumers := make(map[*Node][]*Node)
	indegree := make(map[*Node]int, len(g.nodes))
	for to, froms := range deps {
		indegree[to] = len(froms)
		for from := range froms {
			consumers[from] = append(consumers[from], to)
		}
	}

	byIndex := func(a, b *Node) int { return cmp.Compare(a.Index, b.Index) }
	var ready []*Node
	for _, n := range g.nodes {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	order := make([]*Node, 0, len(g.nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		next := consumers[n]
		slices.SortFunc(next, byIndex)
		for _, c := range next {
			indegree[c]--
			if indegree[c] == 0 {
				ready = append(ready, c)
				slices.SortFunc(ready, byIndex)
			}
		}
	}

	if len(order) != len(g.nodes) {
		var cyclic []string
		for _, n := range g.nodes {
			if indegree[n] > 0 {
				cyclic = append(cyclic, n.Name)
			}
		}
		return nil, errors.Invalidf(errors.ErrCycle, "FlowGraph", "TopologicalOrder",
			"components %s form a dependency cycle", strings.Join(cyclic, ", "))
	}
	return order, nil
}

// connectedGroups uses DFS to find connected components in the graph
func (g *FlowGraph) connectedGroups() [][]string {
	adj := make(map[*Node][]*Node)
	for to, froms := range g.dependencies() {
		for from := range froms {
			adj[from] = append(adj[from], to)
			adj[to] = append(adj[to], from)
		}
	}

	visited := make(map[*Node]bool)
	var groups [][]string
	for _, n := range g.nodes {
		if visited[n] {
			continue
		}
		var cluster []string
		g.dfs(n, adj, visited, &cluster)
		slices.Sort(cluster)
		groups = append(groups, cluster)
	}
	return groups
}

// dfs performs depth-first search for connected components
func (g *FlowGraph) dfs(n *Node, adj map[*Node][]*Node, visited map[*Node]bool, cluster *[]string) {
	visited[n] = true
	*cluster = append(*cluster, n.Name)
	for _, neighbor := range adj[n] {
		if !visited[neighbor] {
			g.dfs(neighbor, adj, visited, cluster)
		}
	}
}
