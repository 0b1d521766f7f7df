package component

// Direction is the data direction of a port as seen from its owning component.
type Direction int

const (
	// Input ports receive data.
	Input Direction = iota
	// Output ports emit data.
	Output
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// PortBase is the identity shared by audio and parameter ports.
type PortBase struct {
	name      string
	direction Direction
	owner     Component
}

// Name returns the port name, unique within the owner's ports of the same category.
func (p *PortBase) Name() string { return p.name }

// Direction returns the port direction.
func (p *PortBase) Direction() Direction { return p.direction }

// Owner returns the component the port belongs to.
func (p *PortBase) Owner() Component { return p.owner }

// FullName returns the owner's full name and the port name.
func (p *PortBase) FullName() string {
	if p.owner == nil {
		return p.name
	}
	return p.owner.FullName() + "." + p.name
}

// Canonical returns the component registered with the parent. Types embedding
// *Atomic or *Composite resolve to the embedded value.
func Canonical(c Component) Component {
	if self := c.base().self; self != nil {
		return self
	}
	return c
}
