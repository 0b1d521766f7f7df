package component

import (
	"slices"

	"github.com/s3a-spatialaudio/VISR-sub001/channel"
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// ThisComponent names the composite itself in string-addressed connections.
const ThisComponent = "this"

// Composite is a container component. It owns child components and the tables of
// audio and parameter connections between its own external ports and the ports of
// its direct children. It does no signal processing itself.
type Composite struct {
	Base
	children   []Component
	audioConns []AudioConnection
	paramConns []ParameterConnection
}

var _ Component = (*Composite)(nil)

// NewComposite creates a composite component and registers it with parent, if any.
func NewComposite(ctx *SignalFlowContext, name string, parent *Composite) (*Composite, error) {
	c := &Composite{}
	if err := c.init(c, ctx, name, parent); err != nil {
		return nil, errors.Wrap(err, "Composite", "New", "register component "+name)
	}
	return c, nil
}

// IsComposite implements Component.
func (c *Composite) IsComposite() bool { return true }

// IsAtomic implements Component.
func (c *Composite) IsAtomic() bool { return false }

// Children returns the direct children in registration order.
func (c *Composite) Children() []Component { return slices.Clone(c.children) }

// Child returns the direct child with the given name.
func (c *Composite) Child(name string) (Component, bool) {
	for _, ch := range c.children {
		if ch.Name() == name {
			return ch, true
		}
	}
	return nil, false
}

// AudioConnections returns the audio connections ordered by sender and receiver.
func (c *Composite) AudioConnections() []AudioConnection { return slices.Clone(c.audioConns) }

// ParameterConnections returns the parameter connections ordered by sender and receiver.
func (c *Composite) ParameterConnections() []ParameterConnection { return slices.Clone(c.paramConns) }

func (c *Composite) addChild(child Component) error {
	if c.closed {
		return errors.Usagef(errors.ErrClosed, c.FullName(), "AddChild", "cannot add %q", child.Name())
	}
	if _, ok := c.Child(child.Name()); ok {
		return errors.Invalidf(errors.ErrDuplicateName, c.FullName(), "AddChild",
			"a child named %q already exists", child.Name())
	}
	c.children = append(c.children, child)
	return nil
}

func (c *Composite) removeChild(child Component) error {
	idx := slices.Index(c.children, child)
	if idx < 0 {
		return errors.Internalf(errors.ErrNotFound, c.FullName(), "RemoveChild",
			"%q is not registered as a child", child.Name())
	}
	c.children = slices.Delete(c.children, idx, idx+1)
	c.audioConns = slices.DeleteFunc(c.audioConns, func(ac AudioConnection) bool {
		return ac.Sender.Owner() == child || ac.Receiver.Owner() == child
	})
	c.paramConns = slices.DeleteFunc(c.paramConns, func(pc ParameterConnection) bool {
		return pc.Sender.Owner() == child || pc.Receiver.Owner() == child
	})
	return nil
}

// Close closes all children, last registered first, then removes the composite
// from its parent.
func (c *Composite) Close() error {
	if c.closed {
		return nil
	}
	for i := len(c.children) - 1; i >= 0; i-- {
		if err := c.children[i].Close(); err != nil {
			return errors.Wrap(err, c.FullName(), "Close", "close child "+c.children[i].Name())
		}
	}
	c.audioConns = nil
	c.paramConns = nil
	return c.closePorts()
}

// resolve maps a component name to the composite itself or a direct child.
func (c *Composite) resolve(name, method string) (Component, error) {
	if name == "" || name == ThisComponent {
		return c, nil
	}
	child, ok := c.Child(name)
	if !ok {
		return nil, errors.Invalidf(errors.ErrNotFound, c.FullName(), method,
			"no child component %q", name)
	}
	return child, nil
}

func (c *Composite) lookupAudio(comp, port, method string) (AudioPort, error) {
	owner, err := c.resolve(comp, method)
	if err != nil {
		return nil, err
	}
	p, ok := owner.AudioPort(port)
	if !ok {
		return nil, errors.Invalidf(errors.ErrNotFound, c.FullName(), method,
			"component %q has no audio port %q", owner.FullName(), port)
	}
	return p, nil
}

func (c *Composite) lookupParameter(comp, port, method string) (ParameterPort, error) {
	owner, err := c.resolve(comp, method)
	if err != nil {
		return nil, err
	}
	p, ok := owner.ParameterPort(port)
	if !ok {
		return nil, errors.Invalidf(errors.ErrNotFound, c.FullName(), method,
			"component %q has no parameter port %q", owner.FullName(), port)
	}
	return p, nil
}

// checkPortParent verifies that a port is an external port of c or a port of a
// direct child.
func (c *Composite) checkPortParent(portName string, owner Component, method string) error {
	if owner == Component(c) {
		return nil
	}
	if owner != nil && owner.Parent() == c {
		return nil
	}
	ownerName := "<nil>"
	if owner != nil {
		ownerName = owner.FullName()
	}
	return errors.Invalidf(errors.ErrForeignPort, c.FullName(), method,
		"port %q is owned by %q, which is neither composite %q nor one of its direct children",
		portName, ownerName, c.FullName())
}

// checkDirections verifies that data flows from a child output or an external input
// to a child input or an external output.
func (c *Composite) checkDirections(senderName string, senderOwner Component, senderDir Direction,
	receiverName string, receiverOwner Component, receiverDir Direction, method string) error {
	self := Component(c)
	if (senderOwner == self) != (senderDir == Input) {
		return errors.Invalidf(errors.ErrDirection, c.FullName(), method,
			"port %q of %q cannot send: it is an %s", senderName, senderOwner.FullName(), senderDir)
	}
	if (receiverOwner == self) != (receiverDir == Output) {
		return errors.Invalidf(errors.ErrDirection, c.FullName(), method,
			"port %q of %q cannot receive: it is an %s", receiverName, receiverOwner.FullName(), receiverDir)
	}
	return nil
}

// ConnectAudio adds an audio connection between ports addressed by component and
// port name. An empty component name or "this" denotes the composite itself.
func (c *Composite) ConnectAudio(sendComp, sendPort string, sendChannels channel.List,
	recvComp, recvPort string, recvChannels channel.List) error {
	sender, err := c.lookupAudio(sendComp, sendPort, "ConnectAudio")
	if err != nil {
		return err
	}
	receiver, err := c.lookupAudio(recvComp, recvPort, "ConnectAudio")
	if err != nil {
		return err
	}
	return c.connectAudio(sender, sendChannels, receiver, recvChannels, "ConnectAudio")
}

// ConnectAudioPorts adds an audio connection between two ports.
func (c *Composite) ConnectAudioPorts(sender AudioPort, sendChannels channel.List,
	receiver AudioPort, recvChannels channel.List) error {
	return c.connectAudio(sender, sendChannels, receiver, recvChannels, "ConnectAudioPorts")
}

// ConnectAudioPortsFull connects all channels of two ports of equal width in order.
func (c *Composite) ConnectAudioPortsFull(sender, receiver AudioPort) error {
	if sender == nil || receiver == nil {
		return errors.Invalidf(errors.ErrNotFound, c.FullName(), "ConnectAudioPortsFull", "nil port")
	}
	if sender.Width() != receiver.Width() {
		return errors.Invalidf(errors.ErrWidthMismatch, c.FullName(), "ConnectAudioPortsFull",
			"%s has width %d, %s has width %d", sender.FullName(), sender.Width(), receiver.FullName(), receiver.Width())
	}
	ids := channel.Identity(sender.Width())
	return c.connectAudio(sender, ids, receiver, ids, "ConnectAudioPortsFull")
}

func (c *Composite) connectAudio(sender AudioPort, sendChannels channel.List,
	receiver AudioPort, recvChannels channel.List, method string) error {
	if sender == nil || receiver == nil {
		return errors.Invalidf(errors.ErrNotFound, c.FullName(), method, "nil port")
	}
	if err := c.checkPortParent(sender.Name(), sender.Owner(), method); err != nil {
		return err
	}
	if err := c.checkPortParent(receiver.Name(), receiver.Owner(), method); err != nil {
		return err
	}
	if err := c.checkDirections(sender.Name(), sender.Owner(), sender.Direction(),
		receiver.Name(), receiver.Owner(), receiver.Direction(), method); err != nil {
		return err
	}
	if sender.SampleType() != receiver.SampleType() {
		return errors.Invalidf(errors.ErrTypeMismatch, c.FullName(), method,
			"%s carries %s, %s carries %s", sender.FullName(), sender.SampleType(),
			receiver.FullName(), receiver.SampleType())
	}
	if sendChannels.Len() != recvChannels.Len() {
		return errors.Invalidf(errors.ErrLengthMismatch, c.FullName(), method,
			"%s sends %d channels, %s receives %d", sender.FullName(), sendChannels.Len(),
			receiver.FullName(), recvChannels.Len())
	}
	if err := sendChannels.CheckWidth(sender.Width()); err != nil {
		return errors.WrapInvalid(err, c.FullName(), method, "send channels of "+sender.FullName())
	}
	if err := recvChannels.CheckWidth(receiver.Width()); err != nil {
		return errors.WrapInvalid(err, c.FullName(), method, "receive channels of "+receiver.FullName())
	}

	conn := AudioConnection{
		Sender:          sender,
		SendChannels:    sendChannels,
		Receiver:        receiver,
		ReceiveChannels: recvChannels,
	}
	if slices.ContainsFunc(c.audioConns, conn.equal) {
		return nil
	}
	// Insert after existing entries of the same sender/receiver pair.
	idx, _ := slices.BinarySearchFunc(c.audioConns, conn, func(e, t AudioConnection) int {
		if r := compareAudio(e, t); r != 0 {
			return r
		}
		return -1
	})
	c.audioConns = slices.Insert(c.audioConns, idx, conn)
	return nil
}

// ConnectParameter adds a parameter connection between ports addressed by
// component and port name.
func (c *Composite) ConnectParameter(sendComp, sendPort, recvComp, recvPort string) error {
	sender, err := c.lookupParameter(sendComp, sendPort, "ConnectParameter")
	if err != nil {
		return err
	}
	receiver, err := c.lookupParameter(recvComp, recvPort, "ConnectParameter")
	if err != nil {
		return err
	}
	return c.connectParameter(sender, receiver, "ConnectParameter")
}

// ConnectParameterPorts adds a parameter connection between two ports.
func (c *Composite) ConnectParameterPorts(sender, receiver ParameterPort) error {
	return c.connectParameter(sender, receiver, "ConnectParameterPorts")
}

func (c *Composite) connectParameter(sender, receiver ParameterPort, method string) error {
	if sender == nil || receiver == nil {
		return errors.Invalidf(errors.ErrNotFound, c.FullName(), method, "nil port")
	}
	if err := c.checkPortParent(sender.Name(), sender.Owner(), method); err != nil {
		return err
	}
	if err := c.checkPortParent(receiver.Name(), receiver.Owner(), method); err != nil {
		return err
	}
	if err := c.checkDirections(sender.Name(), sender.Owner(), sender.Direction(),
		receiver.Name(), receiver.Owner(), receiver.Direction(), method); err != nil {
		return err
	}
	if sender.ParameterType() != receiver.ParameterType() {
		return errors.Invalidf(errors.ErrTypeMismatch, c.FullName(), method,
			"%s carries parameter type %s, %s expects %s", sender.FullName(), sender.ParameterType(),
			receiver.FullName(), receiver.ParameterType())
	}
	if sender.ProtocolType() != receiver.ProtocolType() {
		return errors.Invalidf(errors.ErrEndpointMismatch, c.FullName(), method,
			"%s uses protocol %s, %s uses %s", sender.FullName(), sender.ProtocolType(),
			receiver.FullName(), receiver.ProtocolType())
	}

	conn := ParameterConnection{Sender: sender, Receiver: receiver}
	idx, found := slices.BinarySearchFunc(c.paramConns, conn, compareParameter)
	if found {
		return errors.Invalidf(errors.ErrAlreadyConnected, c.FullName(), method,
			"%s is already connected to %s", sender.FullName(), receiver.FullName())
	}
	c.paramConns = slices.Insert(c.paramConns, idx, conn)
	return nil
}
