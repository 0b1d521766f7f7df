package component

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/s3a-spatialaudio/VISR-sub001/channel"
)

// AudioConnection routes the SendChannels of Sender to the ReceiveChannels of
// Receiver, element by element.
type AudioConnection struct {
	Sender          AudioPort
	SendChannels    channel.List
	Receiver        AudioPort
	ReceiveChannels channel.List
}

// String implements fmt.Stringer.
func (c AudioConnection) String() string {
	return fmt.Sprintf("%s[%s] -> %s[%s]", c.Sender.FullName(), c.SendChannels, c.Receiver.FullName(), c.ReceiveChannels)
}

func (c AudioConnection) equal(o AudioConnection) bool {
	return c.Sender == o.Sender && c.Receiver == o.Receiver &&
		c.SendChannels.Equal(o.SendChannels) && c.ReceiveChannels.Equal(o.ReceiveChannels)
}

// compareAudio orders connections by sender, then receiver identity.
func compareAudio(a, b AudioConnection) int {
	return cmp.Or(
		strings.Compare(portKey(a.Sender.Owner(), a.Sender.Name()), portKey(b.Sender.Owner(), b.Sender.Name())),
		strings.Compare(portKey(a.Receiver.Owner(), a.Receiver.Name()), portKey(b.Receiver.Owner(), b.Receiver.Name())),
	)
}

// ParameterConnection links a parameter output to a parameter input.
type ParameterConnection struct {
	Sender   ParameterPort
	Receiver ParameterPort
}

// String implements fmt.Stringer.
func (c ParameterConnection) String() string {
	return fmt.Sprintf("%s -> %s", c.Sender.FullName(), c.Receiver.FullName())
}

func compareParameter(a, b ParameterConnection) int {
	return cmp.Or(
		strings.Compare(portKey(a.Sender.Owner(), a.Sender.Name()), portKey(b.Sender.Owner(), b.Sender.Name())),
		strings.Compare(portKey(a.Receiver.Owner(), a.Receiver.Name()), portKey(b.Receiver.Owner(), b.Receiver.Name())),
	)
}

// portKey is the identity of a port including every ancestor name.
func portKey(owner Component, port string) string {
	var parts []string
	for c := owner; c != nil; {
		parts = append(parts, c.Name())
		p := c.Parent()
		if p == nil {
			break
		}
		c = p
	}
	var sb strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		sb.WriteString(parts[i])
		sb.WriteByte('/')
	}
	sb.WriteString(port)
	return sb.String()
}
