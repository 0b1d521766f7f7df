package component

import (
	"strings"

	"github.com/s3a-spatialaudio/VISR-sub001/audio"
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// AudioPort is a multichannel audio port of any sample type.
//
// A port starts unbound. Buffer resolution binds it to a buffer of Width channels
// of one block each; Reset returns it to unbound. Width can change only while the
// port is unbound.
type AudioPort interface {
	Name() string
	FullName() string
	Direction() Direction
	Owner() Component
	SampleType() audio.SampleType
	Width() int
	SetWidth(width int) error
	AlignmentSamples() int
	AlignmentBytes() int
	Bound() bool
	Buffer() audio.Buffer
	Bind(buf audio.Buffer) error
	Reset()

	audioPort() *AudioPortBase
}

// AudioPortBase implements the sample-type independent part of AudioPort.
type AudioPortBase struct {
	PortBase
	sampleType audio.SampleType
	width      int
	buffer     audio.Buffer
}

func (p *AudioPortBase) audioPort() *AudioPortBase { return p }

// SampleType returns the sample element type.
func (p *AudioPortBase) SampleType() audio.SampleType { return p.sampleType }

// Width returns the number of channels.
func (p *AudioPortBase) Width() int { return p.width }

// SetWidth changes the number of channels of an unbound port.
func (p *AudioPortBase) SetWidth(width int) error {
	if p.buffer != nil {
		return errors.Usagef(errors.ErrPortBound, p.FullName(), "SetWidth",
			"cannot change width of a bound port")
	}
	if width < 0 {
		return errors.Invalidf(errors.ErrInvalidConfig, p.FullName(), "SetWidth",
			"negative width %d", width)
	}
	p.width = width
	return nil
}

// AlignmentSamples returns the guaranteed channel alignment in samples.
func (p *AudioPortBase) AlignmentSamples() int { return p.sampleType.AlignmentSamples() }

// AlignmentBytes returns the guaranteed channel alignment in bytes.
func (p *AudioPortBase) AlignmentBytes() int { return audio.AlignmentBytes }

// Bound reports whether a buffer is assigned.
func (p *AudioPortBase) Bound() bool { return p.buffer != nil }

// Buffer returns the assigned buffer, nil while unbound.
func (p *AudioPortBase) Buffer() audio.Buffer { return p.buffer }

// Bind assigns the buffer backing the port's channels. The buffer must match the
// sample type, the width and the block size of the flow.
func (p *AudioPortBase) Bind(buf audio.Buffer) error {
	if p.buffer != nil {
		return errors.Usagef(errors.ErrPortBound, p.FullName(), "Bind", "port is already bound")
	}
	if buf == nil {
		return errors.Invalidf(errors.ErrInvalidConfig, p.FullName(), "Bind", "nil buffer")
	}
	if buf.SampleType() != p.sampleType {
		return errors.Invalidf(errors.ErrTypeMismatch, p.FullName(), "Bind",
			"buffer sample type %s, port sample type %s", buf.SampleType(), p.sampleType)
	}
	if buf.Channels() != p.width {
		return errors.Invalidf(errors.ErrWidthMismatch, p.FullName(), "Bind",
			"buffer has %d channels, port width is %d", buf.Channels(), p.width)
	}
	if ctx := p.owner.Context(); ctx != nil && buf.Length() != ctx.Period() {
		return errors.Invalidf(errors.ErrLengthMismatch, p.FullName(), "Bind",
			"buffer length %d, period is %d", buf.Length(), ctx.Period())
	}
	p.buffer = buf
	return nil
}

// Reset unbinds the port.
func (p *AudioPortBase) Reset() { p.buffer = nil }

func newAudioPort(owner Component, name string, dir Direction, st audio.SampleType, width int) (AudioPortBase, error) {
	if owner == nil {
		return AudioPortBase{}, errors.WrapFatal(errors.ErrMissingConfig, "AudioPort", "New", "nil owner")
	}
	if name == "" {
		return AudioPortBase{}, errors.Invalidf(errors.ErrInvalidConfig, owner.FullName(), "NewAudioPort",
			"port name must not be empty")
	}
	if strings.ContainsAny(name, reservedNameChars) {
		return AudioPortBase{}, errors.Invalidf(errors.ErrInvalidConfig, owner.FullName(), "NewAudioPort",
			"port name %q contains one of %q", name, reservedNameChars)
	}
	if width < 0 {
		return AudioPortBase{}, errors.Invalidf(errors.ErrInvalidConfig, owner.FullName(), "NewAudioPort",
			"port %q: negative width %d", name, width)
	}
	return AudioPortBase{
		PortBase:   PortBase{name: name, direction: dir, owner: Canonical(owner)},
		sampleType: st,
		width:      width,
	}, nil
}

// AudioInput is an audio input port with samples of type T.
type AudioInput[T audio.Sample] struct {
	AudioPortBase
}

// NewAudioInput creates an audio input on owner.
func NewAudioInput[T audio.Sample](owner Component, name string, width int) (*AudioInput[T], error) {
	base, err := newAudioPort(owner, name, Input, audio.TypeOf[T](), width)
	if err != nil {
		return nil, err
	}
	p := &AudioInput[T]{AudioPortBase: base}
	if err := owner.base().addAudioPort(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Block returns the bound buffer.
func (p *AudioInput[T]) Block() (*audio.Block[T], error) { return typedBlock[T](&p.AudioPortBase) }

// Channel returns channel i of the bound buffer, nil while unbound.
func (p *AudioInput[T]) Channel(i int) []T { return typedChannel[T](&p.AudioPortBase, i) }

// AudioOutput is an audio output port with samples of type T.
type AudioOutput[T audio.Sample] struct {
	AudioPortBase
}

// NewAudioOutput creates an audio output on owner.
func NewAudioOutput[T audio.Sample](owner Component, name string, width int) (*AudioOutput[T], error) {
	base, err := newAudioPort(owner, name, Output, audio.TypeOf[T](), width)
	if err != nil {
		return nil, err
	}
	p := &AudioOutput[T]{AudioPortBase: base}
	if err := owner.base().addAudioPort(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Block returns the bound buffer.
func (p *AudioOutput[T]) Block() (*audio.Block[T], error) { return typedBlock[T](&p.AudioPortBase) }

// Channel returns channel i of the bound buffer, nil while unbound.
func (p *AudioOutput[T]) Channel(i int) []T { return typedChannel[T](&p.AudioPortBase, i) }

func typedBlock[T audio.Sample](p *AudioPortBase) (*audio.Block[T], error) {
	if p.buffer == nil {
		return nil, errors.Usagef(errors.ErrNotConnected, p.FullName(), "Block", "port is not bound")
	}
	b, ok := p.buffer.(*audio.Block[T])
	if !ok {
		return nil, errors.Internalf(errors.ErrTypeMismatch, p.FullName(), "Block",
			"bound buffer is %T", p.buffer)
	}
	return b, nil
}

func typedChannel[T audio.Sample](p *AudioPortBase, i int) []T {
	b, ok := p.buffer.(*audio.Block[T])
	if !ok || i < 0 || i >= b.Channels() {
		return nil
	}
	return b.Channel(i)
}

// NewAudioPort creates an audio port whose sample type is chosen at runtime.
func NewAudioPort(owner Component, name string, dir Direction, st audio.SampleType, width int) (AudioPort, error) {
	switch st {
	case audio.SampleFloat32:
		return newTypedAudioPort[float32](owner, name, dir, width)
	case audio.SampleFloat64:
		return newTypedAudioPort[float64](owner, name, dir, width)
	case audio.SampleInt8:
		return newTypedAudioPort[int8](owner, name, dir, width)
	case audio.SampleInt16:
		return newTypedAudioPort[int16](owner, name, dir, width)
	case audio.SampleInt32:
		return newTypedAudioPort[int32](owner, name, dir, width)
	case audio.SampleUint8:
		return newTypedAudioPort[uint8](owner, name, dir, width)
	case audio.SampleUint16:
		return newTypedAudioPort[uint16](owner, name, dir, width)
	case audio.SampleUint32:
		return newTypedAudioPort[uint32](owner, name, dir, width)
	default:
		return nil, errors.Invalidf(errors.ErrTypeMismatch, "AudioPort", "New",
			"unsupported sample type %s", st)
	}
}

func newTypedAudioPort[T audio.Sample](owner Component, name string, dir Direction, width int) (AudioPort, error) {
	if dir == Input {
		p, err := NewAudioInput[T](owner, name, width)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	p, err := NewAudioOutput[T](owner, name, width)
	if err != nil {
		return nil, err
	}
	return p, nil
}
