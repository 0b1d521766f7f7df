package audio

import (
	"fmt"
	"unsafe"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// Buffer is a type-erased multichannel sample buffer. Channel i occupies the samples
// [i*Stride(), i*Stride()+Length()) of the underlying storage.
type Buffer interface {
	SampleType() SampleType
	Channels() int
	Length() int
	Stride() int
	// CopyChannel copies channel srcCh of src into channel dstCh of the receiver.
	CopyChannel(dstCh int, src Buffer, srcCh int) error
	// Zero clears all channels.
	Zero()
}

// Block is the concrete aligned buffer for samples of type T.
type Block[T Sample] struct {
	data     []T
	channels int
	length   int
	stride   int
}

// NewBlock allocates a buffer of channels x length samples with every channel start
// aligned to AlignmentBytes.
func NewBlock[T Sample](channels, length int) *Block[T] {
	st := TypeOf[T]()
	stride := AlignedStride(st, length)
	pad := st.AlignmentSamples()
	raw := make([]T, channels*stride+pad)
	// Shift the start so that element 0 sits on an AlignmentBytes boundary.
	offset := 0
	if len(raw) > 0 && pad > 1 {
		addr := uintptr(unsafe.Pointer(&raw[0]))
		if rem := addr % AlignmentBytes; rem != 0 {
			offset = int((AlignmentBytes - rem) / uintptr(st.Size()))
		}
	}
	return &Block[T]{
		data:     raw[offset : offset+channels*stride],
		channels: channels,
		length:   length,
		stride:   stride,
	}
}

// SampleType implements Buffer.
func (b *Block[T]) SampleType() SampleType { return TypeOf[T]() }

// Channels implements Buffer.
func (b *Block[T]) Channels() int { return b.channels }

// Length implements Buffer.
func (b *Block[T]) Length() int { return b.length }

// Stride implements Buffer.
func (b *Block[T]) Stride() int { return b.stride }

// Data returns the underlying storage, starting at channel 0.
func (b *Block[T]) Data() []T { return b.data }

// Channel returns channel i as a slice of Length() samples.
func (b *Block[T]) Channel(i int) []T {
	start := i * b.stride
	return b.data[start : start+b.length : start+b.length]
}

// Zero implements Buffer.
func (b *Block[T]) Zero() {
	clear(b.data)
}

// CopyChannel implements Buffer.
func (b *Block[T]) CopyChannel(dstCh int, src Buffer, srcCh int) error {
	s, ok := src.(*Block[T])
	if !ok {
		return errors.Invalidf(errors.ErrTypeMismatch, "Block", "CopyChannel",
			"cannot copy %s samples into %s buffer", src.SampleType(), b.SampleType())
	}
	if dstCh < 0 || dstCh >= b.channels || srcCh < 0 || srcCh >= s.channels {
		return errors.Invalidf(errors.ErrChannelOutOfRange, "Block", "CopyChannel",
			"channel %d -> %d outside %d/%d channels", srcCh, dstCh, s.channels, b.channels)
	}
	copy(b.Channel(dstCh), s.Channel(srcCh))
	return nil
}

// String implements fmt.Stringer.
func (b *Block[T]) String() string {
	return fmt.Sprintf("Block[%s]{channels: %d, length: %d, stride: %d}",
		b.SampleType(), b.channels, b.length, b.stride)
}

// NewBuffer allocates a Block for the sample type tag t.
func NewBuffer(t SampleType, channels, length int) (Buffer, error) {
	switch t {
	case SampleFloat32:
		return NewBlock[float32](channels, length), nil
	case SampleFloat64:
		return NewBlock[float64](channels, length), nil
	case SampleInt8:
		return NewBlock[int8](channels, length), nil
	case SampleInt16:
		return NewBlock[int16](channels, length), nil
	case SampleInt32:
		return NewBlock[int32](channels, length), nil
	case SampleUint8:
		return NewBlock[uint8](channels, length), nil
	case SampleUint16:
		return NewBlock[uint16](channels, length), nil
	case SampleUint32:
		return NewBlock[uint32](channels, length), nil
	default:
		return nil, errors.Invalidf(errors.ErrTypeMismatch, "audio", "NewBuffer",
			"unsupported sample type %s", t)
	}
}
