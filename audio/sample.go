// Package audio provides sample type tags, the platform alignment constants and the
// aligned multichannel buffers that back audio ports once a signal flow is resolved.
package audio

import "fmt"

// SampleType tags the element type of an audio port.
type SampleType int

// Supported sample types.
const (
	SampleInvalid SampleType = iota
	SampleFloat32
	SampleFloat64
	SampleInt8
	SampleInt16
	SampleInt32
	SampleUint8
	SampleUint16
	SampleUint32
)

// Sample is the set of element types an audio port may carry.
type Sample interface {
	~float32 | ~float64 | ~int8 | ~int16 | ~int32 | ~uint8 | ~uint16 | ~uint32
}

// AlignmentBytes is the byte alignment guaranteed for the start of every channel.
const AlignmentBytes = 32

// String returns the sample type name.
func (t SampleType) String() string {
	switch t {
	case SampleFloat32:
		return "float32"
	case SampleFloat64:
		return "float64"
	case SampleInt8:
		return "int8"
	case SampleInt16:
		return "int16"
	case SampleInt32:
		return "int32"
	case SampleUint8:
		return "uint8"
	case SampleUint16:
		return "uint16"
	case SampleUint32:
		return "uint32"
	default:
		return fmt.Sprintf("SampleType(%d)", int(t))
	}
}

// Size returns the size of one sample in bytes, or 0 for an invalid tag.
func (t SampleType) Size() int {
	switch t {
	case SampleInt8, SampleUint8:
		return 1
	case SampleInt16, SampleUint16:
		return 2
	case SampleFloat32, SampleInt32, SampleUint32:
		return 4
	case SampleFloat64:
		return 8
	default:
		return 0
	}
}

// AlignmentSamples returns AlignmentBytes expressed in samples of type t.
func (t SampleType) AlignmentSamples() int {
	if s := t.Size(); s > 0 {
		return AlignmentBytes / s
	}
	return 0
}

// TypeOf returns the tag for the sample type T.
func TypeOf[T Sample]() SampleType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return SampleFloat32
	case float64:
		return SampleFloat64
	case int8:
		return SampleInt8
	case int16:
		return SampleInt16
	case int32:
		return SampleInt32
	case uint8:
		return SampleUint8
	case uint16:
		return SampleUint16
	case uint32:
		return SampleUint32
	default:
		return SampleInvalid
	}
}

// AlignedStride rounds length up to the next multiple of the alignment of t.
func AlignedStride(t SampleType, length int) int {
	a := t.AlignmentSamples()
	if a <= 1 {
		return length
	}
	return (length + a - 1) / a * a
}
