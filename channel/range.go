// Package channel provides the index-set language used to describe which channels of a
// sending audio port feed which channels of a receiving port.
//
// A Range is a (start, end, step) triple expanding to start, start+step, ... with
// Size() == (end-start)/step elements. A List is an ordered, possibly repeating
// sequence of explicit channel indices built from single indices, ranges or index
// slices.
package channel

import (
	"fmt"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// Range describes the channel indices start, start+step, ... (Size() elements).
// The zero value is an empty range with unit step.
type Range struct {
	start int
	end   int
	step  int
}

// NewRange creates a range. It fails if step is zero, if the sign of step does not
// match the direction from start to end, or if any element would be negative.
func NewRange(start, end, step int) (Range, error) {
	if step == 0 {
		return Range{}, errors.Invalidf(errors.ErrInvalidRange, "Range", "NewRange",
			"step must be non-zero (start %d, end %d)", start, end)
	}
	if step > 0 && end < start {
		return Range{}, errors.Invalidf(errors.ErrInvalidRange, "Range", "NewRange",
			"positive step %d requires end %d >= start %d", step, end, start)
	}
	if step < 0 && end > start {
		return Range{}, errors.Invalidf(errors.ErrInvalidRange, "Range", "NewRange",
			"negative step %d requires end %d <= start %d", step, end, start)
	}
	if start < 0 {
		return Range{}, errors.Invalidf(errors.ErrInvalidRange, "Range", "NewRange",
			"start %d is negative", start)
	}
	r := Range{start: start, end: end, step: step}
	if n := r.Size(); n > 0 && r.At(n-1) < 0 {
		return Range{}, errors.Invalidf(errors.ErrInvalidRange, "Range", "NewRange",
			"last index %d is negative", r.At(n-1))
	}
	return r, nil
}

// Span returns the unit-step range start, ..., end-1.
func Span(start, end int) (Range, error) {
	return NewRange(start, end, 1)
}

// MustRange is like NewRange but panics on invalid arguments.
// It is intended for literals in tests and static graph definitions.
func MustRange(start, end, step int) Range {
	r, err := NewRange(start, end, step)
	if err != nil {
		panic(err)
	}
	return r
}

// Start returns the first index of the range.
func (r Range) Start() int { return r.start }

// End returns the end bound the range was created with.
func (r Range) End() int { return r.end }

// Step returns the distance between consecutive indices.
func (r Range) Step() int {
	if r.step == 0 {
		return 1
	}
	return r.step
}

// Size returns the number of indices, (end-start)/step truncated toward zero.
func (r Range) Size() int {
	return (r.end - r.start) / r.Step()
}

// At returns the i-th index of the range, start + i*step.
func (r Range) At(i int) int {
	return r.start + i*r.Step()
}

// Indices expands the range into explicit indices.
func (r Range) Indices() []int {
	n := r.Size()
	out := make([]int, n)
	for i := range n {
		out[i] = r.At(i)
	}
	return out
}

// String renders the range in the compact list notation.
func (r Range) String() string {
	return FromRange(r).String()
}

// GoString supports %#v.
func (r Range) GoString() string {
	return fmt.Sprintf("channel.Range{start: %d, end: %d, step: %d}", r.start, r.end, r.Step())
}
