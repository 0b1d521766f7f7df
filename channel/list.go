package channel

import (
	"slices"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// List is an ordered, possibly repeating sequence of channel indices.
// Lists are immutable values; all constructors copy their input.
type List struct {
	indices []int
}

// Single returns a list holding one index.
func Single(index int) List {
	return List{indices: []int{index}}
}

// FromRange expands a range into a list.
func FromRange(r Range) List {
	return List{indices: r.Indices()}
}

// FromRanges concatenates the expansion of each range, in order.
func FromRanges(ranges ...Range) List {
	total := 0
	for _, r := range ranges {
		total += r.Size()
	}
	out := make([]int, 0, total)
	for _, r := range ranges {
		out = append(out, r.Indices()...)
	}
	return List{indices: out}
}

// FromIndices creates a list from explicit indices. Negative indices are rejected.
func FromIndices(indices ...int) (List, error) {
	for i, idx := range indices {
		if idx < 0 {
			return List{}, errors.Invalidf(errors.ErrChannelOutOfRange, "List", "FromIndices",
				"element %d has negative index %d", i, idx)
		}
	}
	return List{indices: slices.Clone(indices)}, nil
}

// MustIndices is like FromIndices but panics on negative indices.
func MustIndices(indices ...int) List {
	l, err := FromIndices(indices...)
	if err != nil {
		panic(err)
	}
	return l
}

// Identity returns the list 0, 1, ..., n-1.
func Identity(n int) List {
	out := make([]int, max(n, 0))
	for i := range out {
		out[i] = i
	}
	return List{indices: out}
}

// Concat joins lists in order.
func Concat(lists ...List) List {
	var out []int
	for _, l := range lists {
		out = append(out, l.indices...)
	}
	return List{indices: out}
}

// Len returns the number of elements.
func (l List) Len() int { return len(l.indices) }

// At returns the i-th element.
func (l List) At(i int) int { return l.indices[i] }

// Indices returns a copy of the elements.
func (l List) Indices() []int { return slices.Clone(l.indices) }

// Max returns the largest element, or -1 for an empty list.
func (l List) Max() int {
	if len(l.indices) == 0 {
		return -1
	}
	return slices.Max(l.indices)
}

// Equal reports whether both lists hold the same elements in the same order.
func (l List) Equal(other List) bool {
	return slices.Equal(l.indices, other.indices)
}

// Compare orders lists lexicographically by element.
func (l List) Compare(other List) int {
	return slices.Compare(l.indices, other.indices)
}

// CheckWidth verifies that every element addresses a channel of a port with the given width.
func (l List) CheckWidth(width int) error {
	for i, idx := range l.indices {
		if idx >= width {
			return errors.Invalidf(errors.ErrChannelOutOfRange, "List", "CheckWidth",
				"element %d (index %d) exceeds port width %d", i, idx, width)
		}
	}
	return nil
}
