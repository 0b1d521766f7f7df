package parameter

import (
	"encoding/json"
	"slices"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// Type names of the built-in vector parameters.
const (
	VectorFloatName  = "VectorFloat"
	VectorDoubleName = "VectorDouble"
)

// Type ids of the built-in vector parameters.
var (
	TypeVectorFloat  = ID(VectorFloatName)
	TypeVectorDouble = ID(VectorDoubleName)
)

// Real is the element type set of vector and matrix parameters.
type Real interface {
	float32 | float64
}

// Vector is a fixed-size sequence of values.
type Vector[T Real] struct {
	values []T
}

// NewVector creates a zero vector of the given size.
func NewVector[T Real](size int) *Vector[T] {
	return &Vector[T]{values: make([]T, max(size, 0))}
}

// Size returns the number of elements.
func (v *Vector[T]) Size() int { return len(v.values) }

// Values returns the elements for in-place access.
func (v *Vector[T]) Values() []T { return v.values }

// At returns element i.
func (v *Vector[T]) At(i int) T { return v.values[i] }

// SetAt replaces element i.
func (v *Vector[T]) SetAt(i int, value T) { v.values[i] = value }

// Set copies values into the vector. The length must equal Size().
func (v *Vector[T]) Set(values []T) error {
	if len(values) != len(v.values) {
		return errors.Invalidf(errors.ErrLengthMismatch, "Vector", "Set",
			"got %d values for vector of size %d", len(values), len(v.values))
	}
	copy(v.values, values)
	return nil
}

// Type implements Parameter.
func (*Vector[T]) Type() TypeID {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return TypeVectorFloat
	}
	return TypeVectorDouble
}

// Clone implements Parameter.
func (v *Vector[T]) Clone() Parameter {
	return &Vector[T]{values: slices.Clone(v.values)}
}

// Assign implements Parameter.
func (v *Vector[T]) Assign(src Parameter) error {
	o, ok := src.(*Vector[T])
	if !ok {
		return assignError(v, src)
	}
	return v.Set(o.values)
}

// MarshalJSON encodes the vector as {"values": [...]}.
func (v *Vector[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Values []T `json:"values"`
	}{v.values})
}

// UnmarshalJSON decodes {"values": [...]}; the length must match the configured size.
func (v *Vector[T]) UnmarshalJSON(data []byte) error {
	var wire struct {
		Values []T `json:"values"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	return v.Set(wire.Values)
}

func vectorConstructor[T Real]() Constructor {
	return func(cfg Config) (Parameter, error) {
		c, err := ConfigAs[VectorConfig](cfg)
		if err != nil {
			return nil, err
		}
		if c.Size < 0 {
			return nil, errors.Invalidf(errors.ErrInvalidConfig, "Vector", "New", "negative size %d", c.Size)
		}
		return NewVector[T](c.Size), nil
	}
}
