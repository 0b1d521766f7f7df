// Package parameter defines the typed control values exchanged between components,
// their configuration objects, and the registry that creates parameter instances from
// a runtime type id without compile-time knowledge of the concrete type.
package parameter

import (
	"fmt"
	"hash/fnv"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// TypeID identifies a parameter type. It is derived from a short human-readable name
// with ID, so independently written packages agree on ids without coordination.
type TypeID uint32

// ID returns the type id for a parameter type name (32-bit FNV-1a of the name).
func ID(name string) TypeID {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return TypeID(h.Sum32())
}

// String implements fmt.Stringer.
func (id TypeID) String() string {
	return fmt.Sprintf("0x%08x", uint32(id))
}

// Parameter is a typed control value. Implementations are pointer types.
type Parameter interface {
	// Type returns the parameter type id. It must not depend on the value.
	Type() TypeID
	// Clone returns a deep copy of the same concrete type.
	Clone() Parameter
	// Assign copies the value of src into the receiver. src must have the same
	// concrete type and a compatible shape.
	Assign(src Parameter) error
}

// Config configures the construction of parameter instances, e.g. a vector size.
type Config interface {
	// Clone returns a deep copy of the configuration.
	Clone() Config
	// Equal reports whether other describes the same configuration.
	Equal(other Config) bool
}

// As converts p to the concrete parameter type T.
func As[T Parameter](p Parameter) (T, error) {
	t, ok := p.(T)
	if !ok {
		var zero T
		return zero, errors.Invalidf(errors.ErrTypeMismatch, "parameter", "As",
			"parameter of type %T is not %T", p, zero)
	}
	return t, nil
}

// ConfigAs converts cfg to the concrete configuration type C.
// A nil configuration fails with ErrMissingConfig.
func ConfigAs[C Config](cfg Config) (C, error) {
	var zero C
	if cfg == nil {
		return zero, errors.Invalidf(errors.ErrMissingConfig, "parameter", "ConfigAs",
			"expected %T", zero)
	}
	c, ok := cfg.(C)
	if !ok {
		return zero, errors.Invalidf(errors.ErrTypeMismatch, "parameter", "ConfigAs",
			"configuration of type %T is not %T", cfg, zero)
	}
	return c, nil
}

// ConfigsEqual compares two possibly nil configurations.
func ConfigsEqual(a, b Config) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return a.Equal(b)
	}
}

// CloneConfig clones a possibly nil configuration.
func CloneConfig(cfg Config) Config {
	if cfg == nil {
		return nil
	}
	return cfg.Clone()
}

func assignError(dst, src Parameter) error {
	return errors.Invalidf(errors.ErrTypeMismatch, "parameter", "Assign",
		"cannot assign %T to %T", src, dst)
}
