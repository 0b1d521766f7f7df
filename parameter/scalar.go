package parameter

// Type names of the built-in scalar parameters.
const (
	DoubleName          = "Double"
	FloatName           = "Float"
	IntegerName         = "Integer"
	UnsignedIntegerName = "UnsignedInteger"
	BooleanName         = "Boolean"
)

// Type ids of the built-in scalar parameters.
var (
	TypeDouble          = ID(DoubleName)
	TypeFloat           = ID(FloatName)
	TypeInteger         = ID(IntegerName)
	TypeUnsignedInteger = ID(UnsignedIntegerName)
	TypeBoolean         = ID(BooleanName)
)

// ScalarValue is the set of element types of Scalar.
type ScalarValue interface {
	float64 | float32 | int64 | uint64 | bool
}

// Scalar holds a single value.
type Scalar[T ScalarValue] struct {
	Value T `json:"value"`
}

// NewScalar creates a scalar parameter holding v.
func NewScalar[T ScalarValue](v T) *Scalar[T] {
	return &Scalar[T]{Value: v}
}

// Type implements Parameter.
func (*Scalar[T]) Type() TypeID {
	var zero T
	switch any(zero).(type) {
	case float64:
		return TypeDouble
	case float32:
		return TypeFloat
	case int64:
		return TypeInteger
	case uint64:
		return TypeUnsignedInteger
	default:
		return TypeBoolean
	}
}

// Clone implements Parameter.
func (s *Scalar[T]) Clone() Parameter {
	return &Scalar[T]{Value: s.Value}
}

// Assign implements Parameter.
func (s *Scalar[T]) Assign(src Parameter) error {
	o, ok := src.(*Scalar[T])
	if !ok {
		return assignError(s, src)
	}
	s.Value = o.Value
	return nil
}

func scalarConstructor[T ScalarValue]() Constructor {
	return func(cfg Config) (Parameter, error) {
		if err := optionalEmpty(cfg); err != nil {
			return nil, err
		}
		return &Scalar[T]{}, nil
	}
}
