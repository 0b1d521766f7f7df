package parameter

// Defaults returns the registrations of all built-in parameter types.
func Defaults() []*Registration {
	return []*Registration{
		{Name: DoubleName, Description: "64-bit floating point scalar", Constructor: scalarConstructor[float64]()},
		{Name: FloatName, Description: "32-bit floating point scalar", Constructor: scalarConstructor[float32]()},
		{Name: IntegerName, Description: "Signed integer scalar", Constructor: scalarConstructor[int64]()},
		{Name: UnsignedIntegerName, Description: "Unsigned integer scalar", Constructor: scalarConstructor[uint64]()},
		{Name: BooleanName, Description: "Boolean flag", Constructor: scalarConstructor[bool]()},
		{Name: StringName, Description: "Text value, optional maximum length", Constructor: newStringParameter},
		{Name: VectorFloatName, Description: "Fixed-size float32 vector", Constructor: vectorConstructor[float32]()},
		{Name: VectorDoubleName, Description: "Fixed-size float64 vector", Constructor: vectorConstructor[float64]()},
		{Name: MatrixFloatName, Description: "Dense float32 matrix", Constructor: matrixConstructor[float32]()},
		{Name: MatrixDoubleName, Description: "Dense float64 matrix", Constructor: matrixConstructor[float64]()},
		{Name: ListenerPositionName, Description: "Listener position and orientation", Constructor: newListenerPosition},
		{Name: SignalRoutingName, Description: "Input to output channel routing", Constructor: newSignalRouting},
	}
}

// RegisterDefaults registers all built-in parameter types in r.
func RegisterDefaults(r *Registry) error {
	for _, registration := range Defaults() {
		if err := r.Register(registration); err != nil {
			return err
		}
	}
	return nil
}
