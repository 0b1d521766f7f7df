package parameter

// EmptyConfig is the configuration of parameter types without construction options.
type EmptyConfig struct{}

// Clone implements Config.
func (EmptyConfig) Clone() Config { return EmptyConfig{} }

// Equal implements Config.
func (EmptyConfig) Equal(other Config) bool {
	_, ok := other.(EmptyConfig)
	return ok
}

// StringConfig limits the length of String parameters. Zero means unlimited.
type StringConfig struct {
	MaxLength int `json:"max_length"`
}

// Clone implements Config.
func (c StringConfig) Clone() Config { return c }

// Equal implements Config.
func (c StringConfig) Equal(other Config) bool {
	o, ok := other.(StringConfig)
	return ok && o == c
}

// VectorConfig sets the number of elements of Vector parameters.
type VectorConfig struct {
	Size int `json:"size"`
}

// Clone implements Config.
func (c VectorConfig) Clone() Config { return c }

// Equal implements Config.
func (c VectorConfig) Equal(other Config) bool {
	o, ok := other.(VectorConfig)
	return ok && o == c
}

// MatrixConfig sets the dimensions of Matrix parameters.
type MatrixConfig struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// Clone implements Config.
func (c MatrixConfig) Clone() Config { return c }

// Equal implements Config.
func (c MatrixConfig) Equal(other Config) bool {
	o, ok := other.(MatrixConfig)
	return ok && o == c
}

// optionalEmpty accepts nil or EmptyConfig.
func optionalEmpty(cfg Config) error {
	if cfg == nil {
		return nil
	}
	_, err := ConfigAs[EmptyConfig](cfg)
	return err
}
