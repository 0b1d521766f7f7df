package parameter

import (
	"encoding/json"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// StringName is the type name of String.
const StringName = "String"

// TypeString is the type id of String.
var TypeString = ID(StringName)

// String holds a text value with an optional maximum length.
type String struct {
	value     string
	maxLength int
}

// NewString creates a string parameter. maxLength 0 means unlimited.
func NewString(value string, maxLength int) (*String, error) {
	s := &String{maxLength: maxLength}
	if err := s.Set(value); err != nil {
		return nil, err
	}
	return s, nil
}

// Value returns the text.
func (s *String) Value() string { return s.value }

// MaxLength returns the configured limit, 0 for unlimited.
func (s *String) MaxLength() int { return s.maxLength }

// Set replaces the text. It fails if the text exceeds the maximum length.
func (s *String) Set(value string) error {
	if s.maxLength > 0 && len(value) > s.maxLength {
		return errors.Invalidf(errors.ErrInvalidConfig, "String", "Set",
			"length %d exceeds maximum %d", len(value), s.maxLength)
	}
	s.value = value
	return nil
}

// Type implements Parameter.
func (*String) Type() TypeID { return TypeString }

// Clone implements Parameter.
func (s *String) Clone() Parameter {
	c := *s
	return &c
}

// Assign implements Parameter.
func (s *String) Assign(src Parameter) error {
	o, ok := src.(*String)
	if !ok {
		return assignError(s, src)
	}
	return s.Set(o.value)
}

// MarshalJSON encodes the text as {"value": ...}.
func (s *String) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value string `json:"value"`
	}{s.value})
}

// UnmarshalJSON decodes {"value": ...} honoring the maximum length.
func (s *String) UnmarshalJSON(data []byte) error {
	var wire struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	return s.Set(wire.Value)
}

func newStringParameter(cfg Config) (Parameter, error) {
	if cfg == nil {
		return &String{}, nil
	}
	c, err := ConfigAs[StringConfig](cfg)
	if err != nil {
		return nil, err
	}
	return &String{maxLength: c.MaxLength}, nil
}
