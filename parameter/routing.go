package parameter

import (
	"slices"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// SignalRoutingName is the type name of SignalRouting.
const SignalRoutingName = "SignalRouting"

// TypeSignalRouting is the type id of SignalRouting.
var TypeSignalRouting = ID(SignalRoutingName)

// Route maps one input channel to one output channel.
type Route struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// SignalRouting is a set of input to output channel routes.
// Each output is fed by at most one input.
type SignalRouting struct {
	Routes []Route `json:"routes"`
}

// Add inserts a route, replacing any existing route to the same output.
func (s *SignalRouting) Add(input, output int) error {
	if input < 0 || output < 0 {
		return errors.Invalidf(errors.ErrChannelOutOfRange, "SignalRouting", "Add",
			"negative channel in route %d->%d", input, output)
	}
	s.Remove(output)
	s.Routes = append(s.Routes, Route{Input: input, Output: output})
	return nil
}

// Remove deletes the route to output and reports whether one existed.
func (s *SignalRouting) Remove(output int) bool {
	before := len(s.Routes)
	s.Routes = slices.DeleteFunc(s.Routes, func(r Route) bool { return r.Output == output })
	return len(s.Routes) != before
}

// Input returns the input routed to output.
func (s *SignalRouting) Input(output int) (int, bool) {
	for _, r := range s.Routes {
		if r.Output == output {
			return r.Input, true
		}
	}
	return 0, false
}

// Type implements Parameter.
func (*SignalRouting) Type() TypeID { return TypeSignalRouting }

// Clone implements Parameter.
func (s *SignalRouting) Clone() Parameter {
	return &SignalRouting{Routes: slices.Clone(s.Routes)}
}

// Assign implements Parameter.
func (s *SignalRouting) Assign(src Parameter) error {
	o, ok := src.(*SignalRouting)
	if !ok {
		return assignError(s, src)
	}
	s.Routes = append(s.Routes[:0], o.Routes...)
	return nil
}

func newSignalRouting(cfg Config) (Parameter, error) {
	if err := optionalEmpty(cfg); err != nil {
		return nil, err
	}
	return &SignalRouting{}, nil
}
