package protocol

import (
	"fmt"
	"slices"
	"sync"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
)

// Constructor creates a protocol instance for a parameter type. Parameter instances
// are created through params.
type Constructor func(parameterType parameter.TypeID, cfg parameter.Config, params *parameter.Registry) (Protocol, error)

// Registration describes a protocol type.
type Registration struct {
	Name        string      `json:"name"`        // Protocol name, the source of the type id
	Description string      `json:"description"` // Human-readable description
	Constructor Constructor `json:"-"`

	// NewInput and NewOutput create polymorphic endpoints that carry any parameter type.
	NewInput  func() Input  `json:"-"`
	NewOutput func() Output `json:"-"`

	// Fan-out and fan-in limits of one protocol instance.
	MultipleInputs  bool `json:"multiple_inputs"`
	MultipleOutputs bool `json:"multiple_outputs"`
}

// ID returns the protocol type id derived from the registration name.
func (r *Registration) ID() TypeID {
	return ID(r.Name)
}

// Registry maps protocol type ids to constructors and endpoint factories.
//
// Like the parameter registry it seals on first use: after the first CreateProtocol,
// CreateInput or CreateOutput call, Register fails with ErrRegistrySealed.
type Registry struct {
	params        *parameter.Registry
	registrations map[TypeID]*Registration
	byName        map[string]*Registration
	sealed        bool
	mu            sync.RWMutex
}

// NewRegistry creates an empty protocol registry creating parameters through params.
func NewRegistry(params *parameter.Registry) *Registry {
	return &Registry{
		params:        params,
		registrations: make(map[TypeID]*Registration),
		byName:        make(map[string]*Registration),
	}
}

// Parameters returns the parameter registry used for protocol construction.
func (r *Registry) Parameters() *parameter.Registry {
	return r.params
}

// Register adds a protocol type. It fails if the id or the name is already bound.
func (r *Registry) Register(registration *Registration) error {
	if registration == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ProtocolRegistry", "Register", "registration validation")
	}
	if registration.Name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ProtocolRegistry", "Register", "name validation")
	}
	if registration.Constructor == nil || registration.NewInput == nil || registration.NewOutput == nil {
		return errors.Invalidf(errors.ErrInvalidConfig, "ProtocolRegistry", "Register",
			"protocol %q needs a constructor and endpoint factories", registration.Name)
	}

	id := registration.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return errors.Internalf(errors.ErrRegistrySealed, "ProtocolRegistry", "Register",
			"protocol %q registered after first use", registration.Name)
	}
	if existing, exists := r.registrations[id]; exists {
		return errors.Internalf(errors.ErrConflictingRegistration, "ProtocolRegistry", "Register",
			"protocol id %s (%q) is already bound to %q", id, registration.Name, existing.Name)
	}
	if _, exists := r.byName[registration.Name]; exists {
		return errors.Internalf(errors.ErrConflictingRegistration, "ProtocolRegistry", "Register",
			"protocol name %q is already registered", registration.Name)
	}

	copied := *registration
	r.registrations[id] = &copied
	r.byName[copied.Name] = &copied
	return nil
}

func (r *Registry) use(id TypeID, method string) (*Registration, error) {
	r.mu.Lock()
	r.sealed = true
	registration, exists := r.registrations[id]
	r.mu.Unlock()

	if !exists {
		return nil, errors.Invalidf(errors.ErrUnregisteredType, "ProtocolRegistry", method,
			"protocol id %s", id)
	}
	return registration, nil
}

// CreateProtocol instantiates protocol id for parameter type paramType.
func (r *Registry) CreateProtocol(id TypeID, paramType parameter.TypeID, cfg parameter.Config) (Protocol, error) {
	registration, err := r.use(id, "CreateProtocol")
	if err != nil {
		return nil, err
	}
	if r.params == nil || !r.params.Registered(paramType) {
		return nil, errors.Invalidf(errors.ErrUnregisteredType, "ProtocolRegistry", "CreateProtocol",
			"parameter type id %s for protocol %q", paramType, registration.Name)
	}

	p, err := registration.Constructor(paramType, cfg, r.params)
	if err != nil {
		return nil, errors.Wrap(err, "ProtocolRegistry", "CreateProtocol",
			fmt.Sprintf("construction of %q", registration.Name))
	}
	if p == nil {
		return nil, errors.Internalf(errors.ErrTypeMismatch, "ProtocolRegistry", "CreateProtocol",
			"constructor for %q returned no protocol", registration.Name)
	}
	if p.ProtocolType() != id || p.ParameterType() != paramType {
		return nil, errors.Internalf(errors.ErrTypeMismatch, "ProtocolRegistry", "CreateProtocol",
			"constructor for %q returned protocol %s carrying %s", registration.Name, p.ProtocolType(), p.ParameterType())
	}
	return p, nil
}

// CreateInput creates a polymorphic input endpoint of protocol id.
func (r *Registry) CreateInput(id TypeID) (Input, error) {
	registration, err := r.use(id, "CreateInput")
	if err != nil {
		return nil, err
	}
	return registration.NewInput(), nil
}

// CreateOutput creates a polymorphic output endpoint of protocol id.
func (r *Registry) CreateOutput(id TypeID) (Output, error) {
	registration, err := r.use(id, "CreateOutput")
	if err != nil {
		return nil, err
	}
	return registration.NewOutput(), nil
}

// Lookup returns the registration of protocol id.
func (r *Registry) Lookup(id TypeID) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	registration, exists := r.registrations[id]
	return registration, exists
}

// ByName returns the registration of a protocol name.
func (r *Registry) ByName(name string) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	registration, exists := r.byName[name]
	return registration, exists
}

// Describe returns the protocol name for id, falling back to the numeric id.
func (r *Registry) Describe(id TypeID) string {
	if registration, ok := r.Lookup(id); ok {
		return registration.Name
	}
	return id.String()
}

// Seal ends the registration phase explicitly.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether the registry is read-only.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// List returns the registered protocol names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
