package parameter

import (
	"fmt"
	"slices"
	"sync"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// Constructor creates a parameter instance from a configuration.
type Constructor func(cfg Config) (Parameter, error)

// Registration binds a parameter type name (and the id derived from it) to a constructor.
type Registration struct {
	Name        string      `json:"name"`        // Type name, e.g. "MatrixFloat"
	Description string      `json:"description"` // Human-readable description
	Constructor Constructor `json:"-"`           // Constructor function (not serializable)
}

// ID returns the type id derived from the registration name.
func (r *Registration) ID() TypeID {
	return ID(r.Name)
}

// Registry maps parameter type ids to constructors.
//
// The lifecycle is register-many, then read-only: the first call to Create seals the
// registry and later registrations fail with ErrRegistrySealed. Lookups are safe for
// concurrent use.
type Registry struct {
	registrations map[TypeID]*Registration // Registry by type id
	sealed        bool
	mu            sync.RWMutex // Protects the map and the sealed flag
}

// NewRegistry creates a new empty parameter registry.
func NewRegistry() *Registry {
	return &Registry{
		registrations: make(map[TypeID]*Registration),
	}
}

// Register adds a parameter type. It fails if the id is already bound.
func (r *Registry) Register(registration *Registration) error {
	if registration == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ParameterRegistry", "Register", "registration validation")
	}
	if registration.Name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ParameterRegistry", "Register", "name validation")
	}
	if registration.Constructor == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ParameterRegistry", "Register", "constructor validation")
	}

	id := registration.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return errors.Internalf(errors.ErrRegistrySealed, "ParameterRegistry", "Register",
			"parameter type %q registered after first use", registration.Name)
	}
	if existing, exists := r.registrations[id]; exists {
		return errors.Internalf(errors.ErrConflictingRegistration, "ParameterRegistry", "Register",
			"parameter type id %s (%q) is already bound to %q", id, registration.Name, existing.Name)
	}

	copied := *registration
	r.registrations[id] = &copied
	return nil
}

// Create instantiates the parameter type id with the given configuration.
func (r *Registry) Create(id TypeID, cfg Config) (Parameter, error) {
	r.mu.Lock()
	r.sealed = true
	registration, exists := r.registrations[id]
	r.mu.Unlock()

	if !exists {
		return nil, errors.Invalidf(errors.ErrUnregisteredType, "ParameterRegistry", "Create",
			"parameter type id %s", id)
	}

	p, err := registration.Constructor(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "ParameterRegistry", "Create", fmt.Sprintf("construction of %q", registration.Name))
	}
	if p == nil || p.Type() != id {
		return nil, errors.Internalf(errors.ErrTypeMismatch, "ParameterRegistry", "Create",
			"constructor for %q returned %T", registration.Name, p)
	}
	return p, nil
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

// Registered reports whether id has a constructor.
func (r *Registry) Registered(id TypeID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.registrations[id]
	return exists
}

// Name returns the type name registered for id.
func (r *Registry) Name(id TypeID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	registration, exists := r.registrations[id]
	if !exists {
		return "", false
	}
	return registration.Name, true
}

// Describe returns a readable label for id, falling back to the numeric id.
func (r *Registry) Describe(id TypeID) string {
	if name, ok := r.Name(id); ok {
		return name
	}
	return id.String()
}

// List returns the registered type names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.registrations))
	for _, registration := range r.registrations {
		names = append(names, registration.Name)
	}
	slices.Sort(names)
	return names
}
