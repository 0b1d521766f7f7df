package parameter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

func newDefaultRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, RegisterDefaults(r))
	return r
}

func TestIDIsStable(t *testing.T) {
	assert.Equal(t, ID("MatrixFloat"), ID("MatrixFloat"))
	assert.NotEqual(t, ID("MatrixFloat"), ID("MatrixDouble"))
	// FNV-1a offset basis for the empty string
	assert.Equal(t, TypeID(0x811c9dc5), ID(""))
	assert.Equal(t, "0x811c9dc5", ID("").String())
}

func TestRegistryCreateUnregistered(t *testing.T) {
	r := NewRegistry()
	_, err := r.Create(ID("NoSuchType"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnregisteredType))
	assert.True(t, errors.IsInvalid(err))
}

func TestRegistryCreateReturnsRegisteredType(t *testing.T) {
	r := newDefaultRegistry(t)

	tests := []struct {
		name string
		id   TypeID
		cfg  Config
	}{
		{"double", TypeDouble, nil},
		{"float", TypeFloat, EmptyConfig{}},
		{"integer", TypeInteger, nil},
		{"unsigned", TypeUnsignedInteger, nil},
		{"boolean", TypeBoolean, nil},
		{"string", TypeString, StringConfig{MaxLength: 8}},
		{"vector float", TypeVectorFloat, VectorConfig{Size: 4}},
		{"vector double", TypeVectorDouble, VectorConfig{Size: 2}},
		{"matrix float", TypeMatrixFloat, MatrixConfig{Rows: 2, Columns: 3}},
		{"matrix double", TypeMatrixDouble, MatrixConfig{Rows: 1, Columns: 1}},
		{"listener", TypeListenerPosition, nil},
		{"routing", TypeSignalRouting, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Create(tt.id, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.id, p.Type())
		})
	}
}

func TestRegistryRegisterTwiceFails(t *testing.T) {
	r := NewRegistry()
	reg := &Registration{Name: DoubleName, Constructor: scalarConstructor[float64]()}
	require.NoError(t, r.Register(reg))

	err := r.Register(reg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflictingRegistration))
	assert.True(t, errors.IsInternal(err))
}

func TestRegistrySealedAfterCreate(t *testing.T) {
	r := newDefaultRegistry(t)
	assert.False(t, r.Sealed())

	_, err := r.Create(TypeDouble, nil)
	require.NoError(t, err)
	assert.True(t, r.Sealed())

	err = r.Register(&Registration{Name: "Late", Constructor: scalarConstructor[float64]()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRegistrySealed))
	assert.True(t, errors.IsInternal(err))
}

func TestRegistryRegisterValidation(t *testing.T) {
	r := NewRegistry()
	assert.True(t, errors.IsInvalid(r.Register(nil)))
	assert.True(t, errors.IsInvalid(r.Register(&Registration{Constructor: newListenerPosition})))
	assert.True(t, errors.IsInvalid(r.Register(&Registration{Name: "X"})))
}

func TestRegistryConstructorTypeMismatch(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Registration{
		Name:        "Impostor",
		Constructor: scalarConstructor[float64](),
	}))
	_, err := r.Create(ID("Impostor"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTypeMismatch))
	assert.True(t, errors.IsInternal(err))
}

func TestRegistryLookups(t *testing.T) {
	r := newDefaultRegistry(t)

	assert.True(t, r.Registered(TypeMatrixFloat))
	assert.False(t, r.Registered(ID("Unknown")))

	name, ok := r.Name(TypeVectorDouble)
	assert.True(t, ok)
	assert.Equal(t, VectorDoubleName, name)

	assert.Equal(t, BooleanName, r.Describe(TypeBoolean))
	assert.Equal(t, ID("Unknown").String(), r.Describe(ID("Unknown")))

	names := r.List()
	assert.Len(t, names, len(Defaults()))
	assert.IsIncreasing(t, names)
}

func TestRegistryCreateMissingConfig(t *testing.T) {
	r := newDefaultRegistry(t)
	_, err := r.Create(TypeVectorFloat, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingConfig))
}

func TestRegistryCreateWrongConfigType(t *testing.T) {
	r := newDefaultRegistry(t)
	_, err := r.Create(TypeMatrixDouble, VectorConfig{Size: 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTypeMismatch))
	assert.True(t, errors.IsInvalid(err))
}
