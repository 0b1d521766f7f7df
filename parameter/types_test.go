package parameter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

func TestScalarCloneIsDeep(t *testing.T) {
	s := NewScalar(0.5)
	c := s.Clone().(*Scalar[float64])
	c.Value = 2
	assert.Equal(t, 0.5, s.Value)
	assert.Equal(t, TypeDouble, s.Type())
	assert.Equal(t, TypeBoolean, NewScalar(true).Type())
	assert.Equal(t, TypeUnsignedInteger, NewScalar(uint64(3)).Type())
}

func TestScalarAssign(t *testing.T) {
	dst := NewScalar[float32](0)
	require.NoError(t, dst.Assign(NewScalar[float32](1.5)))
	assert.Equal(t, float32(1.5), dst.Value)

	err := dst.Assign(NewScalar(1.5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTypeMismatch))
}

func TestStringMaxLength(t *testing.T) {
	s, err := NewString("abc", 4)
	require.NoError(t, err)
	assert.Equal(t, "abc", s.Value())

	err = s.Set("abcde")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.Equal(t, "abc", s.Value())

	_, err = NewString("too long", 3)
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"value":"xy"}`), s))
	assert.Equal(t, "xy", s.Value())
	assert.Error(t, json.Unmarshal([]byte(`{"value":"xyzzy"}`), s))
}

func TestVectorSetAndAssign(t *testing.T) {
	v := NewVector[float32](3)
	require.NoError(t, v.Set([]float32{1, 2, 3}))
	assert.Equal(t, float32(2), v.At(1))

	err := v.Set([]float32{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrLengthMismatch))

	c := v.Clone().(*Vector[float32])
	c.SetAt(0, 9)
	assert.Equal(t, float32(1), v.At(0))

	assert.Error(t, v.Assign(NewVector[float32](2)))
	assert.Error(t, v.Assign(NewVector[float64](3)))
}

func TestVectorJSON(t *testing.T) {
	v := NewVector[float64](2)
	require.NoError(t, json.Unmarshal([]byte(`{"values":[0.25,0.75]}`), v))
	assert.Equal(t, []float64{0.25, 0.75}, v.Values())

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"values":[0.25,0.75]}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"values":[1]}`), v))
}

func TestMatrixAccess(t *testing.T) {
	m := NewMatrix[float32](2, 3)
	m.SetAt(1, 2, 5)
	assert.Equal(t, float32(5), m.At(1, 2))
	assert.Equal(t, []float32{0, 0, 5}, m.Row(1))

	m.Fill(1)
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1}, m.Data())

	other := NewMatrix[float32](3, 2)
	err := other.Assign(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrLengthMismatch))

	same := NewMatrix[float32](2, 3)
	require.NoError(t, same.Assign(m))
	assert.Equal(t, m.Data(), same.Data())
}

func TestMatrixJSON(t *testing.T) {
	m := NewMatrix[float64](1, 2)
	require.NoError(t, json.Unmarshal([]byte(`{"rows":1,"columns":2,"data":[3,4]}`), m))
	assert.Equal(t, 4.0, m.At(0, 1))
	assert.Error(t, json.Unmarshal([]byte(`{"rows":2,"columns":1,"data":[3,4]}`), m))
}

func TestSignalRouting(t *testing.T) {
	var s SignalRouting
	require.NoError(t, s.Add(0, 1))
	require.NoError(t, s.Add(2, 1))
	require.NoError(t, s.Add(3, 0))

	in, ok := s.Input(1)
	assert.True(t, ok)
	assert.Equal(t, 2, in)
	assert.Len(t, s.Routes, 2)

	assert.True(t, s.Remove(0))
	assert.False(t, s.Remove(0))
	assert.Error(t, s.Add(-1, 0))

	c := s.Clone().(*SignalRouting)
	require.NoError(t, c.Add(5, 5))
	assert.Len(t, s.Routes, 1)
}

func TestListenerPositionAssign(t *testing.T) {
	src := &ListenerPosition{X: 1, Yaw: 0.5}
	dst := &ListenerPosition{}
	require.NoError(t, dst.Assign(src))
	assert.Equal(t, *src, *dst)
	assert.Error(t, dst.Assign(&SignalRouting{}))
}

func TestConfigHelpers(t *testing.T) {
	assert.True(t, ConfigsEqual(nil, nil))
	assert.False(t, ConfigsEqual(nil, EmptyConfig{}))
	assert.True(t, ConfigsEqual(VectorConfig{Size: 2}, VectorConfig{Size: 2}))
	assert.False(t, ConfigsEqual(VectorConfig{Size: 2}, MatrixConfig{Rows: 2}))
	assert.Nil(t, CloneConfig(nil))
	assert.Equal(t, MatrixConfig{Rows: 1, Columns: 2}, CloneConfig(MatrixConfig{Rows: 1, Columns: 2}))

	v, err := As[*Vector[float32]](NewVector[float32](1))
	require.NoError(t, err)
	assert.Equal(t, 1, v.Size())
	_, err = As[*Vector[float64]](NewVector[float32](1))
	assert.True(t, errors.Is(err, errors.ErrTypeMismatch))
}
