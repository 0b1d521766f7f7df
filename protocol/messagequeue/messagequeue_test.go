package messagequeue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
)

func newProtocol(t *testing.T, id parameter.TypeID, cfg parameter.Config) *Protocol {
	t.Helper()
	params := parameter.NewRegistry()
	require.NoError(t, parameter.RegisterDefaults(params))
	p, err := New(id, cfg, params)
	require.NoError(t, err)
	return p
}

func connectedStrings(t *testing.T) (*Protocol, *Output[*parameter.String], *Input[*parameter.String]) {
	t.Helper()
	p := newProtocol(t, parameter.TypeString, nil)
	out := NewOutput[*parameter.String]()
	in := NewInput[*parameter.String]()
	require.NoError(t, p.ConnectOutput(out))
	require.NoError(t, p.ConnectInput(in))
	return p, out, in
}

func str(t *testing.T, v string) *parameter.String {
	t.Helper()
	s, err := parameter.NewString(v, 0)
	require.NoError(t, err)
	return s
}

func TestFIFOOrder(t *testing.T) {
	_, out, in := connectedStrings(t)

	for _, v := range []string{"A", "B", "C"} {
		require.NoError(t, out.Enqueue(str(t, v)))
	}
	assert.Equal(t, 3, in.Size())

	for _, want := range []string{"A", "B", "C"} {
		assert.False(t, in.Empty())
		got, err := in.Pop()
		require.NoError(t, err)
		assert.Equal(t, want, got.Value())
	}
	assert.True(t, in.Empty())

	_, err := in.Pop()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyQueue))
	assert.True(t, errors.IsUsage(err))
}

func TestFrontDoesNotRemove(t *testing.T) {
	p, out, in := connectedStrings(t)

	_, err := in.Front()
	assert.True(t, errors.Is(err, errors.ErrEmptyQueue))

	require.NoError(t, out.Enqueue(str(t, "first")))
	require.NoError(t, out.Enqueue(str(t, "second")))

	v, err := in.Front()
	require.NoError(t, err)
	assert.Equal(t, "first", v.Value())
	assert.Equal(t, 2, p.Size())

	stats := p.Stats()
	assert.Equal(t, int64(2), stats.Writes())
	assert.Equal(t, int64(1), stats.Peeks())
}

func TestEnqueueCopiesValue(t *testing.T) {
	_, out, in := connectedStrings(t)

	v := str(t, "before")
	require.NoError(t, out.Enqueue(v))
	require.NoError(t, v.Set("after"))

	got, err := in.Pop()
	require.NoError(t, err)
	assert.Equal(t, "before", got.Value())
}

func TestClear(t *testing.T) {
	p, out, in := connectedStrings(t)
	require.NoError(t, out.Enqueue(str(t, "x")))
	require.NoError(t, out.Enqueue(str(t, "y")))

	in.Clear()
	assert.True(t, p.Empty())
	assert.Equal(t, 0, out.Size())
}

func TestSingleProducerSingleConsumer(t *testing.T) {
	p, _, _ := connectedStrings(t)

	err := p.ConnectInput(NewInput[*parameter.String]())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAlreadyConnected))

	err = p.ConnectOutput(NewOutput[*parameter.String]())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAlreadyConnected))
}

func TestPolymorphicEnqueueChecksType(t *testing.T) {
	p := newProtocol(t, parameter.TypeDouble, nil)
	out := NewOutput[parameter.Parameter]()
	in := NewInput[*parameter.Scalar[float64]]()
	require.NoError(t, p.ConnectOutput(out))
	require.NoError(t, p.ConnectInput(in))

	err := out.Enqueue(parameter.NewScalar[float32](1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTypeMismatch))

	require.NoError(t, out.Enqueue(parameter.NewScalar(2.5)))
	got, err := in.Pop()
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.Value)
}

func TestUnconnectedEndpoints(t *testing.T) {
	in := NewInput[*parameter.String]()
	out := NewOutput[*parameter.String]()

	assert.True(t, in.Empty())
	assert.Equal(t, 0, in.Size())
	_, err := in.Pop()
	assert.True(t, errors.Is(err, errors.ErrNotConnected))
	_, err = in.Front()
	assert.True(t, errors.Is(err, errors.ErrNotConnected))
	assert.True(t, errors.IsUsage(out.Enqueue(str(t, "x"))))
}

func TestDisconnect(t *testing.T) {
	p, out, in := connectedStrings(t)

	assert.True(t, p.DisconnectInput(in))
	assert.False(t, p.DisconnectInput(in))
	assert.True(t, p.DisconnectOutput(out))
	assert.False(t, p.DisconnectOutput(NewOutput[*parameter.String]()))

	require.NoError(t, p.ConnectInput(NewInput[*parameter.String]()))
}
