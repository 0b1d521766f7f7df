package buffer

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3a-spatialaudio/VISR-sub001/metric"
)

func newTestRing[T any](t *testing.T, options ...Option[T]) *Ring[T] {
	t.Helper()
	r, err := NewRing(options...)
	require.NoError(t, err)
	return r
}

func TestRing_FIFOOrder(t *testing.T) {
	r := newTestRing[string](t)

	r.Write("a")
	r.Write("b")
	r.Write("c")

	for _, want := range []string{"a", "b", "c"} {
		got, ok := r.Read()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := r.Read()
	assert.False(t, ok)
	assert.True(t, r.IsEmpty())
}

func TestRing_GrowsAcrossWrapAround(t *testing.T) {
	r := newTestRing(t, WithInitialCapacity[int](4))

	// Move head away from zero before growing
	for i := 0; i < 3; i++ {
		r.Write(i)
	}
	for i := 0; i < 2; i++ {
		_, _ = r.Read()
	}
	for i := 3; i < 20; i++ {
		r.Write(i)
	}

	assert.Equal(t, 18, r.Size())
	assert.GreaterOrEqual(t, r.Capacity(), 18)
	assert.Positive(t, r.Stats().Grows())

	got := r.ReadBatch(100)
	want := make([]int, 0, 18)
	for i := 2; i < 20; i++ {
		want = append(want, i)
	}
	assert.Equal(t, want, got)
}

func TestRing_PeekAndAt(t *testing.T) {
	r := newTestRing[int](t)

	_, ok := r.Peek()
	assert.False(t, ok)

	r.Write(7)
	r.Write(8)

	v, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, r.Size())

	v, ok = r.At(1)
	require.True(t, ok)
	assert.Equal(t, 8, v)
	_, ok = r.At(2)
	assert.False(t, ok)
	_, ok = r.At(-1)
	assert.False(t, ok)
}

func TestRing_ClearInvokesDropCallback(t *testing.T) {
	var dropped []int
	r := newTestRing(t, WithDropCallback[int](func(v int) { dropped = append(dropped, v) }))

	r.Write(1)
	r.Write(2)
	r.Clear()

	assert.Equal(t, []int{1, 2}, dropped)
	assert.True(t, r.IsEmpty())
	assert.Equal(t, int64(2), r.Stats().Drops())
}

func TestRing_Statistics(t *testing.T) {
	r := newTestRing[int](t)

	r.Write(1)
	r.Write(2)
	r.Write(3)
	_, _ = r.Peek()
	_, _ = r.Read()

	summary := r.Stats().Summary()
	assert.Equal(t, int64(3), summary.Writes)
	assert.Equal(t, int64(1), summary.Reads)
	assert.Equal(t, int64(1), summary.Peeks)
	assert.Equal(t, int64(2), summary.CurrentSize)
	assert.Equal(t, int64(3), summary.MaxSize)

	r.Stats().Reset()
	assert.Equal(t, int64(0), r.Stats().Writes())
}

func TestRing_Metrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	r := newTestRing(t, WithMetrics[int](registry, "events"))

	r.Write(1)
	r.Write(2)
	_, _ = r.Read()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.metrics.writes))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.size))

	// A second ring with the same owner conflicts
	_, err := NewRing(WithMetrics[int](registry, "events"))
	assert.Error(t, err)
}
