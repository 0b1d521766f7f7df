package buffer

import (
	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

const minCapacity = 4

// Ring is an unbounded FIFO backed by a circular array that grows on demand.
type Ring[T any] struct {
	items   []T
	size    int
	head    int            // Points to the next read position
	stats   *Statistics    // ALWAYS initialized for observability
	metrics *bufferMetrics // Optional Prometheus metrics
	opts    *bufferOptions[T]
}

var _ Buffer[int] = (*Ring[int])(nil)

func newRing[T any](opts *bufferOptions[T]) (*Ring[T], error) {
	capacity := max(opts.initialCapacity, minCapacity)

	var metrics *bufferMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newBufferMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.Wrap(err, "Ring", "New", "metrics registration")
		}
	}

	return &Ring[T]{
		items:   make([]T, capacity),
		stats:   NewStatistics(),
		metrics: metrics,
		opts:    opts,
	}, nil
}

// Write appends an item, growing the backing array when full.
func (r *Ring[T]) Write(item T) {
	if r.size == len(r.items) {
		r.grow()
	}
	r.items[(r.head+r.size)%len(r.items)] = item
	r.size++

	r.stats.Write()
	r.stats.UpdateSize(int64(r.size))
	if r.metrics != nil {
		r.metrics.recordWrite(r.size)
	}
}

func (r *Ring[T]) grow() {
	items := make([]T, 2*len(r.items))
	n := copy(items, r.items[r.head:])
	copy(items[n:], r.items[:r.head])
	r.items = items
	r.head = 0
	r.stats.Grow()
}

// Read retrieves and removes the front item.
func (r *Ring[T]) Read() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}

	item := r.items[r.head]
	r.items[r.head] = zero // Clear for GC
	r.head = (r.head + 1) % len(r.items)
	r.size--

	r.stats.Read()
	r.stats.UpdateSize(int64(r.size))
	if r.metrics != nil {
		r.metrics.recordRead(r.size)
	}
	return item, true
}

// ReadBatch retrieves and removes up to max items.
func (r *Ring[T]) ReadBatch(max int) []T {
	if max <= 0 || r.size == 0 {
		return nil
	}
	count := min(max, r.size)
	result := make([]T, 0, count)
	for range count {
		item, _ := r.Read()
		result = append(result, item)
	}
	return result
}

// Peek retrieves the front item without removing it.
func (r *Ring[T]) Peek() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}

	r.stats.Peek()
	if r.metrics != nil {
		r.metrics.recordPeek()
	}
	return r.items[r.head], true
}

// At returns item i counted from the front.
func (r *Ring[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= r.size {
		return zero, false
	}
	return r.items[(r.head+i)%len(r.items)], true
}

// Size returns the current number of items.
func (r *Ring[T]) Size() int {
	return r.size
}

// Capacity returns the length of the backing array.
func (r *Ring[T]) Capacity() int {
	return len(r.items)
}

// IsEmpty returns true if the ring holds no items.
func (r *Ring[T]) IsEmpty() bool {
	return r.size == 0
}

// Clear removes all items. The drop callback, if any, sees them in FIFO order.
func (r *Ring[T]) Clear() {
	var zero T
	for i := 0; i < r.size; i++ {
		idx := (r.head + i) % len(r.items)
		if r.opts.dropCallback != nil {
			r.opts.dropCallback(r.items[idx])
		}
		r.items[idx] = zero
		r.stats.Drop()
	}
	r.head = 0
	r.size = 0

	r.stats.UpdateSize(0)
	if r.metrics != nil {
		r.metrics.updateSize(0)
	}
}

// Stats returns the ring statistics.
func (r *Ring[T]) Stats() *Statistics {
	return r.stats
}
