// Package buffer provides a generic, growable FIFO ring with always-on statistics.
//
// The ring has no capacity bound: Write never fails or drops, the backing array
// doubles when full. It is not safe for concurrent use; the owner serializes access.
// Prometheus metrics can be enabled with the WithMetrics option.
package buffer

// Buffer represents a generic FIFO buffer parameterized by item type T.
type Buffer[T any] interface {
	// Write appends an item at the back.
	Write(item T)

	// Read retrieves and removes the front item.
	// Returns the item and true if successful, zero value and false if the buffer is empty.
	Read() (T, bool)

	// ReadBatch retrieves and removes up to max items in FIFO order.
	ReadBatch(max int) []T

	// Peek retrieves the front item without removing it.
	// Returns the item and true if successful, zero value and false if the buffer is empty.
	Peek() (T, bool)

	// At returns the item at position i from the front without removing it.
	At(i int) (T, bool)

	// Size returns the current number of items in the buffer.
	Size() int

	// Capacity returns the size of the backing array.
	Capacity() int

	// IsEmpty returns true if the buffer contains no items.
	IsEmpty() bool

	// Clear removes all items from the buffer.
	Clear()

	// Stats returns buffer statistics (always available for observability).
	Stats() *Statistics
}

// DropCallback is called for every item discarded by Clear.
type DropCallback[T any] func(item T)

// NewRing creates an unbounded FIFO ring.
// Returns an error if metrics registration fails when metrics are requested.
func NewRing[T any](options ...Option[T]) (*Ring[T], error) {
	opts := applyOptions(options...)
	return newRing(opts)
}
