package buffer

import (
	"sync/atomic"
)

// Statistics tracks buffer operation counters.
type Statistics struct {
	writes      atomic.Int64
	reads       atomic.Int64
	peeks       atomic.Int64
	drops       atomic.Int64
	grows       atomic.Int64
	currentSize atomic.Int64
	maxSize     atomic.Int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Write records a buffer write operation.
func (s *Statistics) Write() { s.writes.Add(1) }

// Read records a buffer read operation.
func (s *Statistics) Read() { s.reads.Add(1) }

// Peek records a buffer peek operation.
func (s *Statistics) Peek() { s.peeks.Add(1) }

// Drop records an item discarded by Clear.
func (s *Statistics) Drop() { s.drops.Add(1) }

// Grow records a reallocation of the backing array.
func (s *Statistics) Grow() { s.grows.Add(1) }

// UpdateSize updates the current buffer size and the high-water mark.
func (s *Statistics) UpdateSize(size int64) {
	s.currentSize.Store(size)
	for {
		peak := s.maxSize.Load()
		if size <= peak || s.maxSize.CompareAndSwap(peak, size) {
			return
		}
	}
}

// Writes returns the total number of write operations.
func (s *Statistics) Writes() int64 { return s.writes.Load() }

// Reads returns the total number of read operations.
func (s *Statistics) Reads() int64 { return s.reads.Load() }

// Peeks returns the total number of peek operations.
func (s *Statistics) Peeks() int64 { return s.peeks.Load() }

// Drops returns the total number of items discarded by Clear.
func (s *Statistics) Drops() int64 { return s.drops.Load() }

// Grows returns the number of backing array reallocations.
func (s *Statistics) Grows() int64 { return s.grows.Load() }

// CurrentSize returns the current number of items in the buffer.
func (s *Statistics) CurrentSize() int64 { return s.currentSize.Load() }

// MaxSize returns the maximum number of items the buffer has held.
func (s *Statistics) MaxSize() int64 { return s.maxSize.Load() }

// Reset resets all statistics to zero.
func (s *Statistics) Reset() {
	s.writes.Store(0)
	s.reads.Store(0)
	s.peeks.Store(0)
	s.drops.Store(0)
	s.grows.Store(0)
	s.currentSize.Store(0)
	s.maxSize.Store(0)
}

// StatsSummary is a snapshot of all statistics.
type StatsSummary struct {
	Writes      int64 `json:"writes"`
	Reads       int64 `json:"reads"`
	Peeks       int64 `json:"peeks"`
	Drops       int64 `json:"drops"`
	Grows       int64 `json:"grows"`
	CurrentSize int64 `json:"current_size"`
	MaxSize     int64 `json:"max_size"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Writes:      s.Writes(),
		Reads:       s.Reads(),
		Peeks:       s.Peeks(),
		Drops:       s.Drops(),
		Grows:       s.Grows(),
		CurrentSize: s.CurrentSize(),
		MaxSize:     s.MaxSize(),
	}
}
