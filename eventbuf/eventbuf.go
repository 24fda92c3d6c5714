// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package eventbuf provides a capacity-bounded, timestamp-sorted event
// container used for parameter automation and note events.
//
// A Buffer[V] keeps at most Capacity() (timestamp, value) pairs sorted
// by timestamp ascending, with ties broken by value order when a
// comparator is supplied (NewOrdered) or by stable insertion order
// otherwise (New). Range queries run in O(log n) via binary search.
package eventbuf

import (
	"errors"
	"iter"
	"sort"

	"code.hybscloud.com/iox"
)

// ErrFull is returned by Push when the buffer is already at capacity
// and the pushed event is not an overwrite of an existing one.
var ErrFull = errors.New("eventbuf: buffer at capacity")

// IsNonFailure reports whether err is nil or ErrFull: a caller that
// drops the event and continues (the soft-failure policy this buffer
// is built for) is not handling a genuine failure. Falls back to
// [iox.IsNonFailure] for any other error so callers can classify
// errors uniformly across packages.
func IsNonFailure(err error) bool {
	if err == nil || errors.Is(err, ErrFull) {
		return true
	}
	return iox.IsNonFailure(err)
}

// Entry is one timestamped value.
type Entry[V any] struct {
	Timestamp int
	Value     V
}

// Buffer is a sorted, capacity-bounded sequence of timestamped values.
type Buffer[V any] struct {
	capacity int
	data     []Entry[V]
	cmp      func(a, b V) int
}

// New creates a Buffer with the given capacity. Ties between equal
// timestamps are broken by stable insertion order (the value type has
// no ordering).
func New[V any](capacity int) *Buffer[V] {
	return &Buffer[V]{capacity: capacity}
}

// NewOrdered creates a Buffer whose values are compared with cmp
// (negative if a<b, zero if equal, positive if a>b) to break ties
// between equal timestamps, and to detect exact duplicates (same
// timestamp and value compares equal) which overwrite in place instead
// of growing the buffer.
func NewOrdered[V any](capacity int, cmp func(a, b V) int) *Buffer[V] {
	return &Buffer[V]{capacity: capacity, cmp: cmp}
}

// Len returns the number of stored events.
func (b *Buffer[V]) Len() int { return len(b.data) }

// Capacity returns the maximum number of events the buffer can hold.
func (b *Buffer[V]) Capacity() int { return b.capacity }

// IsEmpty reports whether the buffer holds no events.
func (b *Buffer[V]) IsEmpty() bool { return len(b.data) == 0 }

// Clear removes all events without changing capacity.
func (b *Buffer[V]) Clear() { b.data = b.data[:0] }

// span returns [lo, hi) indices covering entries with Timestamp == t.
func (b *Buffer[V]) span(t int) (lo, hi int) {
	lo = sort.Search(len(b.data), func(i int) bool { return b.data[i].Timestamp >= t })
	hi = sort.Search(len(b.data), func(i int) bool { return b.data[i].Timestamp > t })
	return lo, hi
}

// Push inserts (t, v) in sorted order. If an entry already exists at
// timestamp t whose value compares equal under the buffer's
// comparator, it is overwritten in place (dedupe) rather than growing
// the buffer. Otherwise, if the buffer is at capacity, Push fails and
// returns ErrFull, leaving the buffer unchanged.
func (b *Buffer[V]) Push(t int, v V) error {
	lo, hi := b.span(t)

	pos := hi
	if b.cmp != nil {
		pos = lo + sort.Search(hi-lo, func(i int) bool {
			return b.cmp(b.data[lo+i].Value, v) >= 0
		})
		if pos < hi && b.cmp(b.data[pos].Value, v) == 0 {
			b.data[pos] = Entry[V]{Timestamp: t, Value: v}
			return nil
		}
	}

	if len(b.data) == b.capacity {
		return ErrFull
	}

	b.data = append(b.data, Entry[V]{})
	copy(b.data[pos+1:], b.data[pos:])
	b.data[pos] = Entry[V]{Timestamp: t, Value: v}
	return nil
}

// EventAt returns the first event stored at exactly timestamp t.
func (b *Buffer[V]) EventAt(t int) (V, bool) {
	lo, hi := b.span(t)
	if lo == hi {
		var zero V
		return zero, false
	}
	return b.data[lo].Value, true
}

// HasEvent reports whether any event is stored at exactly timestamp t.
func (b *Buffer[V]) HasEvent(t int) bool {
	_, ok := b.EventAt(t)
	return ok
}

// NextEvent returns the event at timestamp t if one exists, otherwise
// the first event with a timestamp strictly greater than t.
func (b *Buffer[V]) NextEvent(t int) (Entry[V], bool) {
	if v, ok := b.EventAt(t); ok {
		return Entry[V]{Timestamp: t, Value: v}, true
	}
	hi := sort.Search(len(b.data), func(i int) bool { return b.data[i].Timestamp > t })
	if hi == len(b.data) {
		return Entry[V]{}, false
	}
	return b.data[hi], true
}

// Before returns a view of every event with timestamp strictly less than t.
func (b *Buffer[V]) Before(t int) Slice[V] {
	hi := sort.Search(len(b.data), func(i int) bool { return b.data[i].Timestamp >= t })
	return Slice[V]{buf: b, lo: 0, hi: hi}
}

// After returns a view of every event with timestamp strictly greater than t.
func (b *Buffer[V]) After(t int) Slice[V] {
	lo := sort.Search(len(b.data), func(i int) bool { return b.data[i].Timestamp > t })
	return Slice[V]{buf: b, lo: lo, hi: len(b.data)}
}

// InRange returns a view of every event with timestamp in [a, b] (both
// endpoints inclusive), matching spec example: pushes at 10,20,30,40
// with InRange(15,35) yielding exactly the events at 20 and 30.
func (buf *Buffer[V]) InRange(a, b int) Slice[V] {
	lo := sort.Search(len(buf.data), func(i int) bool { return buf.data[i].Timestamp >= a })
	hi := sort.Search(len(buf.data), func(i int) bool { return buf.data[i].Timestamp > b })
	return Slice[V]{buf: buf, lo: lo, hi: hi}
}

// Full returns a view over every event in the buffer.
func (b *Buffer[V]) Full() Slice[V] {
	return Slice[V]{buf: b, lo: 0, hi: len(b.data)}
}

// IterEvents iterates every (timestamp, value) pair in order.
func (b *Buffer[V]) IterEvents() iter.Seq2[int, V] {
	return b.Full().IterEvents()
}

// MutateEvents exposes the underlying entries to f for in-place
// modification (e.g. shifting every timestamp for a delay line), then
// re-sorts the buffer. This is the Go equivalent of a mutable iterator
// that re-sorts on drop: the re-sort happens unconditionally when f
// returns, whether or not f actually touched any timestamp.
func (b *Buffer[V]) MutateEvents(f func([]Entry[V])) {
	f(b.data)
	sort.SliceStable(b.data, func(i, j int) bool {
		if b.data[i].Timestamp != b.data[j].Timestamp {
			return b.data[i].Timestamp < b.data[j].Timestamp
		}
		if b.cmp != nil {
			return b.cmp(b.data[i].Value, b.data[j].Value) < 0
		}
		return false
	})
}

// Slice is a borrowed, contiguous view over a subrange of a Buffer,
// offering the same read-only query surface as the owning Buffer.
type Slice[V any] struct {
	buf    *Buffer[V]
	lo, hi int
}

// Len returns the number of events in the view.
func (s Slice[V]) Len() int { return s.hi - s.lo }

// At returns the i'th entry of the view (0 <= i < Len()).
func (s Slice[V]) At(i int) Entry[V] { return s.buf.data[s.lo+i] }

// IterEvents iterates every (timestamp, value) pair in the view, in order.
func (s Slice[V]) IterEvents() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		for i := s.lo; i < s.hi; i++ {
			e := s.buf.data[i]
			if !yield(e.Timestamp, e.Value) {
				return
			}
		}
	}
}

// EventAt returns the first event in the view stored at exactly timestamp t.
func (s Slice[V]) EventAt(t int) (V, bool) {
	lo := s.lo + sort.Search(s.hi-s.lo, func(i int) bool { return s.buf.data[s.lo+i].Timestamp >= t })
	if lo < s.hi && s.buf.data[lo].Timestamp == t {
		return s.buf.data[lo].Value, true
	}
	var zero V
	return zero, false
}

// HasEvent reports whether the view has an event at exactly timestamp t.
func (s Slice[V]) HasEvent(t int) bool {
	_, ok := s.EventAt(t)
	return ok
}
