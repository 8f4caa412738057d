package events

import "sync"

// DefaultRingSize is the default ring capacity.
const DefaultRingSize = 256

// Ring is a fixed-size circular buffer of events. Safe for concurrent use.
type Ring struct {
	mu    sync.Mutex
	buf   []Event
	head  int // next write position
	count int
}

// NewRing creates a ring holding up to size events.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{buf: make([]Event, size)}
}

// Push adds an event, overwriting the oldest when full.
func (r *Ring) Push(e Event) {
	r.mu.Lock()
	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
	r.mu.Unlock()
}

// Last returns up to n of the most recent events, oldest first.
func (r *Ring) Last(n int) []Event {
	if n <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if n > r.count {
		n = r.count
	}
	out := make([]Event, n)
	start := (r.head - n + len(r.buf)) % len(r.buf)
	for i := range out {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}

// Snapshot returns every buffered event, oldest first.
func (r *Ring) Snapshot() []Event {
	return r.Last(r.Len())
}

// Len returns the number of buffered events.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Stats counts buffered events by kind. Failed events are also counted
// under KindFetchError regardless of their own kind.
func (r *Ring) Stats() map[Kind]int {
	counts := make(map[Kind]int)
	for _, e := range r.Snapshot() {
		counts[e.Kind]++
		if e.IsError() && e.Kind != KindFetchError {
			counts[KindFetchError]++
		}
	}
	return counts
}
