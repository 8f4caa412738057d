package events

// Goroutine safety:
// The drain goroutine is the only reader of r.ch and the only writer to r.w.
// r.mu guards the ring pointer only; the ring has its own lock.

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/versefeed/internal/logging"
)

// queueSize is the capacity of the async write channel.
const queueSize = 1024

type entry struct {
	data []byte
	ev   Event
}

// Recorder writes events as JSONL through a background goroutine.
// Record never blocks: when the queue is full the event is dropped.
type Recorder struct {
	mu        sync.Mutex
	ring      *Ring
	sessionID string
	ch        chan entry
	w         io.Writer
	closer    io.Closer
	dropped   atomic.Uint64
	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewRecorder starts a recorder writing to w. Call Close to flush.
func NewRecorder(w io.Writer) *Recorder {
	r := &Recorder{
		sessionID: uuid.NewString(),
		ch:        make(chan entry, queueSize),
		w:         w,
		done:      make(chan struct{}),
	}
	go r.drain()
	return r
}

// Discard returns a recorder that keeps events in its ring only.
func Discard() *Recorder {
	return NewRecorder(io.Discard)
}

// Open starts a recorder appending to <dir>/logs/events-YYYY-MM-DD.jsonl.
func Open(dir string) (*Recorder, error) {
	logDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(logDir, "events-"+time.Now().Format("2006-01-02")+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	r := NewRecorder(f)
	r.closer = f
	return r, nil
}

func (r *Recorder) drain() {
	defer close(r.done)
	for e := range r.ch {
		if _, err := r.w.Write(e.data); err != nil {
			r.dropped.Add(1)
		}

		r.mu.Lock()
		ring := r.ring
		r.mu.Unlock()

		if ring != nil {
			ring.Push(e.ev)
		}
	}
}

// Record queues an event. It stamps Time (if zero) and the session id.
// Safe to call concurrently with Close; late events are dropped.
func (r *Recorder) Record(e Event) {
	if r == nil {
		return
	}
	defer func() {
		if recover() != nil {
			r.dropped.Add(1)
		}
	}()

	if r.closed.Load() {
		r.dropped.Add(1)
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.SessionID = r.sessionID

	data, err := json.Marshal(e)
	if err != nil {
		r.dropped.Add(1)
		return
	}

	select {
	case r.ch <- entry{data: append(data, '\n'), ev: e}:
	default:
		r.dropped.Add(1)
	}
}

// Attach sets the ring that receives every written event.
func (r *Recorder) Attach(ring *Ring) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring = ring
}

// SessionID returns the id stamped on every event.
func (r *Recorder) SessionID() string { return r.sessionID }

// Dropped returns the number of events lost so far.
func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }

// Close flushes queued events and stops the drain goroutine.
func (r *Recorder) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		close(r.ch)
		<-r.done

		if d := r.dropped.Load(); d > 0 {
			logging.Warn("events dropped", "count", d, "session", r.sessionID)
		}
		if r.closer != nil {
			err = r.closer.Close()
		}
	})
	return err
}
