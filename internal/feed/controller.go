// Package feed holds the navigation core: the prefetch buffer, the gesture
// interpreter and the controller that ties them to a content source.
package feed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/abelbrown/versefeed/internal/logging"
	"github.com/abelbrown/versefeed/internal/model"
)

// Source is the part of the content source a controller reads from.
// *store.Store satisfies it.
type Source interface {
	FetchRandom(ctx context.Context, tag string) (model.Item, error)
	FetchRange(ctx context.Context, key model.RangeKey) ([]model.Item, error)
}

// Mode selects how a controller fills its buffer.
type Mode int

const (
	ModeRandom     Mode = iota // one random item per fetch, unbounded
	ModeSequential             // one whole range, ending in a sentinel
)

func (m Mode) String() string {
	if m == ModeSequential {
		return "sequential"
	}
	return "random"
}

// State is the controller lifecycle state.
type State int

const (
	StateIdle State = iota
	StateReady
	StateFetching
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFetching:
		return "fetching"
	case StateExhausted:
		return "exhausted"
	default:
		return "idle"
	}
}

// DefaultPrefetchAhead is how many unseen items the random feed keeps.
const DefaultPrefetchAhead = 1

// Option configures a Controller.
type Option func(*Controller)

// WithPrefetchAhead sets how many items past the cursor trigger a fetch.
func WithPrefetchAhead(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.aheadBy = n
		}
	}
}

// WithRand sets the random source used for decor selection.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) {
		if r != nil {
			c.rng = r
		}
	}
}

// WithFetchLimiter paces fetches against the source.
func WithFetchLimiter(l *rate.Limiter) Option {
	return func(c *Controller) { c.limiter = l }
}

// WithLogger sets the parent logger. The controller logs under its own prefix.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller drives one feed session: it owns a Buffer, fetches from a
// Source on demand and exposes the visible window.
//
// # Thread Safety
//
// Controller is safe for concurrent use. Navigation calls (Start, Advance,
// Retreat, Prefetch) are serialized, so at most one fetch is in flight per
// controller and appends never interleave. Snapshot reads (Window, State,
// Cursor, ...) never wait on a fetch.
//
// Controller owns no goroutines; callers run blocking calls wherever they
// like and poll the snapshot afterwards.
type Controller struct {
	id      string
	mode    Mode
	src     Source
	tag     string
	key     model.RangeKey
	aheadBy int
	rng     *rand.Rand
	limiter *rate.Limiter
	logger  *log.Logger

	// Navigation serialization
	opMu sync.Mutex

	// Snapshot state (protected by mu)
	mu      sync.RWMutex
	buf     Buffer
	state   State
	fetches int
	lastErr error
}

// NewRandom creates a controller for an endless random feed of items tagged
// with tag.
func NewRandom(src Source, tag string, opts ...Option) *Controller {
	c := newController(src, ModeRandom, opts)
	c.tag = model.NormalizeCategory(tag)
	return c
}

// NewSequential creates a controller that reads the range key from start to
// its sentinel.
func NewSequential(src Source, key model.RangeKey, opts ...Option) *Controller {
	c := newController(src, ModeSequential, opts)
	c.key = key
	return c
}

func newController(src Source, mode Mode, opts []Option) *Controller {
	c := &Controller{
		id:      uuid.NewString(),
		mode:    mode,
		src:     src,
		aheadBy: DefaultPrefetchAhead,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithPrefix("feed " + c.id[:8])
	return c
}

// ID returns the controller's unique id.
func (c *Controller) ID() string { return c.id }

// Mode returns the controller's mode.
func (c *Controller) Mode() Mode { return c.mode }

// Start loads the first items. It is a no-op once the controller has items.
func (c *Controller) Start(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if c.State() != StateIdle {
		return nil
	}
	return c.start(ctx)
}

// start must be called with opMu held and the controller idle.
func (c *Controller) start(ctx context.Context) error {
	c.setState(StateFetching)

	if c.mode == ModeSequential {
		items, err := c.fetchRange(ctx)
		if err != nil {
			return c.fail("load range", err)
		}
		if len(items) == 0 {
			items = []model.Item{model.Sentinel()}
		}

		// One decor for the whole reading session.
		decor := c.randomDecor()
		for i := range items {
			items[i] = items[i].WithDecor(decor)
		}

		c.mu.Lock()
		c.buf.Initialize(items)
		c.state = StateReady
		if items[0].IsSentinel() {
			c.state = StateExhausted
		}
		c.lastErr = nil
		c.mu.Unlock()

		c.logger.Info("range loaded", "range", c.key.String(), "items", len(items))
		return nil
	}

	seed, err := c.fetchRandom(ctx)
	if err != nil {
		return c.fail("load seed", err)
	}

	c.mu.Lock()
	c.buf.Initialize([]model.Item{seed.WithDecor(c.randomDecor())})
	c.state = StateReady
	c.lastErr = nil
	c.mu.Unlock()

	// Prime a second item so the first advance is already buffered.
	if err := c.appendRandom(ctx); err != nil {
		c.logger.Warn("priming fetch failed", "tag", c.tag, "error", err)
	}
	return nil
}

// Advance moves the cursor forward by one. In random mode it fetches first
// when the buffer is running low. It reports whether the visible item
// changed. If the fetch fails and the next item is not buffered, the cursor
// stays put and the error is returned; otherwise the failure is only kept
// in Err. Advancing an exhausted controller is a no-op.
func (c *Controller) Advance(ctx context.Context) (bool, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	switch c.State() {
	case StateExhausted:
		return false, nil
	case StateIdle:
		// Nothing is visible yet; a failed start is retried here.
		if err := c.start(ctx); err != nil {
			return false, err
		}
		return true, nil
	}

	if c.mode == ModeRandom && c.NeedsFetch() {
		if err := c.appendRandom(ctx); err != nil {
			// The move is only dropped when its target never arrived.
			if !c.hasNext() {
				return false, err
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.buf.Cursor() + 1
	if next >= c.buf.Len() {
		// A range without a sentinel ends here.
		return false, nil
	}
	c.mustMove(next)

	if cur, _ := c.buf.Current(); cur.IsSentinel() {
		c.state = StateExhausted
		c.logger.Debug("reached end of range", "range", c.key.String())
	}
	return true, nil
}

// Retreat moves the cursor back by one. It never fetches and is a no-op at
// the start of the buffer.
func (c *Controller) Retreat() bool {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.buf.Len() == 0 || c.buf.Cursor() == 0 {
		return false
	}
	c.mustMove(c.buf.Cursor() - 1)
	if c.state == StateExhausted {
		c.state = StateReady
	}
	return true
}

// Prefetch appends one item if the buffer is running low. Overlapping calls
// coalesce: the need is re-checked once the previous fetch has landed.
// Sequential controllers never need to prefetch.
func (c *Controller) Prefetch(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if c.mode != ModeRandom || c.State() != StateReady || !c.NeedsFetch() {
		return nil
	}
	return c.appendRandom(ctx)
}

// appendRandom fetches one random item and appends it with the next decor
// in the round-robin. Must be called with opMu held.
func (c *Controller) appendRandom(ctx context.Context) error {
	c.setState(StateFetching)

	item, err := c.fetchRandom(ctx)
	if err != nil {
		return c.fail("fetch next", err)
	}

	c.mu.Lock()
	prev, _ := c.buf.Last()
	c.buf.Append(item.WithDecor(model.NextDecor(prev.Decor)))
	c.state = StateReady
	c.lastErr = nil
	c.mu.Unlock()
	return nil
}

func (c *Controller) fetchRandom(ctx context.Context) (model.Item, error) {
	if err := c.wait(ctx); err != nil {
		return model.Item{}, err
	}
	c.countFetch()
	return c.src.FetchRandom(ctx, c.tag)
}

func (c *Controller) fetchRange(ctx context.Context) ([]model.Item, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	c.countFetch()
	return c.src.FetchRange(ctx, c.key)
}

func (c *Controller) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("fetch limiter: %w", err)
	}
	return nil
}

func (c *Controller) countFetch() {
	c.mu.Lock()
	c.fetches++
	c.mu.Unlock()
}

// fail resolves a failed fetch: the controller falls back to Ready, or Idle
// if it has nothing to show.
func (c *Controller) fail(op string, err error) error {
	c.mu.Lock()
	c.state = StateReady
	if c.buf.Len() == 0 {
		c.state = StateIdle
	}
	c.lastErr = err
	c.mu.Unlock()

	c.logger.Warn("fetch failed", "op", op, "mode", c.mode.String(), "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

// mustMove moves the buffer cursor. Must be called with mu held.
func (c *Controller) mustMove(index int) {
	if err := c.buf.MoveTo(index); err != nil {
		panic(fmt.Sprintf("feed %s: %v", c.id, err))
	}
}

func (c *Controller) hasNext() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf.Cursor() < c.buf.Len()-1
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// randomDecor picks a decor uniformly in [1, MaxDecor].
func (c *Controller) randomDecor() int {
	return c.rng.IntN(model.MaxDecor) + 1
}

// Window returns the visible items around the cursor.
func (c *Controller) Window() Window {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf.Window()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Cursor returns the index of the visible item.
func (c *Controller) Cursor() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf.Cursor()
}

// Len returns the number of buffered items.
func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf.Len()
}

// NeedsFetch reports whether the random feed is running low. A sequential
// controller has its whole range buffered and never needs a fetch.
func (c *Controller) NeedsFetch() bool {
	if c.mode != ModeRandom {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf.NeedsFetch(c.aheadBy)
}

// CanRetreat reports whether a retreat gesture should be honoured. Random
// feeds accept it everywhere; Retreat itself is a no-op at the start.
func (c *Controller) CanRetreat() bool {
	if c.mode == ModeRandom {
		return true
	}
	return c.Cursor() > 0
}

// FetchCount returns how many source calls the controller has made.
func (c *Controller) FetchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetches
}

// Err returns the error of the most recent failed fetch, cleared by the
// next successful one.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}
