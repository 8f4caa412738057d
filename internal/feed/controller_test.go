package feed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/abelbrown/versefeed/internal/logging"
	"github.com/abelbrown/versefeed/internal/model"
	"github.com/abelbrown/versefeed/internal/store"
)

// fakeSource serves numbered verses and counts calls. Setting fail makes
// every call fail with that error until it is cleared.
type fakeSource struct {
	mu         sync.Mutex
	fail       error
	rangeItems []model.Item
	random     int
	ranges     int
	delay      time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeSource) enter() func() {
	n := f.inFlight.Add(1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return func() { f.inFlight.Add(-1) }
}

func (f *fakeSource) FetchRandom(ctx context.Context, tag string) (model.Item, error) {
	defer f.enter()()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return model.Item{}, f.fail
	}
	f.random++
	return model.Item{Body: fmt.Sprintf("%s verse %d", tag, f.random), Label: fmt.Sprintf("Psalms 1:%d", f.random)}, nil
}

func (f *fakeSource) FetchRange(ctx context.Context, key model.RangeKey) ([]model.Item, error) {
	defer f.enter()()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.ranges++
	return append(append([]model.Item(nil), f.rangeItems...), model.Sentinel()), nil
}

func (f *fakeSource) setFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

func chapter(n int) []model.Item {
	out := make([]model.Item, n)
	for i := range out {
		out[i] = model.Item{Body: fmt.Sprintf("v%d", i+1), Label: model.Label("John", 3, i+1)}
	}
	return out
}

func seeded() Option {
	return WithRand(rand.New(rand.NewPCG(1, 2)))
}

var errNotFound = fmt.Errorf("random verse: %w", store.ErrNotFound)

func TestRandomStartPrimesBuffer(t *testing.T) {
	src := &fakeSource{}
	c := NewRandom(src, "Hope", seeded(), WithLogger(logging.Discard()))
	assert.Equal(t, StateIdle, c.State())
	assert.True(t, c.Window().Empty())

	require.NoError(t, c.Start(context.Background()))

	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 0, c.Cursor())
	assert.Equal(t, 2, c.FetchCount())
	assert.NotNil(t, c.Window().Next, "second item primed before first render")
	assert.Contains(t, c.Window().Current.Body, "hope", "tag is normalized")

	// Start is a no-op once running.
	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, 2, c.FetchCount())
}

func TestRandomDecorSequence(t *testing.T) {
	src := &fakeSource{}
	c := NewRandom(src, "hope", seeded())
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	var decors []int
	first := c.Window().Current.Decor
	assert.GreaterOrEqual(t, first, 1)
	assert.LessOrEqual(t, first, model.MaxDecor)
	decors = append(decors, first)

	for range 25 {
		moved, err := c.Advance(ctx)
		require.NoError(t, err)
		require.True(t, moved)
		decors = append(decors, c.Window().Current.Decor)
	}

	for i := 1; i < len(decors); i++ {
		assert.Equal(t, decors[i-1]%10+1, decors[i], "decor %d", i)
		assert.NotEqual(t, decors[i-1], decors[i])
	}
}

func TestRandomAdvanceKeepsPace(t *testing.T) {
	src := &fakeSource{}
	c := NewRandom(src, "hope", seeded())
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	for i := range 40 {
		needed := c.NeedsFetch()
		before := c.Len()

		_, err := c.Advance(ctx)
		require.NoError(t, err)

		if needed {
			assert.Equal(t, before+1, c.Len(), "advance %d must resolve the pending fetch", i)
		}
		w := c.Window()
		assert.NotNil(t, w.Next, "next item is always buffered after advance %d", i)
		assert.LessOrEqual(t, len(w.Items()), 3)
		assert.Equal(t, i+1, c.Cursor())
	}
	assert.Equal(t, 42, c.FetchCount())
}

func TestPrefetchCoalesces(t *testing.T) {
	src := &fakeSource{}
	c := NewRandom(src, "hope", seeded())
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	require.True(t, c.NeedsFetch())
	require.NoError(t, c.Prefetch(ctx))
	assert.Equal(t, 3, c.Len())
	assert.False(t, c.NeedsFetch())

	// Already satisfied: no further source calls.
	require.NoError(t, c.Prefetch(ctx))
	require.NoError(t, c.Prefetch(ctx))
	assert.Equal(t, 3, c.FetchCount())

	// The next advance is served from the buffer.
	moved, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 3, c.FetchCount())
}

func TestConcurrentPrefetchRunsOneFetch(t *testing.T) {
	src := &fakeSource{delay: 5 * time.Millisecond}
	c := NewRandom(src, "hope", seeded())
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Prefetch(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, int32(1), src.maxInFlight.Load())
}

func TestConcurrentAdvanceIsSerialized(t *testing.T) {
	src := &fakeSource{delay: time.Millisecond}
	c := NewRandom(src, "hope", seeded())
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Advance(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.maxInFlight.Load(), "fetches never overlap")
	assert.Equal(t, n, c.Cursor())
	assert.Equal(t, n+2, c.Len())
	assert.Equal(t, StateReady, c.State())
}

func TestSequentialEndToEnd(t *testing.T) {
	src := &fakeSource{rangeItems: chapter(3)}
	c := NewSequential(src, model.RangeKey{Book: "John", Chapter: 3}, seeded())
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 0, c.Cursor())
	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, "v1", c.Window().Current.Body)

	for i := 1; i <= 3; i++ {
		moved, err := c.Advance(ctx)
		require.NoError(t, err)
		assert.True(t, moved)
		assert.Equal(t, i, c.Cursor())
	}

	assert.Equal(t, StateExhausted, c.State())
	w := c.Window()
	assert.True(t, w.Current.IsSentinel())
	assert.Nil(t, w.Next)

	moved, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, 3, c.Cursor())
	assert.Equal(t, StateExhausted, c.State())
	assert.Equal(t, 1, c.FetchCount(), "the whole range is one fetch")
}

func TestSequentialSharedDecor(t *testing.T) {
	src := &fakeSource{rangeItems: chapter(5)}
	c := NewSequential(src, model.RangeKey{Book: "John", Chapter: 3}, seeded())
	require.NoError(t, c.Start(context.Background()))

	decor := c.Window().Current.Decor
	assert.GreaterOrEqual(t, decor, 1)
	assert.LessOrEqual(t, decor, model.MaxDecor)
	for range 5 {
		_, err := c.Advance(context.Background())
		require.NoError(t, err)
		assert.Equal(t, decor, c.Window().Current.Decor)
	}
}

func TestSequentialEmptyRangeIsExhausted(t *testing.T) {
	src := &fakeSource{}
	c := NewSequential(src, model.RangeKey{Book: "John", Chapter: 99})
	require.NoError(t, c.Start(context.Background()))

	assert.Equal(t, StateExhausted, c.State())
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Window().Current.IsSentinel())
	assert.False(t, c.NeedsFetch())
}

func TestRetreatAtStartIsIdempotent(t *testing.T) {
	for _, mode := range []Mode{ModeRandom, ModeSequential} {
		t.Run(mode.String(), func(t *testing.T) {
			src := &fakeSource{rangeItems: chapter(3)}
			var c *Controller
			if mode == ModeRandom {
				c = NewRandom(src, "hope", seeded())
			} else {
				c = NewSequential(src, model.RangeKey{Book: "John", Chapter: 3}, seeded())
			}
			require.NoError(t, c.Start(context.Background()))
			fetches := c.FetchCount()

			for range 5 {
				assert.False(t, c.Retreat())
				assert.Equal(t, 0, c.Cursor())
			}
			assert.Equal(t, fetches, c.FetchCount())
		})
	}
}

func TestRetreatOnIdleController(t *testing.T) {
	c := NewRandom(&fakeSource{}, "hope")
	assert.False(t, c.Retreat())
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 0, c.FetchCount())
}

func TestRetreatLeavesExhausted(t *testing.T) {
	src := &fakeSource{rangeItems: chapter(1)}
	c := NewSequential(src, model.RangeKey{Book: "John", Chapter: 3})
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	_, err := c.Advance(ctx)
	require.NoError(t, err)
	require.Equal(t, StateExhausted, c.State())

	assert.True(t, c.Retreat())
	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, "v1", c.Window().Current.Body)
	assert.Equal(t, 1, c.FetchCount())
}

func TestCanRetreat(t *testing.T) {
	ctx := context.Background()

	seq := NewSequential(&fakeSource{rangeItems: chapter(2)}, model.RangeKey{Book: "John", Chapter: 3})
	require.NoError(t, seq.Start(ctx))
	assert.False(t, seq.CanRetreat())
	assert.Equal(t, DecisionCancel, Interpret(200, 800, seq.CanRetreat()))

	_, err := seq.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, seq.CanRetreat())
	assert.Equal(t, DecisionRetreat, Interpret(200, 800, seq.CanRetreat()))

	random := NewRandom(&fakeSource{}, "hope")
	require.NoError(t, random.Start(ctx))
	assert.True(t, random.CanRetreat(), "random feeds leave the guard to Retreat")
}

func TestStartFailureStaysIdle(t *testing.T) {
	src := &fakeSource{}
	src.setFail(errNotFound)
	c := NewRandom(src, "peace")
	ctx := context.Background()

	err := c.Start(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, StateIdle, c.State())
	assert.True(t, c.Window().Empty())
	assert.ErrorIs(t, c.Err(), store.ErrNotFound)

	// No retry policy: the next navigation tries again.
	src.setFail(nil)
	moved, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, StateReady, c.State())
	assert.Equal(t, 0, c.Cursor())
	assert.NoError(t, c.Err())
}

func TestAdvanceFailureKeepsVisibleState(t *testing.T) {
	src := &fakeSource{}
	c := NewRandom(src, "hope", seeded(), WithPrefetchAhead(0))
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	// Walk to the end of the buffer so the next item must be fetched.
	_, err := c.Advance(ctx)
	require.NoError(t, err)
	require.Nil(t, c.Window().Next)
	before := c.Window()

	unavailable := fmt.Errorf("random verse: %w: disk gone", store.ErrSourceUnavailable)
	src.setFail(unavailable)

	moved, err := c.Advance(ctx)
	assert.False(t, moved)
	assert.ErrorIs(t, err, store.ErrSourceUnavailable)
	assert.Equal(t, StateReady, c.State(), "never stuck in fetching")
	assert.Equal(t, before, c.Window())

	src.setFail(nil)
	moved, err = c.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 2, c.Cursor())
}

func TestAdvanceFailureWithBufferedNext(t *testing.T) {
	src := &fakeSource{}
	c := NewRandom(src, "hope", seeded())
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	require.True(t, c.NeedsFetch())

	src.setFail(errNotFound)
	moved, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 1, c.Cursor())
	assert.Equal(t, 2, c.Len())
	assert.ErrorIs(t, c.Err(), store.ErrNotFound)
	assert.Equal(t, StateReady, c.State())
}

func TestPrimingFailureIsNotFatal(t *testing.T) {
	src := &fakeSource{}
	c := NewRandom(src, "hope", WithFetchLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, c.Start(ctx))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.FetchCount(), "limiter held back the priming fetch")
	assert.Equal(t, StateReady, c.State())
	assert.Error(t, c.Err())
}

func TestSequentialFailure(t *testing.T) {
	src := &fakeSource{rangeItems: chapter(2)}
	src.setFail(fmt.Errorf("chapter: %w", store.ErrSourceUnavailable))
	c := NewSequential(src, model.RangeKey{Book: "John", Chapter: 3})

	err := c.Start(context.Background())
	assert.ErrorIs(t, err, store.ErrSourceUnavailable)
	assert.Equal(t, StateIdle, c.State())
}

func TestControllerIdentity(t *testing.T) {
	a := NewRandom(&fakeSource{}, "hope")
	b := NewRandom(&fakeSource{}, "hope")
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, ModeRandom, a.Mode())
	assert.Equal(t, ModeSequential, NewSequential(&fakeSource{}, model.RangeKey{}).Mode())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "fetching", StateFetching.String())
	assert.Equal(t, "exhausted", StateExhausted.String())
}
