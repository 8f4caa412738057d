package feed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/versefeed/internal/model"
)

func items(n int) []model.Item {
	out := make([]model.Item, n)
	for i := range out {
		out[i] = model.Item{Body: fmt.Sprintf("body %d", i), Label: fmt.Sprintf("Book 1:%d", i+1)}
	}
	return out
}

func TestBufferInitializeResetsCursor(t *testing.T) {
	var b Buffer
	b.Initialize(items(3))
	require.NoError(t, b.MoveTo(2))

	seed := items(2)
	b.Initialize(seed)
	assert.Equal(t, 0, b.Cursor())
	assert.Equal(t, 2, b.Len())

	// The buffer keeps its own copy.
	seed[0].Body = "changed"
	cur, ok := b.Current()
	require.True(t, ok)
	assert.Equal(t, "body 0", cur.Body)
}

func TestBufferAppendKeepsCursor(t *testing.T) {
	var b Buffer
	b.Initialize(items(1))
	b.Append(model.Item{Body: "x", Label: "Book 2:1"})

	assert.Equal(t, 0, b.Cursor())
	assert.Equal(t, 2, b.Len())
	last, ok := b.Last()
	require.True(t, ok)
	assert.Equal(t, "x", last.Body)
}

func TestBufferMoveToOutOfRange(t *testing.T) {
	var b Buffer
	assert.ErrorIs(t, b.MoveTo(0), ErrOutOfRange)

	b.Initialize(items(3))
	assert.ErrorIs(t, b.MoveTo(-1), ErrOutOfRange)
	assert.ErrorIs(t, b.MoveTo(3), ErrOutOfRange)
	assert.Equal(t, 0, b.Cursor())

	require.NoError(t, b.MoveTo(2))
	assert.Equal(t, 2, b.Cursor())
}

func TestBufferNeedsFetch(t *testing.T) {
	var b Buffer
	assert.True(t, b.NeedsFetch(1), "empty buffer")

	b.Initialize(items(4))
	tests := []struct {
		cursor  int
		aheadBy int
		want    bool
	}{
		{0, 1, false},
		{1, 1, false},
		{2, 1, true},
		{3, 1, true},
		{2, 0, false},
		{3, 0, true},
		{0, 3, true},
	}
	for _, tt := range tests {
		require.NoError(t, b.MoveTo(tt.cursor))
		assert.Equal(t, tt.want, b.NeedsFetch(tt.aheadBy), "cursor %d ahead %d", tt.cursor, tt.aheadBy)
	}
}

func TestBufferWindowBounds(t *testing.T) {
	var b Buffer
	w := b.Window()
	assert.True(t, w.Empty())
	assert.Empty(t, w.Items())

	for n := 1; n <= 6; n++ {
		b.Initialize(items(n))
		for c := 0; c < n; c++ {
			require.NoError(t, b.MoveTo(c))
			w := b.Window()

			got := w.Items()
			assert.LessOrEqual(t, len(got), 3)
			require.NotNil(t, w.Current)
			assert.Equal(t, fmt.Sprintf("body %d", c), w.Current.Body)
			assert.Equal(t, c > 0, w.Previous != nil, "len %d cursor %d", n, c)
			assert.Equal(t, c < n-1, w.Next != nil, "len %d cursor %d", n, c)
			assert.Equal(t, c, w.Cursor)
			assert.Equal(t, n, w.Len)
		}
	}
}

func TestWindowItemsOrder(t *testing.T) {
	var b Buffer
	b.Initialize(items(5))
	require.NoError(t, b.MoveTo(2))

	got := b.Window().Items()
	require.Len(t, got, 3)
	assert.Equal(t, "body 1", got[0].Body)
	assert.Equal(t, "body 2", got[1].Body)
	assert.Equal(t, "body 3", got[2].Body)
}
