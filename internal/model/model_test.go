package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		in   string
		want Locator
	}{
		{"John 3:16", Locator{Book: "John", Chapter: 3, Verse: 16}},
		{"1 John 4:8", Locator{Book: "1 John", Chapter: 4, Verse: 8}},
		{"Song of Solomon 2:4", Locator{Book: "Song of Solomon", Chapter: 2, Verse: 4}},
		{"  Psalms   23:1 ", Locator{Book: "Psalms", Chapter: 23, Verse: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocator(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocator_Malformed(t *testing.T) {
	for _, in := range []string{
		"",
		"John",
		"John 3",
		"3:16",
		"John 3:",
		"John :16",
		"John three:16",
		"John 3:16:2",
		"John 0:1",
		"John 3:-1",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseLocator(in)
			assert.ErrorIs(t, err, ErrMalformedLocator)
		})
	}
}

func TestLocatorString(t *testing.T) {
	loc := Locator{Book: "Romans", Chapter: 8, Verse: 28}
	assert.Equal(t, "Romans 8:28", loc.String())
	assert.Equal(t, RangeKey{Book: "Romans", Chapter: 8}, loc.Range())
	assert.Equal(t, "Romans 8", loc.Range().String())
}

func TestNextDecor(t *testing.T) {
	assert.Equal(t, 2, NextDecor(1))
	assert.Equal(t, 10, NextDecor(9))
	assert.Equal(t, 1, NextDecor(10))

	d := 7
	for range 25 {
		next := NextDecor(d)
		assert.NotEqual(t, d, next)
		assert.GreaterOrEqual(t, next, 1)
		assert.LessOrEqual(t, next, MaxDecor)
		d = next
	}
}

func TestSentinel(t *testing.T) {
	s := Sentinel()
	assert.True(t, s.IsSentinel())
	assert.Equal(t, SentinelBody, s.Body)
	assert.False(t, Item{Body: "x", Label: "John 1:1"}.IsSentinel())
}

func TestWithDecorCopies(t *testing.T) {
	orig := Item{Body: "b", Label: "l", Decor: 3}
	changed := orig.WithDecor(5)
	assert.Equal(t, 3, orig.Decor)
	assert.Equal(t, 5, changed.Decor)
}

func TestIsCategory(t *testing.T) {
	assert.True(t, IsCategory("hope"))
	assert.True(t, IsCategory("Encouragement"))
	assert.True(t, IsCategory(" PEACE "))
	assert.False(t, IsCategory("joy"))
	assert.False(t, IsCategory(""))
	assert.Contains(t, Categories(), DefaultCategory)
}

func TestBooks(t *testing.T) {
	assert.Len(t, Books(OldTestament), 39)
	assert.Len(t, Books(NewTestament), 27)
	assert.Len(t, AllBooks(), 66)
	assert.Equal(t, "Genesis", AllBooks()[0])
	assert.Equal(t, "Revelation", AllBooks()[65])

	name, ok := LookupBook("song of solomon")
	assert.True(t, ok)
	assert.Equal(t, "Song of Solomon", name)

	_, ok = LookupBook("Hezekiah")
	assert.False(t, ok)
}
