// Package model defines the verse items browsed by versefeed, the locators
// used to address them and the fixed category and book catalogs.
//
// Items are plain values. They are created by the store at fetch time and
// never mutated afterwards; helpers such as WithDecor return copies.
package model

import "fmt"

// SentinelBody is the body of the synthetic item that ends a chapter.
const SentinelBody = "End of Chapter"

// MaxDecor is the number of presentation variants an item can select.
const MaxDecor = 10

// Item is one unit of displayable content.
type Item struct {
	Body  string // verse text
	Label string // human-readable locator, "" for the sentinel
	Decor int    // presentation variant in 1..MaxDecor
}

// Sentinel returns the end-of-chapter marker appended after the last verse.
func Sentinel() Item {
	return Item{Body: SentinelBody}
}

// IsSentinel reports whether the item is the end-of-chapter marker.
func (i Item) IsSentinel() bool {
	return i.Label == ""
}

// WithDecor returns a copy of the item using decor d.
func (i Item) WithDecor(d int) Item {
	i.Decor = d
	return i
}

// NextDecor returns the decor that follows prev in the round-robin.
// Adjacent items never share a value.
func NextDecor(prev int) int {
	return prev%MaxDecor + 1
}

// RangeKey selects one chapter for sequential reading.
type RangeKey struct {
	Book    string
	Chapter int
}

// String renders the key as "Book Chapter".
func (k RangeKey) String() string {
	return fmt.Sprintf("%s %d", k.Book, k.Chapter)
}
