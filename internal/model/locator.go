package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedLocator is returned by ParseLocator for input that does not
// look like "<Book> <Chapter>:<Verse>".
var ErrMalformedLocator = errors.New("malformed locator")

// Locator addresses a single verse.
type Locator struct {
	Book    string
	Chapter int
	Verse   int
}

// ParseLocator parses "<Book> <Chapter>:<Verse>". The book is every
// whitespace-separated token except the last, so "1 John 4:8" and
// "Song of Solomon 2:4" both parse.
func ParseLocator(s string) (Locator, error) {
	parts := strings.Fields(s)
	if len(parts) < 2 {
		return Locator{}, fmt.Errorf("%w: %q", ErrMalformedLocator, s)
	}

	book := strings.Join(parts[:len(parts)-1], " ")
	cv := strings.Split(parts[len(parts)-1], ":")
	if len(cv) != 2 {
		return Locator{}, fmt.Errorf("%w: %q", ErrMalformedLocator, s)
	}

	chapter, err := strconv.Atoi(cv[0])
	if err != nil || chapter <= 0 {
		return Locator{}, fmt.Errorf("%w: bad chapter in %q", ErrMalformedLocator, s)
	}
	verse, err := strconv.Atoi(cv[1])
	if err != nil || verse <= 0 {
		return Locator{}, fmt.Errorf("%w: bad verse in %q", ErrMalformedLocator, s)
	}

	return Locator{Book: book, Chapter: chapter, Verse: verse}, nil
}

// String renders the locator in the same format ParseLocator accepts.
func (l Locator) String() string {
	return Label(l.Book, l.Chapter, l.Verse)
}

// Range returns the chapter the locator points into.
func (l Locator) Range() RangeKey {
	return RangeKey{Book: l.Book, Chapter: l.Chapter}
}

// Label formats a verse label, e.g. "John 3:16".
func Label(book string, chapter, verse int) string {
	return fmt.Sprintf("%s %d:%d", book, chapter, verse)
}
