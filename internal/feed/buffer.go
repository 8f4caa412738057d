package feed

import (
	"errors"
	"fmt"

	"github.com/abelbrown/versefeed/internal/model"
)

// ErrOutOfRange means the buffer was asked to move outside [0, Len()).
// Controllers never do this; seeing it is a bug.
var ErrOutOfRange = errors.New("cursor out of range")

// Buffer is an append-only sequence of items with a cursor.
// Not safe for concurrent use; the Controller guards it.
type Buffer struct {
	items  []model.Item
	cursor int
}

// Initialize replaces the contents and resets the cursor to 0.
func (b *Buffer) Initialize(items []model.Item) {
	b.items = append([]model.Item(nil), items...)
	b.cursor = 0
}

// Append adds item to the end without moving the cursor.
func (b *Buffer) Append(item model.Item) {
	b.items = append(b.items, item)
}

// MoveTo sets the cursor. Callers check availability with NeedsFetch first.
func (b *Buffer) MoveTo(index int) error {
	if index < 0 || index >= len(b.items) {
		return fmt.Errorf("%w: index %d, length %d", ErrOutOfRange, index, len(b.items))
	}
	b.cursor = index
	return nil
}

// NeedsFetch reports whether at most aheadBy items remain after the
// cursor. An empty buffer always needs a fetch.
func (b *Buffer) NeedsFetch(aheadBy int) bool {
	return b.cursor >= len(b.items)-1-aheadBy
}

// Len returns the number of buffered items.
func (b *Buffer) Len() int { return len(b.items) }

// Cursor returns the current position.
func (b *Buffer) Cursor() int { return b.cursor }

// Current returns the item under the cursor.
func (b *Buffer) Current() (model.Item, bool) {
	if len(b.items) == 0 {
		return model.Item{}, false
	}
	return b.items[b.cursor], true
}

// Last returns the most recently appended item.
func (b *Buffer) Last() (model.Item, bool) {
	if len(b.items) == 0 {
		return model.Item{}, false
	}
	return b.items[len(b.items)-1], true
}

// Window is the render-visible slice of the buffer: the current item and at
// most one neighbour on each side. Missing neighbours are nil.
type Window struct {
	Previous *model.Item
	Current  *model.Item
	Next     *model.Item
	Cursor   int
	Len      int
}

// Window returns the items around the cursor. It never holds more than
// three items, however long the buffer grows.
func (b *Buffer) Window() Window {
	w := Window{Cursor: b.cursor, Len: len(b.items)}
	if len(b.items) == 0 {
		return w
	}

	cur := b.items[b.cursor]
	w.Current = &cur
	if b.cursor > 0 {
		prev := b.items[b.cursor-1]
		w.Previous = &prev
	}
	if b.cursor < len(b.items)-1 {
		next := b.items[b.cursor+1]
		w.Next = &next
	}
	return w
}

// Items returns the present items in order: previous, current, next.
func (w Window) Items() []model.Item {
	items := make([]model.Item, 0, 3)
	for _, it := range []*model.Item{w.Previous, w.Current, w.Next} {
		if it != nil {
			items = append(items, *it)
		}
	}
	return items
}

// Empty reports whether there is nothing to render.
func (w Window) Empty() bool {
	return w.Current == nil
}
