// Package ui provides the Bubble Tea TUI for versefeed.
package ui

import "time"

// Started is sent when the feed has loaded its first items.
type Started struct {
	Err error
	Dur time.Duration
}

// Advanced is sent when a forward navigation resolves.
type Advanced struct {
	Moved bool
	Err   error
	Dur   time.Duration
}

// Retreated is sent when a backward navigation resolves.
type Retreated struct {
	Moved bool
}

// Prefetched is sent when a background prefetch resolves.
type Prefetched struct {
	Err error
	Dur time.Duration
}

// frame drives one animation step. Frames from a superseded animation
// carry an old seq and are ignored.
type frame struct {
	seq int
	at  time.Time
}
