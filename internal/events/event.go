// Package events records navigation and fetch events for a feed session.
//
// Events are written as JSONL lines by a Recorder that drains a buffered
// channel in the background. An optional Ring keeps the most recent events
// in memory for the TUI debug overlay.
package events

import (
	"encoding/json"
	"time"
)

// Kind identifies an event. Dot-delimited: "<subsystem>.<action>".
type Kind string

const (
	KindSessionStart Kind = "session.start"
	KindSessionEnd   Kind = "session.end"

	KindFeedStart    Kind = "feed.start"
	KindAdvance      Kind = "feed.advance"
	KindRetreat      Kind = "feed.retreat"
	KindPrefetch     Kind = "feed.prefetch"
	KindExhausted    Kind = "feed.exhausted"
	KindFetchError   Kind = "feed.fetch_error"
	KindGesture      Kind = "ui.gesture"
	KindSearch       Kind = "search.query"
	KindSearchResult Kind = "search.result"
)

// Event is one recorded occurrence. Only Kind is required.
type Event struct {
	Time       time.Time     `json:"t"`
	Kind       Kind          `json:"kind"`
	SessionID  string        `json:"session_id,omitempty"`
	Controller string        `json:"controller,omitempty"` // feed controller id
	Mode       string        `json:"mode,omitempty"`
	Cursor     int           `json:"cursor"`
	Len        int           `json:"len,omitempty"`
	Label      string        `json:"label,omitempty"`    // verse shown after the event
	Decision   string        `json:"decision,omitempty"` // gesture outcome
	Query      string        `json:"query,omitempty"`
	Count      int           `json:"count,omitempty"`
	Dur        time.Duration `json:"-"`
	DurMs      float64       `json:"dur_ms,omitempty"`
	Err        string        `json:"err,omitempty"`
}

// MarshalJSON converts Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}

// IsError reports whether the event records a failure.
func (e Event) IsError() bool {
	return e.Err != ""
}
