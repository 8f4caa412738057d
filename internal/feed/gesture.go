package feed

import "time"

// Decision is what a finished drag asks the controller to do.
type Decision int

const (
	DecisionCancel Decision = iota
	DecisionAdvance
	DecisionRetreat
)

func (d Decision) String() string {
	switch d {
	case DecisionAdvance:
		return "advance"
	case DecisionRetreat:
		return "retreat"
	default:
		return "cancel"
	}
}

// Gesture thresholds and timings.
const (
	// SwipeThreshold is the fraction of the axis a drag must cover.
	SwipeThreshold = 0.1

	// SettleDuration is how long an accepted swipe takes to slide out.
	SettleDuration = 250 * time.Millisecond

	// SnapBackDuration is how long a cancelled drag takes to return.
	SnapBackDuration = 200 * time.Millisecond
)

// Interpret turns the release distance of a drag into a decision. Negative
// distances move towards the next item. Retreat becomes Cancel when the
// caller reports there is nothing to go back to.
func Interpret(finalDistance, axisExtent float64, canRetreat bool) Decision {
	threshold := axisExtent * SwipeThreshold
	switch {
	case finalDistance < -threshold:
		return DecisionAdvance
	case finalDistance > threshold:
		if !canRetreat {
			return DecisionCancel
		}
		return DecisionRetreat
	default:
		return DecisionCancel
	}
}

// Animation moves the visual offset from From to To over Duration.
// ResetAfter means the offset jumps back to 0 once the model has moved.
type Animation struct {
	From       float64
	To         float64
	Duration   time.Duration
	ResetAfter bool
}

// OffsetAt samples the animation with an ease-out curve.
func (a Animation) OffsetAt(elapsed time.Duration) float64 {
	if a.Duration <= 0 || elapsed >= a.Duration {
		return a.To
	}
	if elapsed <= 0 {
		return a.From
	}
	t := float64(elapsed) / float64(a.Duration)
	eased := 1 - (1-t)*(1-t)
	return a.From + (a.To-a.From)*eased
}

// Done reports whether the animation has reached its target.
func (a Animation) Done(elapsed time.Duration) bool {
	return elapsed >= a.Duration
}

// Gesture is an interpreted drag: the decision plus how to animate it.
type Gesture struct {
	Decision  Decision
	Animation Animation
}

// Settle builds the gesture for decision starting from offset from.
// Keyboard navigation uses it with from = 0.
func Settle(decision Decision, from, axisExtent float64) Gesture {
	g := Gesture{Decision: decision}
	switch decision {
	case DecisionAdvance:
		g.Animation = Animation{From: from, To: -axisExtent, Duration: SettleDuration, ResetAfter: true}
	case DecisionRetreat:
		g.Animation = Animation{From: from, To: axisExtent, Duration: SettleDuration, ResetAfter: true}
	default:
		g.Animation = Animation{From: from, To: 0, Duration: SnapBackDuration}
	}
	return g
}

// Drag tracks one in-progress drag along a single axis. While the drag is
// active the offset follows the input 1:1.
type Drag struct {
	start  float64
	offset float64
	active bool
}

// Begin starts a drag at pos.
func (d *Drag) Begin(pos float64) {
	d.start = pos
	d.offset = 0
	d.active = true
}

// Move updates the drag and returns the new offset. Moves without an
// active drag are ignored.
func (d *Drag) Move(pos float64) float64 {
	if !d.active {
		return 0
	}
	d.offset = pos - d.start
	return d.offset
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool { return d.active }

// Offset returns the current raw offset.
func (d *Drag) Offset() float64 { return d.offset }

// Release ends the drag at pos and interprets it.
func (d *Drag) Release(pos, axisExtent float64, canRetreat bool) Gesture {
	final := d.Move(pos)
	d.active = false
	d.offset = 0
	return Settle(Interpret(final, axisExtent, canRetreat), final, axisExtent)
}

// Abort drops an in-progress drag; the caller snaps the offset back.
func (d *Drag) Abort() Gesture {
	from := d.offset
	d.active = false
	d.offset = 0
	return Settle(DecisionCancel, from, 0)
}
