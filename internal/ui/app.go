package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/versefeed/internal/events"
	"github.com/abelbrown/versefeed/internal/feed"
	"github.com/abelbrown/versefeed/internal/logging"
)

// frameInterval is the animation tick, roughly 60 frames per second.
const frameInterval = 16 * time.Millisecond

// Navigator is what the App drives. *feed.Controller implements it.
type Navigator interface {
	Start(ctx context.Context) error
	Advance(ctx context.Context) (bool, error)
	Retreat() bool
	Prefetch(ctx context.Context) error
	Window() feed.Window
	State() feed.State
	NeedsFetch() bool
	CanRetreat() bool
	Mode() feed.Mode
	ID() string
	FetchCount() int
}

// App is the root Bubble Tea model for one feed session.
// IMPORTANT: App never touches the buffer directly. Every navigation runs
// in a tea.Cmd and the window is re-read when its result message arrives.
type App struct {
	ctx   context.Context
	nav   Navigator
	title string
	rec   *events.Recorder
	ring  *events.Ring

	help    help.Model
	spinner spinner.Model

	drag      feed.Drag
	gesture   feed.Gesture
	animating bool
	animStart time.Time
	seq       int
	offset    float64

	busy      bool
	err       error
	width     int
	height    int
	ready     bool
	showDebug bool

	now func() time.Time
}

// NewApp creates an App for nav. title is shown in the status bar; rec and
// ring may be nil.
func NewApp(ctx context.Context, nav Navigator, title string, rec *events.Recorder, ring *events.Ring) App {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return App{
		ctx:     ctx,
		nav:     nav,
		title:   title,
		rec:     rec,
		ring:    ring,
		help:    help.New(),
		spinner: s,
		busy:    true,
		now:     time.Now,
	}
}

// Init starts the feed and the spinner.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.startCmd())
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.MouseMsg:
		cmd := a.handleMouse(msg)
		return a, cmd

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.ready = true
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case frame:
		cmd := a.handleFrame(msg)
		return a, cmd

	case Started:
		a.busy = false
		a.err = msg.Err
		a.record(events.KindFeedStart, msg.Err, msg.Dur)
		if msg.Err == nil {
			return a, a.prefetchIfNeeded()
		}
		return a, nil

	case Advanced:
		a.busy = false
		a.offset = 0
		a.err = msg.Err
		a.record(events.KindAdvance, msg.Err, msg.Dur)
		if a.nav.State() == feed.StateExhausted && msg.Moved {
			a.record(events.KindExhausted, nil, 0)
		}
		if msg.Moved {
			return a, a.prefetchIfNeeded()
		}
		return a, nil

	case Retreated:
		a.busy = false
		a.offset = 0
		a.record(events.KindRetreat, nil, 0)
		return a, nil

	case Prefetched:
		// Background failures are not shown; the next advance retries.
		a.record(events.KindPrefetch, msg.Err, msg.Dur)
		return a, nil
	}

	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil

	case key.Matches(msg, keys.Debug):
		a.showDebug = !a.showDebug
		return a, nil

	case key.Matches(msg, keys.Next):
		a.err = nil
		cmd := a.navigate(feed.DecisionAdvance, 0)
		return a, cmd

	case key.Matches(msg, keys.Prev):
		a.err = nil
		cmd := a.navigate(feed.DecisionRetreat, 0)
		return a, cmd
	}
	return a, nil
}

// handleMouse turns a left-button drag into a swipe. The offset follows
// the pointer until release; the wheel navigates like the keyboard.
func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	y := float64(msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		return a.navigate(feed.DecisionAdvance, 0)

	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		return a.navigate(feed.DecisionRetreat, 0)

	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if a.busy || a.animating {
			return nil
		}
		a.err = nil
		a.drag.Begin(y)
		return nil

	case msg.Action == tea.MouseActionMotion && a.drag.Active():
		a.offset = a.drag.Move(y)
		return nil

	case msg.Action == tea.MouseActionRelease && a.drag.Active():
		g := a.drag.Release(y, a.extent(), a.nav.CanRetreat())
		return a.animate(g)
	}
	return nil
}

// navigate starts a keyboard or wheel navigation from offset from.
func (a *App) navigate(d feed.Decision, from float64) tea.Cmd {
	if a.busy || a.animating || a.drag.Active() {
		return nil
	}
	if d == feed.DecisionRetreat && !a.nav.CanRetreat() {
		return nil
	}
	if d == feed.DecisionAdvance && a.nav.State() == feed.StateExhausted {
		return nil
	}
	return a.animate(feed.Settle(d, from, a.extent()))
}

// animate plays g; the navigation itself is issued when the animation ends.
func (a *App) animate(g feed.Gesture) tea.Cmd {
	a.gesture = g
	a.animating = true
	a.animStart = a.now()
	a.offset = g.Animation.From
	a.seq++

	if a.rec != nil {
		a.rec.Record(events.Event{
			Kind:       events.KindGesture,
			Controller: a.nav.ID(),
			Decision:   g.Decision.String(),
		})
	}
	logging.Debug("gesture", "decision", g.Decision.String(), "from", g.Animation.From)
	return a.tick()
}

func (a *App) tick() tea.Cmd {
	seq := a.seq
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frame{seq: seq, at: t}
	})
}

func (a *App) handleFrame(f frame) tea.Cmd {
	if !a.animating || f.seq != a.seq {
		return nil
	}

	anim := a.gesture.Animation
	elapsed := f.at.Sub(a.animStart)
	a.offset = anim.OffsetAt(elapsed)
	if !anim.Done(elapsed) {
		return a.tick()
	}

	a.animating = false
	switch a.gesture.Decision {
	case feed.DecisionAdvance:
		a.busy = true
		return a.advanceCmd()
	case feed.DecisionRetreat:
		a.busy = true
		return a.retreatCmd()
	default:
		a.offset = 0
		return nil
	}
}

func (a App) startCmd() tea.Cmd {
	ctx, nav := a.ctx, a.nav
	return func() tea.Msg {
		start := time.Now()
		err := nav.Start(ctx)
		return Started{Err: err, Dur: time.Since(start)}
	}
}

func (a App) advanceCmd() tea.Cmd {
	ctx, nav := a.ctx, a.nav
	return func() tea.Msg {
		start := time.Now()
		moved, err := nav.Advance(ctx)
		return Advanced{Moved: moved, Err: err, Dur: time.Since(start)}
	}
}

func (a App) retreatCmd() tea.Cmd {
	nav := a.nav
	return func() tea.Msg {
		return Retreated{Moved: nav.Retreat()}
	}
}

func (a App) prefetchIfNeeded() tea.Cmd {
	if !a.nav.NeedsFetch() {
		return nil
	}
	ctx, nav := a.ctx, a.nav
	return func() tea.Msg {
		start := time.Now()
		err := nav.Prefetch(ctx)
		return Prefetched{Err: err, Dur: time.Since(start)}
	}
}

func (a App) record(kind events.Kind, err error, dur time.Duration) {
	if a.rec == nil {
		return
	}
	w := a.nav.Window()
	e := events.Event{
		Kind:       kind,
		Controller: a.nav.ID(),
		Mode:       a.nav.Mode().String(),
		Cursor:     w.Cursor,
		Len:        w.Len,
		Dur:        dur,
	}
	if w.Current != nil {
		e.Label = w.Current.Label
	}
	if err != nil {
		e.Err = err.Error()
	}
	a.rec.Record(e)
}

// extent is the navigable height: the screen minus the status bar.
func (a App) extent() float64 {
	return float64(a.contentHeight())
}

func (a App) contentHeight() int {
	h := a.height - 1
	if a.err != nil {
		h--
	}
	if a.help.ShowAll {
		h -= strings.Count(a.help.View(keys), "\n") + 1
	}
	return max(h, 1)
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.showDebug {
		return debugOverlay(a.ring, a.nav, a.width, a.height-1) + "\n" + debugStatusBar(a.width)
	}

	height := a.contentHeight()
	w := a.nav.Window()

	var content string
	switch {
	case !w.Empty():
		content = renderPages(w, a.width, height, a.offset)
	case a.busy:
		content = HelpStyle.Render(fmt.Sprintf("%s Loading verses...", a.spinner.View()))
	default:
		content = HelpStyle.Render("No verses to show. Press j to try again.")
	}

	parts := []string{content}
	if a.err != nil {
		parts = append(parts, ErrorStyle.Width(a.width).Render("Error: "+a.err.Error()))
	}
	if a.help.ShowAll {
		parts = append(parts, a.help.View(keys))
	}
	parts = append(parts, a.statusBar())
	return strings.Join(parts, "\n")
}

func (a App) statusBar() string {
	w := a.nav.Window()

	var pos string
	switch {
	case w.Empty():
		pos = "-"
	case a.nav.Mode() == feed.ModeSequential && a.nav.State() == feed.StateExhausted:
		pos = "end"
	case a.nav.Mode() == feed.ModeSequential:
		pos = fmt.Sprintf("%d/%d", w.Cursor+1, w.Len-1)
	default:
		pos = fmt.Sprintf("#%d", w.Cursor+1)
	}

	left := StatusBarKey.Render(a.title) + StatusBarText.Render("  "+pos)
	if a.busy {
		left += " " + a.spinner.View()
	}
	if !a.help.ShowAll {
		left += "  " + a.help.ShortHelpView(keys.ShortHelp())
	}
	return StatusBar.Width(a.width).Render(left)
}

// Offset returns the current visual offset (for testing).
func (a App) Offset() float64 {
	return a.offset
}

// Busy reports whether a navigation is in flight (for testing).
func (a App) Busy() bool {
	return a.busy
}
