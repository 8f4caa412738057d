package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/versefeed/internal/events"
)

// debugPanelChrome is the number of lines taken by DebugPanel's border
// and vertical padding.
const debugPanelChrome = 4

// debugOverlay renders controller state and recent session events.
func debugOverlay(ring *events.Ring, nav Navigator, width, height int) string {
	w := nav.Window()

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Controller"))
	lines = append(lines, fmt.Sprintf("  ID:         %s", nav.ID()))
	lines = append(lines, fmt.Sprintf("  Mode:       %s", nav.Mode()))
	lines = append(lines, fmt.Sprintf("  State:      %s", nav.State()))
	lines = append(lines, fmt.Sprintf("  Cursor:     %d / %d buffered", w.Cursor, w.Len))
	lines = append(lines, fmt.Sprintf("  Window:     %d items", len(w.Items())))
	lines = append(lines, fmt.Sprintf("  Fetches:    %d", nav.FetchCount()))
	lines = append(lines, "")

	if ring != nil {
		stats := ring.Stats()
		lines = append(lines, DebugHeaderStyle.Render("Session"))
		lines = append(lines, fmt.Sprintf("  Navigation: %d advance, %d retreat, %d gestures",
			stats[events.KindAdvance], stats[events.KindRetreat], stats[events.KindGesture]))
		lines = append(lines, fmt.Sprintf("  Prefetch:   %d complete, %d errors",
			stats[events.KindPrefetch], stats[events.KindFetchError]))
		lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
		lines = append(lines, "")

		lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
		for _, e := range ring.Last(15) {
			line := fmt.Sprintf("  %6s  %-18s", formatAge(time.Since(e.Time)), string(e.Kind))
			if e.Decision != "" {
				line += "  " + e.Decision
			}
			if e.Label != "" {
				line += "  " + e.Label
			}
			if e.Err != "" {
				line += "  ERR:" + truncateRunes(e.Err, 30)
			}
			lines = append(lines, line)
		}
	}

	maxHeight := max(height-debugPanelChrome, 1)
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := min(76, width-4)
	panelWidth = max(panelWidth, 20)

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration compactly. Negative durations clamp to 0ms.
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	hint := StatusBarKey.Render("D") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + hint)
}
