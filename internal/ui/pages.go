package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/versefeed/internal/feed"
	"github.com/abelbrown/versefeed/internal/model"
)

// renderPages draws the window as a vertical strip of full-height pages
// shifted by offset rows: previous above, current in place, next below.
// A negative offset pulls the next page into view.
func renderPages(w feed.Window, width, height int, offset float64) string {
	if height < 1 {
		return ""
	}
	shift := int(math.Round(offset))

	// Only pages that can be on screen are rendered.
	var prev, cur, next []string
	if shift > 0 {
		prev = renderPage(w.Previous, width, height)
	}
	if shift > -height && shift < height {
		cur = renderPage(w.Current, width, height)
	}
	if shift < 0 {
		next = renderPage(w.Next, width, height)
	}

	blank := strings.Repeat(" ", max(width, 0))
	lines := make([]string, height)
	for r := range lines {
		y := r - shift
		var src []string
		switch {
		case y < 0:
			src, y = prev, y+height
		case y >= height:
			src, y = next, y-height
		default:
			src = cur
		}
		if src == nil || y < 0 || y >= len(src) {
			lines[r] = blank
			continue
		}
		lines[r] = src[y]
	}
	return strings.Join(lines, "\n")
}

// renderPage renders one item as exactly height lines. A nil item renders
// as blank space.
func renderPage(item *model.Item, width, height int) []string {
	if item == nil {
		return nil
	}

	base := PageStyle(item.Decor)
	var content string
	if item.IsSentinel() {
		content = SentinelText.Inherit(base).Render(item.Body)
	} else {
		textWidth := width - 8
		if textWidth < 10 {
			textWidth = max(width, 1)
		}
		body := VerseBody.Inherit(base).Padding(0).Width(textWidth).Render(item.Body)
		label := VerseLabel.Inherit(base).Padding(0).Render(item.Label)
		content = lipgloss.JoinVertical(lipgloss.Center, body, label)
	}

	page := base.Width(width).Height(height).Render(content)
	lines := strings.Split(page, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", max(width, 0)))
	}
	return lines
}
