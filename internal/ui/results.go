package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/versefeed/internal/store"
)

// RenderResults formats a search result for plain terminal output.
func RenderResults(res store.SearchResult, page, width int) string {
	var b strings.Builder

	heading := fmt.Sprintf("%q", res.Query)
	if res.IsTag {
		heading = fmt.Sprintf("%s, page %d", res.Query, page+1)
	}
	b.WriteString(ResultHeader.Render(heading))
	b.WriteString("\n\n")

	if len(res.Items) == 0 {
		b.WriteString(HelpStyle.Render("No verses found."))
		b.WriteString("\n")
		return b.String()
	}

	textWidth := max(width-4, 20)
	for _, item := range res.Items {
		b.WriteString(ResultLabel.Render(item.Label))
		b.WriteString("\n")
		b.WriteString(PageStyle(item.Decor).Padding(0, 1).Align(lipgloss.Left).Width(textWidth).Render(item.Body))
		b.WriteString("\n\n")
	}
	return b.String()
}
