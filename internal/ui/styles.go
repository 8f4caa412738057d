package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorLight     = lipgloss.Color("255")
	colorDark      = lipgloss.Color("235")
)

// decorBackgrounds maps decor 1..10 to a page background.
var decorBackgrounds = [...]lipgloss.Color{
	"24",  // 1 deep blue
	"29",  // 2 teal
	"186", // 3 sand
	"96",  // 4 plum
	"130", // 5 rust
	"60",  // 6 slate
	"22",  // 7 forest
	"88",  // 8 wine
	"152", // 9 mist
	"238", // 10 charcoal
}

// darkTextDecors are the light backgrounds that need dark text.
var darkTextDecors = map[int]bool{3: true, 9: true}

// PageStyle returns the full-page style for a decor value. Out-of-range
// decors fall back to decor 1.
func PageStyle(decor int) lipgloss.Style {
	if decor < 1 || decor > len(decorBackgrounds) {
		decor = 1
	}
	fg := colorLight
	if darkTextDecors[decor] {
		fg = colorDark
	}
	return lipgloss.NewStyle().
		Background(decorBackgrounds[decor-1]).
		Foreground(fg).
		Align(lipgloss.Center, lipgloss.Center).
		Padding(0, 4)
}

// VerseBody style for the verse text.
var VerseBody = lipgloss.NewStyle().Bold(true)

// VerseLabel style for the reference under the verse.
var VerseLabel = lipgloss.NewStyle().Italic(true).MarginTop(1)

// SentinelText style for the end-of-chapter page.
var SentinelText = lipgloss.NewStyle().Bold(true).Underline(true)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(colorLight).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// DebugPanel style for the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// DebugHeaderStyle for section headers inside the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// ResultLabel style for search result references.
var ResultLabel = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// ResultHeader style for search result headings.
var ResultHeader = lipgloss.NewStyle().
	Foreground(colorLight).
	Background(colorPrimary).
	Padding(0, 1)
