package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#7C6F64")
	colorGreen  = lipgloss.Color("#98971A")
	colorYellow = lipgloss.Color("#D79921")
	colorAqua   = lipgloss.Color("#689D6A")
	colorRed    = lipgloss.Color("#CC241D")
	colorSubtle = lipgloss.Color("#665C54")
	colorFG     = lipgloss.Color("#EBDBB2")
	colorDim    = lipgloss.Color("#504945")

	styleTitle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	styleSubtitle = lipgloss.NewStyle().
			Foreground(colorSubtle).
			Italic(true)

	styleDivider = lipgloss.NewStyle().
			Foreground(colorDim)

	styleSelectedItem = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	styleNormalItem = lipgloss.NewStyle().
			Foreground(colorFG)

	styleDimItem = lipgloss.NewStyle().
			Foreground(colorSubtle)

	// new-note and setting value labels
	styleTag = lipgloss.NewStyle().
			Foreground(colorAqua)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleHint = lipgloss.NewStyle().
			Foreground(colorSubtle)

	styleInputBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent).
				Padding(0, 1)

	styleInputActive = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorYellow).
				Padding(0, 1)

	// markdown preview
	stylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAqua).
				Padding(0, 1)
)
