package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, muted for long editing sessions
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(26)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Ok = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Failed = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(Accent)

	Busy = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	NewMarker = lipgloss.NewStyle().
			Foreground(Secondary).
			Italic(true)
)
