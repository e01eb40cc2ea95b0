package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/assessor/internal/ui/layout"
)

// Screen is one page on the router stack. Only the top screen receives key
// input; every other message reaches all stacked screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is implemented by screens that contribute footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// TextEntry is implemented by screens with a text input. While Editing
// reports true, single-letter global shortcuts are delivered to the screen
// as typed text.
type TextEntry interface {
	Editing() bool
}

// CapturesText reports whether s is currently taking free text input.
func CapturesText(s Screen) bool {
	te, ok := s.(TextEntry)
	return ok && te.Editing()
}
