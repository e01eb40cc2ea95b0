package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/assessor/internal/ui/theme"
)

// MenuItem represents a single item in a pick list.
type MenuItem struct {
	Label  string
	Detail string
}

// Menu is a vertical pick list navigated with up/down.
type Menu struct {
	Items    []MenuItem
	Selected int
	MaxRows  int
}

// NewMenu creates a new menu with the given items.
func NewMenu(items []MenuItem, maxRows int) Menu {
	return Menu{
		Items:   items,
		MaxRows: maxRows,
	}
}

// Empty reports whether the menu has no items.
func (m Menu) Empty() bool {
	return len(m.Items) == 0
}

// Current returns the highlighted item index, or -1 when empty.
func (m Menu) Current() int {
	if m.Empty() {
		return -1
	}
	return m.Selected
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || m.Empty() {
		return m, nil
	}

	switch kmsg.String() {
	case "up":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down":
		if m.Selected < len(m.Items)-1 {
			m.Selected++
		}
	}

	return m, nil
}

// View renders the menu.
func (m Menu) View() string {
	if m.Empty() {
		return ""
	}
	rows := len(m.Items)
	if m.MaxRows > 0 && rows > m.MaxRows {
		rows = m.MaxRows
	}
	start := 0
	if m.Selected >= rows {
		start = m.Selected - rows + 1
	}

	var b strings.Builder
	for i := start; i < start+rows; i++ {
		item := m.Items[i]
		line := item.Label
		if item.Detail != "" {
			line += lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + item.Detail)
		}
		if i == m.Selected {
			b.WriteString(theme.Selected.Render("  ▸ ") + line + "\n")
		} else {
			b.WriteString("    " + line + "\n")
		}
	}
	if len(m.Items) > rows {
		b.WriteString(theme.Hint.Render("    …") + "\n")
	}
	return b.String()
}
