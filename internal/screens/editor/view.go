package editor

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/assessor/internal/draft"
	"github.com/abhisek/assessor/internal/ops"
	"github.com/abhisek/assessor/internal/ui/layout"
	"github.com/abhisek/assessor/internal/ui/theme"
)

func (s *EditorScreen) View(width, height int) string {
	footer := s.renderFooter(width)
	footerHeight := lipgloss.Height(footer)
	if footer == "" {
		footerHeight = 0
	}

	lines, cursorLine := s.renderRows(width)
	start, end := layout.Window(len(lines), cursorLine, height-footerHeight)

	var b strings.Builder
	for _, l := range lines[start:end] {
		b.WriteString(l + "\n")
	}
	if footer != "" {
		pad := height - footerHeight - (end - start)
		if pad > 0 {
			b.WriteString(strings.Repeat("\n", pad))
		}
		b.WriteString(footer)
	}
	return b.String()
}

// renderRows returns one line per row plus section headers and, while
// editing, the suggestion list. The second result is the line index of the
// cursor row.
func (s *EditorScreen) renderRows(width int) ([]string, int) {
	snap := s.store.Snapshot()
	rows := buildRows(snap)

	var lines []string
	cursorLine := 0
	lines = append(lines, theme.Title.Render("  Assessment"))

	prevEntry := draft.EntryID("")
	for i, r := range rows {
		if r.isEntry() && r.entry != prevEntry {
			prevEntry = r.entry
			header := fmt.Sprintf("  Competence %d", r.position+1)
			if snap.Entries[r.position].IsNew {
				header += theme.NewMarker.Render("  new")
			}
			lines = append(lines, "", theme.Title.Render(header))
		}

		selected := i == s.cursor
		if selected {
			cursorLine = len(lines)
		}
		lines = append(lines, s.renderRow(&snap, r, selected, width))

		if selected && s.editing && !s.suggestions.Empty() {
			for _, l := range strings.Split(strings.TrimRight(s.suggestions.View(), "\n"), "\n") {
				lines = append(lines, "      "+l)
			}
		}
	}

	if len(snap.Entries) == 0 {
		lines = append(lines, "", theme.Hint.Render("  No competences yet. Press ctrl+n to add one."))
	}
	return lines, cursorLine
}

func (s *EditorScreen) renderRow(snap *draft.Assessment, r row, selected bool, width int) string {
	marker := "    "
	labelStyle := theme.Label
	if selected {
		marker = theme.Selected.Render("  ▸ ")
		labelStyle = labelStyle.Foreground(theme.Primary).Bold(true)
	}
	label := labelStyle.Render(r.label())

	if selected && s.editing {
		return marker + label + s.input.View()
	}

	value := valueOf(snap, r)
	if value == "" {
		return marker + label + theme.Hint.Render("—")
	}
	maxValue := width - lipgloss.Width(marker) - lipgloss.Width(label) - 2
	if maxValue < 8 {
		maxValue = 8
	}
	return marker + label + theme.Body.MaxWidth(maxValue).Render(firstLine(value))
}

func (s *EditorScreen) renderFooter(width int) string {
	var parts []string

	if b := s.lastBuild; b != nil {
		var head string
		switch {
		case b.Value.Success:
			head = theme.Ok.Render(fmt.Sprintf("✓ Built assessment %d", b.Value.ID))
			if b.Value.Message != "" {
				head += "  " + theme.Body.Render(b.Value.Message)
			}
		case b.Status == ops.StatusFailed:
			head = theme.Failed.Render("✗ " + b.Value.Message)
		default:
			head = theme.Failed.Render("✗ Build rejected")
			if b.Value.Message != "" {
				head += "  " + theme.Body.Render(b.Value.Message)
			}
		}
		parts = append(parts, head)
		for _, w := range b.Value.Warnings {
			parts = append(parts, theme.Warning.Render("⚠ "+w))
		}
	}

	if s.status != "" {
		style := theme.Subtitle
		switch s.kind {
		case statusOk:
			style = theme.Ok
		case statusError:
			style = theme.Failed
		}
		parts = append(parts, style.Render(s.status))
	}

	if len(parts) == 0 {
		return ""
	}
	return theme.Card.Width(width - 2).Render(strings.Join(parts, "\n"))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
