// Package preview shows the questionnaire and report XML returned by the
// backend for the current draft.
package preview

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/assessor/internal/api"
	"github.com/abhisek/assessor/internal/screen"
	"github.com/abhisek/assessor/internal/ui/layout"
	"github.com/abhisek/assessor/internal/ui/theme"
)

// Document selects which XML document is shown.
type Document int

const (
	Questionnaire Document = iota
	Report
)

func (d Document) String() string {
	if d == Report {
		return "Report"
	}
	return "Questionnaire"
}

// PreviewScreen implements screen.Screen for an XML preview.
type PreviewScreen struct {
	resp   api.PreviewResponse
	doc    Document
	lang   string
	offset int
	height int
}

var _ screen.Screen = (*PreviewScreen)(nil)
var _ screen.KeyHintProvider = (*PreviewScreen)(nil)

// New creates a preview of resp, starting on the Dutch questionnaire.
func New(resp api.PreviewResponse) *PreviewScreen {
	return &PreviewScreen{resp: resp, lang: api.LangNL}
}

func (p *PreviewScreen) Init() tea.Cmd {
	return nil
}

func (p *PreviewScreen) Title() string {
	if p.resp.HasLanguageVariants() {
		return fmt.Sprintf("Preview · %s (%s)", p.doc, strings.ToUpper(p.lang))
	}
	return "Preview · " + p.doc.String()
}

func (p *PreviewScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Tab", Description: "Questionnaire/Report"},
	}
	if p.resp.HasLanguageVariants() {
		hints = append(hints, layout.KeyHint{Key: "L", Description: "NL/EN"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

// Document returns the XML currently shown.
func (p *PreviewScreen) Document() string {
	if p.doc == Report {
		return p.resp.ReportFor(p.lang)
	}
	return p.resp.QuestionnaireFor(p.lang)
}

func (p *PreviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return p, nil
	}

	lines := p.lineCount()
	switch kmsg.String() {
	case "tab":
		p.doc = 1 - p.doc
		p.offset = 0
	case "l":
		if p.resp.HasLanguageVariants() {
			if p.lang == api.LangNL {
				p.lang = api.LangEN
			} else {
				p.lang = api.LangNL
			}
			p.offset = 0
		}
	case "up", "k":
		p.offset--
	case "down", "j":
		p.offset++
	case "pgup":
		p.offset -= p.page()
	case "pgdown", "space":
		p.offset += p.page()
	case "home", "g":
		p.offset = 0
	case "end", "G":
		p.offset = lines
	}
	p.clamp(lines)
	return p, nil
}

func (p *PreviewScreen) page() int {
	if p.height > 2 {
		return p.height - 2
	}
	return 1
}

func (p *PreviewScreen) lineCount() int {
	return len(strings.Split(p.Document(), "\n"))
}

func (p *PreviewScreen) clamp(lines int) {
	last := lines - p.page()
	if last < 0 {
		last = 0
	}
	if p.offset > last {
		p.offset = last
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

func (p *PreviewScreen) View(width, height int) string {
	var b strings.Builder

	for _, w := range p.resp.Warnings {
		b.WriteString(theme.Warning.Render("  ⚠ "+w) + "\n")
	}
	used := len(p.resp.Warnings)

	doc := p.Document()
	if strings.TrimSpace(doc) == "" {
		b.WriteString("\n" + theme.Hint.Render(fmt.Sprintf("  No %s XML in this preview.", strings.ToLower(p.doc.String()))))
		return b.String()
	}

	p.height = height - used
	lines := strings.Split(doc, "\n")
	p.clamp(len(lines))

	end := p.offset + p.page()
	if end > len(lines) {
		end = len(lines)
	}

	body := lipgloss.NewStyle().Foreground(theme.Text).MaxWidth(width - 2)
	for _, line := range lines[p.offset:end] {
		b.WriteString("  " + body.Render(line) + "\n")
	}
	b.WriteString(theme.Hint.Render(fmt.Sprintf("  lines %d-%d of %d", p.offset+1, end, len(lines))))
	return b.String()
}
