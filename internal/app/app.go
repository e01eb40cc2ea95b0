package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/assessor/internal/draft"
	"github.com/abhisek/assessor/internal/ops"
	"github.com/abhisek/assessor/internal/router"
	"github.com/abhisek/assessor/internal/screen"
	"github.com/abhisek/assessor/internal/screens/editor"
	"github.com/abhisek/assessor/internal/ui/layout"
)

// Options holds the dependencies injected into the TUI.
type Options struct {
	Store        *draft.Store
	Orchestrator *ops.Orchestrator
	Logger       *zap.Logger
	ExportPath   string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	editor *editor.EditorScreen
	orch   *ops.Orchestrator
	store  *draft.Store
	width  int
	height int
}

// NewAppModel creates an AppModel with the editor as the root screen.
func NewAppModel(opts Options) AppModel {
	ed := editor.New(editor.Options{
		Store:        opts.Store,
		Orchestrator: opts.Orchestrator,
		Logger:       opts.Logger,
		ExportPath:   opts.ExportPath,
	})
	return AppModel{
		router: router.New(ed),
		editor: ed,
		orch:   opts.Orchestrator,
		store:  opts.Store,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		case "q":
			if m.router.Depth() == 1 && !screen.CapturesText(m.router.Active()) {
				return m, tea.Quit
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// status summarises the draft and any running build or preview for the
// header.
func (m AppModel) status() (string, bool) {
	n := m.store.Len()
	text := fmt.Sprintf("%d competences", n)
	if n == 1 {
		text = "1 competence"
	}
	switch {
	case m.orch.InFlight(ops.FamilyBuild):
		return "⟳ building", true
	case m.orch.InFlight(ops.FamilyPreview):
		return "⟳ previewing", true
	case m.editor.Busy():
		return "⟳ working", true
	}
	return text, false
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the full frame for the current terminal size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	status, busy := m.status()
	header := layout.RenderHeader(title, status, busy, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	if m.router.Depth() > 1 {
		footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	} else if !screen.CapturesText(active) {
		footerHints = append(footerHints, layout.KeyHint{Key: "Q", Description: "Quit"})
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(NewAppModel(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
