// Package editor is the main screen: a field-by-field editor for the
// assessment draft with build, preview, translate and lookup actions.
package editor

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/assessor/internal/api"
	"github.com/abhisek/assessor/internal/draft"
	"github.com/abhisek/assessor/internal/ops"
	"github.com/abhisek/assessor/internal/router"
	"github.com/abhisek/assessor/internal/screen"
	"github.com/abhisek/assessor/internal/screens/preview"
	"github.com/abhisek/assessor/internal/ui/components"
	"github.com/abhisek/assessor/internal/ui/layout"
)

const maxSuggestions = 6

type statusKind int

const (
	statusInfo statusKind = iota
	statusOk
	statusError
)

// Options wires the editor to its collaborators.
type Options struct {
	Store        *draft.Store
	Orchestrator *ops.Orchestrator
	Logger       *zap.Logger

	// ExportPath is where ctrl+s writes the draft.
	ExportPath string
}

// EditorScreen implements screen.Screen for the draft editor.
type EditorScreen struct {
	store      *draft.Store
	orch       *ops.Orchestrator
	logger     *zap.Logger
	exportPath string

	cursor  int
	editing bool
	input   components.TextInput

	suggestions components.Menu
	categories  []api.CategorySearchResult
	competences []api.CompetenceSearchResult

	// True from the key press until the done message arrives.
	buildPending   bool
	previewPending bool

	// Latest translate token per target field.
	translateTokens map[row]uint64

	lastBuild *ops.Result[api.BuildResponse]
	status    string
	kind      statusKind
}

var _ screen.Screen = (*EditorScreen)(nil)
var _ screen.KeyHintProvider = (*EditorScreen)(nil)

// New creates an EditorScreen.
func New(opts Options) *EditorScreen {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	exportPath := opts.ExportPath
	if exportPath == "" {
		exportPath = "assessment.yaml"
	}
	return &EditorScreen{
		store:      opts.Store,
		orch:       opts.Orchestrator,
		logger:     logger,
		exportPath: exportPath,
	}
}

func (s *EditorScreen) Init() tea.Cmd {
	return nil
}

func (s *EditorScreen) Title() string {
	name := s.store.Field(draft.FieldName)
	if name == "" {
		name = "Untitled assessment"
	}
	return name
}

func (s *EditorScreen) KeyHints() []layout.KeyHint {
	if s.editing {
		hints := []layout.KeyHint{
			{Key: "Enter", Description: "Save"},
			{Key: "Esc", Description: "Cancel"},
		}
		if !s.suggestions.Empty() {
			hints = append(hints,
				layout.KeyHint{Key: "↑↓", Description: "Suggestion"},
				layout.KeyHint{Key: "Tab", Description: "Apply"},
			)
		}
		return hints
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Edit"},
		{Key: "^N/^X", Description: "Add/Remove"},
		{Key: "^B", Description: "Build"},
		{Key: "^P", Description: "Preview"},
		{Key: "^T", Description: "Translate"},
		{Key: "^S", Description: "Export"},
	}
}

// Busy reports whether a build or preview is pending or in flight.
func (s *EditorScreen) Busy() bool {
	return s.buildPending || s.previewPending || s.orch.Busy()
}

// Editing reports whether a field is being edited.
func (s *EditorScreen) Editing() bool {
	return s.editing
}

func (s *EditorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case buildDoneMsg:
		return s.handleBuildDone(msg)

	case previewDoneMsg:
		return s.handlePreviewDone(msg)

	case translateDoneMsg:
		return s.handleTranslateDone(msg)

	case categoriesMsg:
		return s.handleCategories(msg)

	case competencesMsg:
		return s.handleCompetences(msg)

	case exportDoneMsg:
		return s.handleExportDone(msg)

	case tea.KeyPressMsg:
		if s.editing {
			return s.handleEditKey(msg)
		}
		return s.handleKey(msg)
	}

	if s.editing {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *EditorScreen) rows() []row {
	return buildRows(s.store.Snapshot())
}

func (s *EditorScreen) current() (row, bool) {
	rows := s.rows()
	if s.cursor < 0 || s.cursor >= len(rows) {
		return row{}, false
	}
	return rows[s.cursor], true
}

func (s *EditorScreen) clampCursor() {
	n := len(s.rows())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *EditorScreen) setStatus(kind statusKind, format string, args ...any) {
	s.kind = kind
	s.status = fmt.Sprintf(format, args...)
}

func (s *EditorScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		s.cursor--
		s.clampCursor()
	case "down", "j":
		s.cursor++
		s.clampCursor()
	case "home", "g":
		s.cursor = 0
	case "end", "G":
		s.cursor = len(s.rows()) - 1
		s.clampCursor()
	case "enter":
		return s.startEdit()
	case "ctrl+n":
		s.addEntry()
	case "ctrl+x":
		s.removeEntry()
	case "ctrl+b":
		return s, s.triggerBuild()
	case "ctrl+p":
		return s, s.triggerPreview()
	case "ctrl+t":
		return s, s.triggerTranslate()
	case "ctrl+s":
		return s, s.triggerExport()
	}
	return s, nil
}

func (s *EditorScreen) startEdit() (screen.Screen, tea.Cmd) {
	r, ok := s.current()
	if !ok {
		return s, nil
	}
	snap := s.store.Snapshot()
	s.input = components.NewTextInput(r.label(), 60)
	s.input.SetValue(valueOf(&snap, r))
	s.editing = true
	s.clearSuggestions()
	return s, s.input.Init()
}

func (s *EditorScreen) handleEditKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		s.commitEdit(s.input.Value())
		return s, nil
	case "esc":
		s.editing = false
		s.clearSuggestions()
		return s, nil
	case "tab":
		if !s.suggestions.Empty() {
			s.applySuggestion()
		}
		return s, nil
	case "up", "down":
		if !s.suggestions.Empty() {
			s.suggestions, _ = s.suggestions.Update(msg)
			return s, nil
		}
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	after := s.input.Value()
	if after == before {
		return s, cmd
	}
	r, ok := s.current()
	if !ok || !r.searchable() {
		return s, cmd
	}
	return s, tea.Batch(s.searchCmd(r, after), cmd)
}

func (s *EditorScreen) commitEdit(value string) {
	r, ok := s.current()
	s.editing = false
	s.clearSuggestions()
	if !ok {
		return
	}
	if r.isEntry() {
		if !s.store.UpdateEntryField(r.entry, r.entryField, value) {
			s.setStatus(statusError, "Competence was removed while editing")
		}
		return
	}
	s.store.SetField(r.field, value)
}

func (s *EditorScreen) addEntry() {
	id := s.store.AddEntry()
	if i := indexOfRow(s.rows(), row{entry: id, entryField: draft.EntryName}); i >= 0 {
		s.cursor = i
	}
	s.setStatus(statusInfo, "Added competence %d", s.store.Len())
}

func (s *EditorScreen) removeEntry() {
	r, ok := s.current()
	if !ok || !r.isEntry() {
		s.setStatus(statusInfo, "Move to a competence to remove it")
		return
	}
	if s.store.RemoveEntry(r.entry) {
		s.setStatus(statusInfo, "Removed competence %d", r.position+1)
	}
	s.clampCursor()
}

func (s *EditorScreen) triggerBuild() tea.Cmd {
	if s.Busy() {
		s.setStatus(statusInfo, "Wait for the running build or preview to finish")
		return nil
	}
	s.buildPending = true
	s.setStatus(statusInfo, "Building assessment…")

	orch := s.orch
	snap := s.store.Snapshot()
	return func() tea.Msg {
		return buildDoneMsg{Result: orch.Build(context.Background(), snap)}
	}
}

func (s *EditorScreen) handleBuildDone(msg buildDoneMsg) (screen.Screen, tea.Cmd) {
	s.buildPending = false
	res := msg.Result
	if res.Seq != s.orch.BuildResult().Seq {
		return s, nil
	}
	s.lastBuild = &res

	if res.Value.Success {
		s.store.MarkSubmitted()
		s.setStatus(statusOk, "Assessment built (id %d)", res.Value.ID)
		s.logger.Info("assessment built", zap.Int64("id", res.Value.ID), zap.Int("warnings", len(res.Value.Warnings)))
		return s, nil
	}
	msgText := res.Value.Message
	if msgText == "" {
		msgText = api.BuildFailedMessage
	}
	s.setStatus(statusError, "%s", msgText)
	return s, nil
}

func (s *EditorScreen) triggerPreview() tea.Cmd {
	if s.Busy() {
		s.setStatus(statusInfo, "Wait for the running build or preview to finish")
		return nil
	}
	s.previewPending = true
	s.setStatus(statusInfo, "Generating preview…")

	orch := s.orch
	snap := s.store.Snapshot()
	return func() tea.Msg {
		return previewDoneMsg{Result: orch.Preview(context.Background(), snap)}
	}
}

func (s *EditorScreen) handlePreviewDone(msg previewDoneMsg) (screen.Screen, tea.Cmd) {
	s.previewPending = false
	res := msg.Result
	if res.Seq != s.orch.PreviewResult().Seq {
		return s, nil
	}
	if res.Status != ops.StatusSucceeded {
		s.setStatus(statusError, "Preview failed: %s", res.Reason)
		return s, nil
	}
	s.setStatus(statusOk, "Preview ready")
	next := preview.New(res.Value)
	return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (s *EditorScreen) triggerTranslate() tea.Cmd {
	r, ok := s.current()
	if !ok {
		return nil
	}
	target, ok := r.counterpart()
	if !ok {
		s.setStatus(statusInfo, "%s has no translation", r.label())
		return nil
	}
	snap := s.store.Snapshot()
	text := valueOf(&snap, r)
	if text == "" {
		s.setStatus(statusInfo, "Nothing to translate")
		return nil
	}
	s.setStatus(statusInfo, "Translating %s…", r.label())

	if s.translateTokens == nil {
		s.translateTokens = make(map[row]uint64)
	}
	s.translateTokens[target.key()]++
	token := s.translateTokens[target.key()]

	orch := s.orch
	src, tgt := r.lang(), target.lang()
	return func() tea.Msg {
		return translateDoneMsg{
			Source:   r,
			Target:   target,
			Text:     text,
			Token:    token,
			Response: orch.Translate(context.Background(), src, tgt, []string{text}),
		}
	}
}

func (s *EditorScreen) handleTranslateDone(msg translateDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Token != s.translateTokens[msg.Target.key()] {
		s.logger.Debug("discarded stale translation",
			zap.String("target", msg.Target.label()),
			zap.Uint64("token", msg.Token))
		return s, nil
	}
	if msg.Target.isEntry() {
		if _, ok := s.store.Entry(msg.Target.entry); !ok {
			s.setStatus(statusInfo, "Competence was removed before the translation arrived")
			return s, nil
		}
	}
	snap := s.store.Snapshot()
	if valueOf(&snap, msg.Source) != msg.Text {
		s.setStatus(statusInfo, "%s changed while translating, translation discarded", msg.Source.label())
		return s, nil
	}

	resp := msg.Response
	if resp.Error == api.TranslationFailedMarker {
		s.setStatus(statusError, "Translation failed, %s left unchanged", msg.Target.label())
		return s, nil
	}
	if len(resp.Translations) == 0 {
		s.setStatus(statusError, "Backend returned no translation")
		return s, nil
	}

	t := msg.Target
	if t.isEntry() {
		if !s.store.UpdateEntryField(t.entry, t.entryField, resp.Translations[0]) {
			s.setStatus(statusInfo, "Competence was removed before the translation arrived")
			return s, nil
		}
	} else {
		s.store.SetField(t.field, resp.Translations[0])
	}

	if resp.Error != "" {
		s.setStatus(statusError, "Translated %s with warning: %s", t.label(), resp.Error)
		return s, nil
	}
	s.setStatus(statusOk, "Translated %s", t.label())
	return s, nil
}

func (s *EditorScreen) searchCmd(r row, query string) tea.Cmd {
	orch := s.orch
	entry := r.entry
	if r.entryField == draft.EntryCategory {
		return func() tea.Msg {
			return categoriesMsg{Entry: entry, Query: query, Results: orch.SearchCategories(context.Background(), query)}
		}
	}
	return func() tea.Msg {
		return competencesMsg{Entry: entry, Query: query, Results: orch.SearchCompetences(context.Background(), query)}
	}
}

// suggestionTarget reports whether a search answer still matches what is
// being typed.
func (s *EditorScreen) suggestionTarget(entry draft.EntryID, f draft.EntryField, query string) bool {
	if !s.editing || s.input.Value() != query {
		return false
	}
	r, ok := s.current()
	return ok && r.entry == entry && r.entryField == f
}

func (s *EditorScreen) handleCategories(msg categoriesMsg) (screen.Screen, tea.Cmd) {
	if !s.suggestionTarget(msg.Entry, draft.EntryCategory, msg.Query) {
		return s, nil
	}
	s.categories = msg.Results
	s.competences = nil
	items := make([]components.MenuItem, len(msg.Results))
	for i, c := range msg.Results {
		items[i] = components.MenuItem{Label: c.Name, Detail: c.NameEn}
	}
	s.suggestions = components.NewMenu(items, maxSuggestions)
	return s, nil
}

func (s *EditorScreen) handleCompetences(msg competencesMsg) (screen.Screen, tea.Cmd) {
	if !s.suggestionTarget(msg.Entry, draft.EntryName, msg.Query) {
		return s, nil
	}
	s.competences = msg.Results
	s.categories = nil
	items := make([]components.MenuItem, len(msg.Results))
	for i, c := range msg.Results {
		items[i] = components.MenuItem{Label: c.Name, Detail: c.NameEn}
	}
	s.suggestions = components.NewMenu(items, maxSuggestions)
	return s, nil
}

func (s *EditorScreen) applySuggestion() {
	r, ok := s.current()
	i := s.suggestions.Current()
	if !ok || i < 0 {
		return
	}
	switch {
	case r.entryField == draft.EntryCategory && i < len(s.categories):
		s.store.ApplyCategory(r.entry, s.categories[i])
		s.setStatus(statusInfo, "Category set to %s", s.categories[i].Name)
	case r.entryField == draft.EntryName && i < len(s.competences):
		s.store.ApplyCompetence(r.entry, s.competences[i])
		s.setStatus(statusInfo, "Competence set to %s", s.competences[i].Name)
	default:
		return
	}
	s.editing = false
	s.clearSuggestions()
}

func (s *EditorScreen) clearSuggestions() {
	s.suggestions = components.Menu{}
	s.categories = nil
	s.competences = nil
}

func (s *EditorScreen) triggerExport() tea.Cmd {
	path := s.exportPath
	snap := s.store.Snapshot()
	return func() tea.Msg {
		return exportDoneMsg{Path: path, Err: draft.SaveFile(path, snap)}
	}
}

func (s *EditorScreen) handleExportDone(msg exportDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.logger.Warn("export draft", zap.String("path", msg.Path), zap.Error(msg.Err))
		s.setStatus(statusError, "Export failed: %v", msg.Err)
		return s, nil
	}
	s.setStatus(statusOk, "Draft saved to %s", msg.Path)
	return s, nil
}
