package editor

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/assessor/internal/api"
	"github.com/abhisek/assessor/internal/draft"
	"github.com/abhisek/assessor/internal/ops"
	"github.com/abhisek/assessor/internal/router"
	"github.com/abhisek/assessor/internal/screens/preview"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func typeText(s *EditorScreen, text string) []tea.Cmd {
	var cmds []tea.Cmd
	for _, r := range text {
		_, cmd := s.Update(keyPress(r))
		cmds = append(cmds, cmd)
	}
	return cmds
}

// run executes cmd and returns the first message of type T it produces,
// descending into batches in order.
func run[T tea.Msg](t *testing.T, cmd tea.Cmd) (T, bool) {
	t.Helper()
	var zero T
	if cmd == nil {
		return zero, false
	}
	msg := cmd()
	if got, ok := msg.(T); ok {
		return got, true
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if got, ok := run[T](t, c); ok {
				return got, true
			}
		}
	}
	return zero, false
}

func testEditor(b *api.MockBackend) (*EditorScreen, *draft.Store) {
	store := draft.NewStore(&draft.SequenceAllocator{Prefix: "c"})
	s := New(Options{
		Store:        store,
		Orchestrator: ops.New(b),
	})
	return s, store
}

// moveTo positions the cursor on the given row.
func moveTo(t *testing.T, s *EditorScreen, target row) {
	t.Helper()
	i := indexOfRow(s.rows(), target)
	if i < 0 {
		t.Fatalf("row %+v not found", target)
	}
	s.cursor = i
}

func TestEditAssessmentField(t *testing.T) {
	s, store := testEditor(&api.MockBackend{})

	s.Update(specialKey(tea.KeyEnter))
	if !s.Editing() {
		t.Fatal("expected edit mode")
	}
	typeText(s, "Leiderschap")
	s.Update(specialKey(tea.KeyEnter))

	if s.Editing() {
		t.Error("expected edit mode to end")
	}
	if got := store.Field(draft.FieldName); got != "Leiderschap" {
		t.Errorf("name = %q", got)
	}
	if s.Title() != "Leiderschap" {
		t.Errorf("title = %q", s.Title())
	}
}

func TestEditCancel(t *testing.T) {
	s, store := testEditor(&api.MockBackend{})
	store.SetField(draft.FieldName, "keep")

	s.Update(specialKey(tea.KeyEnter))
	typeText(s, "xyz")
	s.Update(specialKey(tea.KeyEscape))

	if got := store.Field(draft.FieldName); got != "keep" {
		t.Errorf("name = %q, want unchanged", got)
	}
}

func TestAddAndRemoveEntry(t *testing.T) {
	s, store := testEditor(&api.MockBackend{})

	s.Update(ctrl('n'))
	s.Update(ctrl('n'))
	if store.Len() != 2 {
		t.Fatalf("len = %d, want 2", store.Len())
	}
	r, _ := s.current()
	if r.entry != "c-2" || r.entryField != draft.EntryName {
		t.Errorf("cursor on %+v, want name of c-2", r)
	}

	s.Update(ctrl('x'))
	entries := store.Entries()
	if len(entries) != 1 || entries[0].ID != "c-1" {
		t.Errorf("entries = %+v", entries)
	}

	// Removing on an assessment row is a no-op.
	s.cursor = 0
	s.Update(ctrl('x'))
	if store.Len() != 1 {
		t.Errorf("len = %d, want 1", store.Len())
	}
}

func TestBuildSuccessMarksSubmitted(t *testing.T) {
	b := &api.MockBackend{
		BuildFunc: func(context.Context, api.BuildRequest) (api.BuildResponse, error) {
			return api.BuildResponse{Success: true, ID: 9, Warnings: []string{"category created"}}, nil
		},
	}
	s, store := testEditor(b)
	store.AddEntry()

	_, cmd := s.Update(ctrl('b'))
	if !s.Busy() {
		t.Error("expected busy right after trigger")
	}
	msg, ok := run[buildDoneMsg](t, cmd)
	if !ok {
		t.Fatal("build produced no message")
	}
	s.Update(msg)

	if s.Busy() {
		t.Error("still busy after build settled")
	}
	for _, e := range store.Entries() {
		if e.IsNew {
			t.Error("entries should be marked submitted")
		}
	}
	view := s.View(120, 40)
	if !strings.Contains(view, "Built assessment 9") || !strings.Contains(view, "category created") {
		t.Errorf("view missing build outcome:\n%s", view)
	}
}

func TestBuildTransportFailure(t *testing.T) {
	s, store := testEditor(&api.MockBackend{})
	store.AddEntry()

	_, cmd := s.Update(ctrl('b'))
	msg, _ := run[buildDoneMsg](t, cmd)
	s.Update(msg)

	if msg.Result.Status != ops.StatusFailed {
		t.Errorf("status = %v", msg.Result.Status)
	}
	if !store.Entries()[0].IsNew {
		t.Error("failed build must not clear new markers")
	}
	if !strings.Contains(s.View(120, 40), api.BuildFailedMessage) {
		t.Error("view should show the synthesized failure message")
	}
}

func TestBuildBlockedWhilePreviewPending(t *testing.T) {
	b := &api.MockBackend{
		BuildFunc: func(context.Context, api.BuildRequest) (api.BuildResponse, error) {
			return api.BuildResponse{Success: true}, nil
		},
	}
	s, _ := testEditor(b)

	_, previewCmd := s.Update(ctrl('p'))
	if previewCmd == nil {
		t.Fatal("expected preview command")
	}
	_, buildCmd := s.Update(ctrl('b'))
	if buildCmd != nil {
		t.Error("build must be disabled while a preview is pending")
	}
	if b.CallCount("build") != 0 {
		t.Error("backend build was called")
	}
}

func TestPreviewPushesScreen(t *testing.T) {
	b := &api.MockBackend{
		PreviewFunc: func(context.Context, api.BuildRequest) (api.PreviewResponse, error) {
			return api.PreviewResponse{QuestionnaireXML: "<questionnaire/>"}, nil
		},
	}
	s, _ := testEditor(b)

	_, cmd := s.Update(ctrl('p'))
	done, ok := run[previewDoneMsg](t, cmd)
	if !ok {
		t.Fatal("preview produced no message")
	}
	_, next := s.Update(done)
	push, ok := run[router.PushScreenMsg](t, next)
	if !ok {
		t.Fatal("expected a push of the preview screen")
	}
	p, ok := push.Screen.(*preview.PreviewScreen)
	if !ok {
		t.Fatalf("pushed %T", push.Screen)
	}
	if p.Document() != "<questionnaire/>" {
		t.Errorf("document = %q", p.Document())
	}
	if s.Busy() {
		t.Error("busy after preview settled")
	}
}

func TestPreviewFailureStaysOnEditor(t *testing.T) {
	s, _ := testEditor(&api.MockBackend{})

	_, cmd := s.Update(ctrl('p'))
	done, _ := run[previewDoneMsg](t, cmd)
	_, next := s.Update(done)

	if _, ok := run[router.PushScreenMsg](t, next); ok {
		t.Error("failed preview must not push a screen")
	}
	if !strings.Contains(s.View(120, 40), "Preview failed") {
		t.Error("expected failure status")
	}
}

func TestTranslateFillsCounterpart(t *testing.T) {
	b := &api.MockBackend{
		TranslateFunc: func(_ context.Context, req api.TranslateRequest) (api.TranslateResponse, error) {
			if req.SourceLanguage != "nl" || req.TargetLanguage != "en" {
				t.Errorf("direction %s -> %s", req.SourceLanguage, req.TargetLanguage)
			}
			return api.TranslateResponse{Translations: []string{"Collaboration"}}, nil
		},
	}
	s, store := testEditor(b)
	id := store.AddEntry()
	store.UpdateEntryField(id, draft.EntryName, "Samenwerken")
	moveTo(t, s, row{entry: id, entryField: draft.EntryName})

	_, cmd := s.Update(ctrl('t'))
	msg, ok := run[translateDoneMsg](t, cmd)
	if !ok {
		t.Fatal("translate produced no message")
	}
	s.Update(msg)

	e, _ := store.Entry(id)
	if e.NameEn != "Collaboration" {
		t.Errorf("nameEn = %q", e.NameEn)
	}
	if e.Name != "Samenwerken" {
		t.Errorf("source changed: %q", e.Name)
	}
}

func TestTranslateFailureLeavesCounterpart(t *testing.T) {
	s, store := testEditor(&api.MockBackend{})
	store.SetField(draft.FieldDescriptionEn, "existing")
	store.SetField(draft.FieldDescription, "Beschrijving")
	moveTo(t, s, row{field: draft.FieldDescription})

	_, cmd := s.Update(ctrl('t'))
	msg, _ := run[translateDoneMsg](t, cmd)
	s.Update(msg)

	if got := store.Field(draft.FieldDescriptionEn); got != "existing" {
		t.Errorf("counterpart = %q, want unchanged", got)
	}
	if !strings.Contains(s.View(120, 40), "Translation failed") {
		t.Error("expected failure status")
	}
}

func echoTranslator() *api.MockBackend {
	return &api.MockBackend{
		TranslateFunc: func(_ context.Context, req api.TranslateRequest) (api.TranslateResponse, error) {
			return api.TranslateResponse{Translations: []string{"EN(" + req.Texts[0] + ")"}}, nil
		},
	}
}

func TestTranslateOutOfOrderKeepsLatest(t *testing.T) {
	s, store := testEditor(echoTranslator())
	moveTo(t, s, row{field: draft.FieldName})

	store.SetField(draft.FieldName, "oud")
	_, first := s.Update(ctrl('t'))
	store.SetField(draft.FieldName, "nieuw")
	_, second := s.Update(ctrl('t'))

	older, ok := run[translateDoneMsg](t, first)
	if !ok {
		t.Fatal("first translate produced no message")
	}
	newer, ok := run[translateDoneMsg](t, second)
	if !ok {
		t.Fatal("second translate produced no message")
	}

	s.Update(newer)
	s.Update(older)

	if got := store.Field(draft.FieldNameEn); got != "EN(nieuw)" {
		t.Errorf("nameEn = %q, want EN(nieuw)", got)
	}
}

func TestTranslateDiscardedWhenSourceEdited(t *testing.T) {
	s, store := testEditor(echoTranslator())
	id := store.AddEntry()
	store.UpdateEntryField(id, draft.EntryDescription, "Eerste versie")
	store.UpdateEntryField(id, draft.EntryDescriptionEn, "kept")
	moveTo(t, s, row{entry: id, entryField: draft.EntryDescription})

	_, cmd := s.Update(ctrl('t'))
	msg, _ := run[translateDoneMsg](t, cmd)
	store.UpdateEntryField(id, draft.EntryDescription, "Tweede versie")
	s.Update(msg)

	e, _ := store.Entry(id)
	if e.DescriptionEn != "kept" {
		t.Errorf("descriptionEn = %q, want unchanged", e.DescriptionEn)
	}
	if !strings.Contains(s.View(120, 40), "discarded") {
		t.Error("expected discard status")
	}
}

func TestTranslateCategoryHasNoCounterpart(t *testing.T) {
	s, store := testEditor(&api.MockBackend{})
	id := store.AddEntry()
	store.UpdateEntryField(id, draft.EntryCategory, "Soft Skills")
	moveTo(t, s, row{entry: id, entryField: draft.EntryCategory})

	if _, cmd := s.Update(ctrl('t')); cmd != nil {
		t.Error("category should not trigger a translation")
	}
}

func TestSearchAsYouTypeAppliesCategory(t *testing.T) {
	b := &api.MockBackend{
		SearchCategoriesFunc: func(_ context.Context, q string) ([]api.CategorySearchResult, error) {
			return []api.CategorySearchResult{
				{ID: 1, Name: "Leiderschap", NameEn: "Leadership"},
				{ID: 2, Name: "Leren", NameEn: "Learning"},
			}, nil
		},
	}
	s, store := testEditor(b)
	id := store.AddEntry()
	moveTo(t, s, row{entry: id, entryField: draft.EntryCategory})

	s.Update(specialKey(tea.KeyEnter))
	cmds := typeText(s, "Le")

	// Only the answer for the current text is shown.
	stale, _ := run[categoriesMsg](t, cmds[0])
	s.Update(stale)
	if !s.suggestions.Empty() {
		t.Fatal("stale suggestions were shown")
	}
	fresh, ok := run[categoriesMsg](t, cmds[1])
	if !ok || fresh.Query != "Le" {
		t.Fatalf("fresh = %+v", fresh)
	}
	s.Update(fresh)
	if s.suggestions.Empty() {
		t.Fatal("expected suggestions")
	}

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyTab))

	e, _ := store.Entry(id)
	if e.Category != "Leren" {
		t.Errorf("category = %q, want Leren", e.Category)
	}
	if s.Editing() {
		t.Error("applying a suggestion should end editing")
	}
}

func TestSearchAsYouTypeAppliesCompetence(t *testing.T) {
	b := &api.MockBackend{
		SearchCompetencesFunc: func(_ context.Context, q string) ([]api.CompetenceSearchResult, error) {
			return []api.CompetenceSearchResult{{ID: 3, Name: "Samenwerken", NameEn: "Collaboration"}}, nil
		},
	}
	s, store := testEditor(b)
	id := store.AddEntry()
	moveTo(t, s, row{entry: id, entryField: draft.EntryName})

	s.Update(specialKey(tea.KeyEnter))
	cmds := typeText(s, "S")
	msg, ok := run[competencesMsg](t, cmds[0])
	if !ok {
		t.Fatal("no competence search issued")
	}
	s.Update(msg)
	s.Update(specialKey(tea.KeyTab))

	e, _ := store.Entry(id)
	if e.Name != "Samenwerken" || e.NameEn != "Collaboration" {
		t.Errorf("entry = %+v", e)
	}
}

func TestSearchFailureShowsNoSuggestions(t *testing.T) {
	s, store := testEditor(&api.MockBackend{})
	id := store.AddEntry()
	moveTo(t, s, row{entry: id, entryField: draft.EntryCategory})

	s.Update(specialKey(tea.KeyEnter))
	cmds := typeText(s, "x")
	msg, _ := run[categoriesMsg](t, cmds[0])
	s.Update(msg)

	if !s.suggestions.Empty() {
		t.Error("expected no suggestions after a failed search")
	}
	s.Update(specialKey(tea.KeyEnter))
	e, _ := store.Entry(id)
	if e.Category != "x" {
		t.Errorf("typed value not kept: %q", e.Category)
	}
}

func TestNonSearchableFieldIssuesNoSearch(t *testing.T) {
	b := &api.MockBackend{}
	s, store := testEditor(b)
	id := store.AddEntry()
	moveTo(t, s, row{entry: id, entryField: draft.EntryDescription})

	s.Update(specialKey(tea.KeyEnter))
	typeText(s, "abc")
	s.Update(specialKey(tea.KeyEnter))

	e, _ := store.Entry(id)
	if e.Description != "abc" {
		t.Errorf("description = %q", e.Description)
	}
	if b.CallCount("search-categories")+b.CallCount("search-competences") != 0 {
		t.Error("backend search was called")
	}
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.yaml")
	store := draft.NewStore(nil)
	store.SetField(draft.FieldName, "Export me")
	s := New(Options{Store: store, Orchestrator: ops.New(&api.MockBackend{}), ExportPath: path})

	_, cmd := s.Update(ctrl('s'))
	msg, ok := run[exportDoneMsg](t, cmd)
	if !ok || msg.Err != nil {
		t.Fatalf("export: %+v", msg)
	}
	s.Update(msg)

	back, err := draft.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Name != "Export me" {
		t.Errorf("name = %q", back.Name)
	}
}

func TestViewRendersEntries(t *testing.T) {
	s, store := testEditor(&api.MockBackend{})
	id := store.AddEntry()
	store.UpdateEntryField(id, draft.EntryName, "Teamwork")

	view := s.View(120, 60)
	for _, want := range []string{"Assessment", "Competence 1", "new", "Teamwork", "Name (EN)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
