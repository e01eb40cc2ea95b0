package ops

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/assessor/internal/api"
	"github.com/abhisek/assessor/internal/draft"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestOrchestrator(b api.Backend) (*Orchestrator, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	o := New(b,
		WithLogger(zap.New(core)),
		WithClock(func() time.Time { return fixedNow }),
	)
	return o, logs
}

func statusErr(path string) error {
	return &api.ErrStatus{Endpoint: path, Code: 500, Body: "boom"}
}

func TestBuild_Success(t *testing.T) {
	b := &api.MockBackend{
		BuildFunc: func(_ context.Context, req api.BuildRequest) (api.BuildResponse, error) {
			return api.BuildResponse{Success: true, ID: 42, Message: "Built " + req.AssessmentName}, nil
		},
	}
	o, _ := newTestOrchestrator(b)

	res := o.Build(context.Background(), draft.Assessment{Name: "Leiderschap"})

	assert.Equal(t, StatusSucceeded, res.Status)
	assert.Equal(t, int64(42), res.Value.ID)
	assert.Equal(t, "Built Leiderschap", res.Value.Message)
	assert.Equal(t, uint64(1), res.Seq)
	assert.Equal(t, fixedNow, res.SettledAt)
	assert.Equal(t, res, o.BuildResult())
	assert.False(t, o.InFlight(FamilyBuild))
}

func TestBuild_BackendReportedFailureIsSucceeded(t *testing.T) {
	b := &api.MockBackend{
		BuildFunc: func(context.Context, api.BuildRequest) (api.BuildResponse, error) {
			return api.BuildResponse{Success: false, Message: "Name is required", Warnings: []string{"w1"}}, nil
		},
	}
	o, _ := newTestOrchestrator(b)

	res := o.Build(context.Background(), draft.Assessment{})

	assert.Equal(t, StatusSucceeded, res.Status)
	assert.False(t, res.Value.Success)
	assert.Equal(t, "Name is required", res.Value.Message)
	assert.Equal(t, []string{"w1"}, res.Value.Warnings)
	assert.Empty(t, res.Reason)
}

func TestBuild_HTTP500SynthesizesFailure(t *testing.T) {
	b := &api.MockBackend{
		BuildFunc: func(context.Context, api.BuildRequest) (api.BuildResponse, error) {
			return api.BuildResponse{}, statusErr(api.PathBuild)
		},
	}
	o, logs := newTestOrchestrator(b)

	res := o.Build(context.Background(), draft.Assessment{Name: "x"})

	assert.Equal(t, StatusFailed, res.Status)
	assert.False(t, res.Value.Success)
	assert.Equal(t, "Failed to build assessment", res.Value.Message)
	assert.Empty(t, res.Value.Warnings)
	assert.NotEmpty(t, res.Reason)
	assert.False(t, o.InFlight(FamilyBuild))
	assert.False(t, o.Busy())

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "build", warns[0].ContextMap()["family"])
}

func TestBuild_ProjectsDraft(t *testing.T) {
	b := &api.MockBackend{
		BuildFunc: func(context.Context, api.BuildRequest) (api.BuildResponse, error) {
			return api.BuildResponse{Success: true}, nil
		},
	}
	o, _ := newTestOrchestrator(b)

	s := draft.NewStore(&draft.SequenceAllocator{})
	id := s.AddEntry()
	s.UpdateEntryField(id, draft.EntryName, "Teamwork")
	o.Build(context.Background(), s.Snapshot())

	require.Len(t, b.BuildRequests, 1)
	require.Len(t, b.BuildRequests[0].Competences, 1)
	assert.Equal(t, "Teamwork", b.BuildRequests[0].Competences[0].Name)
}

func TestPreview_FailureKeepsPreviousValue(t *testing.T) {
	fail := false
	b := &api.MockBackend{
		PreviewFunc: func(context.Context, api.BuildRequest) (api.PreviewResponse, error) {
			if fail {
				return api.PreviewResponse{}, statusErr(api.PathPreview)
			}
			return api.PreviewResponse{QuestionnaireXML: "<q/>", ReportXML: "<r/>"}, nil
		},
	}
	o, _ := newTestOrchestrator(b)

	first := o.Preview(context.Background(), draft.Assessment{})
	require.Equal(t, StatusSucceeded, first.Status)

	fail = true
	second := o.Preview(context.Background(), draft.Assessment{})
	assert.Equal(t, StatusFailed, second.Status)
	assert.Equal(t, "<q/>", second.Value.QuestionnaireXML)
	assert.Equal(t, uint64(2), o.PreviewResult().Seq)
}

func TestTranslate_Success(t *testing.T) {
	b := &api.MockBackend{
		TranslateFunc: func(_ context.Context, req api.TranslateRequest) (api.TranslateResponse, error) {
			assert.Equal(t, api.LangNL, req.SourceLanguage)
			assert.Equal(t, api.LangEN, req.TargetLanguage)
			return api.TranslateResponse{Translations: []string{"Teamwork"}}, nil
		},
	}
	o, _ := newTestOrchestrator(b)

	got := o.Translate(context.Background(), api.LangNL, api.LangEN, []string{"Samenwerken"})

	assert.Equal(t, []string{"Teamwork"}, got.Translations)
	assert.Empty(t, got.Error)
	assert.Equal(t, StatusSucceeded, o.TranslateResult().Status)
}

func TestTranslate_TransportFailurePassesThrough(t *testing.T) {
	o, logs := newTestOrchestrator(&api.MockBackend{})
	texts := []string{"Samenwerken", "Analyse"}

	got := o.Translate(context.Background(), api.LangNL, api.LangEN, texts)

	assert.Equal(t, texts, got.Translations)
	assert.Equal(t, "Translation failed", got.Error)
	assert.Equal(t, StatusFailed, o.TranslateResult().Status)

	got.Translations[0] = "mutated"
	assert.Equal(t, "Samenwerken", texts[0], "fallback must not alias the input")

	assert.Equal(t, 1, logs.FilterMessage("operation failed").Len())
}

func TestSearch_FailureYieldsEmpty(t *testing.T) {
	tests := []struct {
		name string
		run  func(o *Orchestrator) int
	}{
		{
			name: "categories",
			run: func(o *Orchestrator) int {
				got := o.SearchCategories(context.Background(), "lead")
				require.NotNil(t, got)
				return len(got)
			},
		},
		{
			name: "competences",
			run: func(o *Orchestrator) int {
				got := o.SearchCompetences(context.Background(), "team")
				require.NotNil(t, got)
				return len(got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, logs := newTestOrchestrator(&api.MockBackend{})
			assert.Equal(t, 0, tt.run(o))
			warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
			require.Len(t, warns, 1)
			assert.Contains(t, warns[0].ContextMap(), "query")
		})
	}
}

func TestSearch_Success(t *testing.T) {
	b := &api.MockBackend{
		SearchCategoriesFunc: func(_ context.Context, q string) ([]api.CategorySearchResult, error) {
			return []api.CategorySearchResult{{ID: 1, Name: "Leiderschap", NameEn: "Leadership"}}, nil
		},
		SearchCompetencesFunc: func(context.Context, string) ([]api.CompetenceSearchResult, error) {
			return nil, nil
		},
	}
	o, _ := newTestOrchestrator(b)

	cats := o.SearchCategories(context.Background(), "lei")
	require.Len(t, cats, 1)
	assert.Equal(t, "Leadership", cats[0].NameEn)
	assert.Equal(t, cats, o.CategoriesResult().Value)

	comps := o.SearchCompetences(context.Background(), "")
	assert.NotNil(t, comps)
	assert.Empty(t, comps)
	assert.Equal(t, StatusSucceeded, o.CompetencesResult().Status)
}

// gate blocks a fake backend call until released.
type gate struct {
	started chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait(ctx context.Context) error {
	close(g.started)
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestTranslateDoesNotTouchBuildInFlight(t *testing.T) {
	g := newGate()
	b := &api.MockBackend{
		BuildFunc: func(ctx context.Context, _ api.BuildRequest) (api.BuildResponse, error) {
			if err := g.wait(ctx); err != nil {
				return api.BuildResponse{}, err
			}
			return api.BuildResponse{Success: true, ID: 7}, nil
		},
		TranslateFunc: func(context.Context, api.TranslateRequest) (api.TranslateResponse, error) {
			return api.TranslateResponse{Translations: []string{"x"}}, nil
		},
	}
	o, _ := newTestOrchestrator(b)

	done := make(chan Result[api.BuildResponse], 1)
	go func() { done <- o.Build(context.Background(), draft.Assessment{}) }()
	<-g.started

	require.True(t, o.InFlight(FamilyBuild))
	require.True(t, o.Busy())

	o.Translate(context.Background(), api.LangNL, api.LangEN, []string{"y"})

	assert.True(t, o.InFlight(FamilyBuild), "translate settled the build slot")
	assert.False(t, o.InFlight(FamilyTranslate))
	assert.True(t, o.Busy())

	close(g.release)
	res := <-done
	assert.Equal(t, StatusSucceeded, res.Status)
	assert.False(t, o.InFlight(FamilyBuild))
	assert.False(t, o.Busy())
	assert.Equal(t, StatusSucceeded, o.TranslateResult().Status)
}

func TestBuildDoesNotTouchTranslateInFlight(t *testing.T) {
	g := newGate()
	b := &api.MockBackend{
		TranslateFunc: func(ctx context.Context, req api.TranslateRequest) (api.TranslateResponse, error) {
			if err := g.wait(ctx); err != nil {
				return api.TranslateResponse{}, err
			}
			return api.TranslateResponse{Translations: req.Texts}, nil
		},
	}
	o, _ := newTestOrchestrator(b)

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Translate(context.Background(), api.LangNL, api.LangEN, []string{"a"})
	}()
	<-g.started

	res := o.Build(context.Background(), draft.Assessment{})
	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, o.InFlight(FamilyTranslate))
	assert.False(t, o.Busy(), "translate alone must not gate submit")

	close(g.release)
	<-done
	assert.False(t, o.InFlight(FamilyTranslate))
}

func TestBuildAndPreviewAreIndependent(t *testing.T) {
	g := newGate()
	b := &api.MockBackend{
		PreviewFunc: func(ctx context.Context, _ api.BuildRequest) (api.PreviewResponse, error) {
			if err := g.wait(ctx); err != nil {
				return api.PreviewResponse{}, err
			}
			return api.PreviewResponse{ReportXML: "<r/>"}, nil
		},
		BuildFunc: func(context.Context, api.BuildRequest) (api.BuildResponse, error) {
			return api.BuildResponse{Success: true}, nil
		},
	}
	o, _ := newTestOrchestrator(b)

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Preview(context.Background(), draft.Assessment{})
	}()
	<-g.started

	assert.True(t, o.Busy())
	assert.False(t, o.InFlight(FamilyBuild))

	o.Build(context.Background(), draft.Assessment{})
	assert.True(t, o.InFlight(FamilyPreview), "build settled the preview slot")
	assert.True(t, o.Busy())

	close(g.release)
	<-done
	assert.False(t, o.Busy())
	assert.Equal(t, "<r/>", o.PreviewResult().Value.ReportXML)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	gates := map[string]*gate{"first": newGate(), "second": newGate()}
	b := &api.MockBackend{
		PreviewFunc: func(ctx context.Context, req api.BuildRequest) (api.PreviewResponse, error) {
			if err := gates[req.AssessmentName].wait(ctx); err != nil {
				return api.PreviewResponse{}, err
			}
			return api.PreviewResponse{QuestionnaireXML: req.AssessmentName}, nil
		},
	}
	o, logs := newTestOrchestrator(b)

	var wg sync.WaitGroup
	results := make([]Result[api.PreviewResponse], 2)
	for i, name := range []string{"first", "second"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = o.Preview(context.Background(), draft.Assessment{Name: name})
		}()
		<-gates[name].started
	}

	// The older request settles first but is no longer the latest.
	close(gates["first"].release)
	require.Eventually(t, func() bool {
		return logs.FilterMessage("discarded stale response").Len() == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, o.InFlight(FamilyPreview))
	assert.Empty(t, o.PreviewResult().Value.QuestionnaireXML)

	close(gates["second"].release)
	wg.Wait()

	got := o.PreviewResult()
	assert.Equal(t, StatusSucceeded, got.Status)
	assert.Equal(t, "second", got.Value.QuestionnaireXML)
	assert.Equal(t, uint64(2), got.Seq)
	assert.Equal(t, uint64(1), results[0].Seq)
	assert.False(t, o.InFlight(FamilyPreview))
}

func TestNewerResponseWinsWhenOlderArrivesLast(t *testing.T) {
	gates := map[string]*gate{"old": newGate(), "new": newGate()}
	b := &api.MockBackend{
		SearchCategoriesFunc: func(ctx context.Context, q string) ([]api.CategorySearchResult, error) {
			if err := gates[q].wait(ctx); err != nil {
				return nil, err
			}
			return []api.CategorySearchResult{{Name: q}}, nil
		},
	}
	o, _ := newTestOrchestrator(b)

	var wg sync.WaitGroup
	for _, q := range []string{"old", "new"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.SearchCategories(context.Background(), q)
		}()
		<-gates[q].started
	}

	close(gates["new"].release)
	require.Eventually(t, func() bool {
		return !o.InFlight(FamilySearchCategories)
	}, time.Second, 5*time.Millisecond)

	close(gates["old"].release)
	wg.Wait()

	got := o.CategoriesResult()
	require.Len(t, got.Value, 1)
	assert.Equal(t, "new", got.Value[0].Name)
	assert.Equal(t, uint64(2), got.Seq)
}

func TestCancelledContextSettlesAsFailed(t *testing.T) {
	g := newGate()
	b := &api.MockBackend{
		BuildFunc: func(ctx context.Context, _ api.BuildRequest) (api.BuildResponse, error) {
			if err := g.wait(ctx); err != nil {
				return api.BuildResponse{}, &api.ErrTransport{Endpoint: api.PathBuild, Err: err}
			}
			return api.BuildResponse{Success: true}, nil
		},
	}
	o, _ := newTestOrchestrator(b)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Result[api.BuildResponse], 1)
	go func() { done <- o.Build(ctx, draft.Assessment{}) }()
	<-g.started
	cancel()

	res := <-done
	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, errors.Is(ctx.Err(), context.Canceled))
	assert.Equal(t, api.BuildFailedMessage, res.Value.Message)
	assert.False(t, o.Busy())
}

func TestIdleSlots(t *testing.T) {
	o, _ := newTestOrchestrator(&api.MockBackend{})
	for _, f := range AllFamilies() {
		assert.False(t, o.InFlight(f), f.String())
	}
	assert.Equal(t, StatusIdle, o.BuildResult().Status)
	assert.Equal(t, StatusIdle, o.PreviewResult().Status)
	assert.False(t, o.BuildResult().Settled())
	assert.False(t, o.InFlight(Family(99)))
	assert.Equal(t, "unknown", Family(99).String())
}
