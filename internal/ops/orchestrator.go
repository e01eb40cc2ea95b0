// Package ops runs backend operations on behalf of the editor and keeps the
// latest outcome of each operation family.
package ops

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/assessor/internal/api"
	"github.com/abhisek/assessor/internal/draft"
)

// Orchestrator triggers backend operations and records one result per
// family. Triggers block only the calling goroutine and never return an
// error: failures are folded into the family's fallback value.
type Orchestrator struct {
	backend api.Backend
	logger  *zap.Logger
	now     func() time.Time

	build       slot[api.BuildResponse]
	preview     slot[api.PreviewResponse]
	translate   slot[api.TranslateResponse]
	categories  slot[[]api.CategorySearchResult]
	competences slot[[]api.CompetenceSearchResult]
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for failures and discarded responses.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the time source for SettledAt.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an Orchestrator over backend.
func New(backend api.Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend: backend,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Build submits the projected draft for building. A backend-reported failure
// (success:false) still settles as Succeeded with the body verbatim. A
// transport, status or decode failure settles as Failed with a synthesized
// success:false response.
func (o *Orchestrator) Build(ctx context.Context, a draft.Assessment) (res Result[api.BuildResponse]) {
	seq := o.build.begin()
	res = Result[api.BuildResponse]{
		Status: StatusFailed,
		Value:  api.FailedBuildResponse(),
		Reason: "build did not complete",
	}
	defer func() { settle(o, &o.build, FamilyBuild, seq, &res) }()

	resp, err := o.backend.Build(ctx, draft.Project(a))
	if err != nil {
		o.warn(FamilyBuild, seq, err)
		res.Reason = err.Error()
		return res
	}
	res = Result[api.BuildResponse]{Status: StatusSucceeded, Value: resp}
	return res
}

// Preview requests questionnaire and report XML for the projected draft. On
// failure the previous preview value is kept and the slot is marked Failed.
func (o *Orchestrator) Preview(ctx context.Context, a draft.Assessment) (res Result[api.PreviewResponse]) {
	seq := o.preview.begin()
	res = Result[api.PreviewResponse]{
		Status: StatusFailed,
		Value:  o.preview.get().Value,
		Reason: "preview did not complete",
	}
	defer func() { settle(o, &o.preview, FamilyPreview, seq, &res) }()

	resp, err := o.backend.Preview(ctx, draft.Project(a))
	if err != nil {
		o.warn(FamilyPreview, seq, err)
		res.Reason = err.Error()
		return res
	}
	res = Result[api.PreviewResponse]{Status: StatusSucceeded, Value: resp}
	return res
}

// Translate translates texts from src to tgt. On any failure the texts are
// echoed back untranslated with api.TranslationFailedMarker.
func (o *Orchestrator) Translate(ctx context.Context, src, tgt string, texts []string) api.TranslateResponse {
	seq := o.translate.begin()
	res := Result[api.TranslateResponse]{
		Status: StatusFailed,
		Value:  api.PassThroughTranslation(texts),
		Reason: "translate did not complete",
	}
	defer func() { settle(o, &o.translate, FamilyTranslate, seq, &res) }()

	resp, err := o.backend.Translate(ctx, api.TranslateRequest{
		SourceLanguage: src,
		TargetLanguage: tgt,
		Texts:          texts,
	})
	if err != nil {
		o.warn(FamilyTranslate, seq, err)
		res.Reason = err.Error()
		return res.Value
	}
	res = Result[api.TranslateResponse]{Status: StatusSucceeded, Value: resp}
	return res.Value
}

// SearchCategories looks up categories matching query. Failures yield an
// empty, non-nil slice.
func (o *Orchestrator) SearchCategories(ctx context.Context, query string) []api.CategorySearchResult {
	seq := o.categories.begin()
	res := Result[[]api.CategorySearchResult]{
		Status: StatusFailed,
		Value:  []api.CategorySearchResult{},
		Reason: "search did not complete",
	}
	defer func() { settle(o, &o.categories, FamilySearchCategories, seq, &res) }()

	found, err := o.backend.SearchCategories(ctx, query)
	if err != nil {
		o.warn(FamilySearchCategories, seq, err, zap.String("query", query))
		res.Reason = err.Error()
		return res.Value
	}
	if found == nil {
		found = []api.CategorySearchResult{}
	}
	res = Result[[]api.CategorySearchResult]{Status: StatusSucceeded, Value: found}
	return res.Value
}

// SearchCompetences looks up competences matching query. Failures yield an
// empty, non-nil slice.
func (o *Orchestrator) SearchCompetences(ctx context.Context, query string) []api.CompetenceSearchResult {
	seq := o.competences.begin()
	res := Result[[]api.CompetenceSearchResult]{
		Status: StatusFailed,
		Value:  []api.CompetenceSearchResult{},
		Reason: "search did not complete",
	}
	defer func() { settle(o, &o.competences, FamilySearchCompetences, seq, &res) }()

	found, err := o.backend.SearchCompetences(ctx, query)
	if err != nil {
		o.warn(FamilySearchCompetences, seq, err, zap.String("query", query))
		res.Reason = err.Error()
		return res.Value
	}
	if found == nil {
		found = []api.CompetenceSearchResult{}
	}
	res = Result[[]api.CompetenceSearchResult]{Status: StatusSucceeded, Value: found}
	return res.Value
}

// Health pings the backend. It does not touch any result slot.
func (o *Orchestrator) Health(ctx context.Context) error {
	return o.backend.Health(ctx)
}

// BuildResult returns the build slot.
func (o *Orchestrator) BuildResult() Result[api.BuildResponse] { return o.build.get() }

// PreviewResult returns the preview slot.
func (o *Orchestrator) PreviewResult() Result[api.PreviewResponse] { return o.preview.get() }

// TranslateResult returns the translate slot.
func (o *Orchestrator) TranslateResult() Result[api.TranslateResponse] { return o.translate.get() }

// CategoriesResult returns the category search slot.
func (o *Orchestrator) CategoriesResult() Result[[]api.CategorySearchResult] {
	return o.categories.get()
}

// CompetencesResult returns the competence search slot.
func (o *Orchestrator) CompetencesResult() Result[[]api.CompetenceSearchResult] {
	return o.competences.get()
}

// InFlight reports whether the latest trigger of f has not settled yet.
func (o *Orchestrator) InFlight(f Family) bool {
	switch f {
	case FamilyBuild:
		return o.build.inFlight()
	case FamilyPreview:
		return o.preview.inFlight()
	case FamilyTranslate:
		return o.translate.inFlight()
	case FamilySearchCategories:
		return o.categories.inFlight()
	case FamilySearchCompetences:
		return o.competences.inFlight()
	default:
		return false
	}
}

// Busy reports whether a build or a preview is in flight. The editor uses it
// to gate both submit actions.
func (o *Orchestrator) Busy() bool {
	return o.build.inFlight() || o.preview.inFlight()
}

// settle stamps res and stores it in s unless a newer trigger of the same
// family has been issued since seq.
func settle[T any](o *Orchestrator, s *slot[T], f Family, seq uint64, res *Result[T]) {
	res.Seq = seq
	res.SettledAt = o.now()
	if !s.settle(seq, *res) {
		o.logger.Debug("discarded stale response",
			zap.Stringer("family", f),
			zap.Uint64("seq", seq),
			zap.Stringer("status", res.Status),
		)
	}
}

func (o *Orchestrator) warn(f Family, seq uint64, err error, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.Stringer("family", f),
		zap.Uint64("seq", seq),
		zap.Error(err),
	}, fields...)
	o.logger.Warn("operation failed", fields...)
}
