package api

import (
	"context"
	"sync"
)

// MockBackend is a deterministic Backend for tests. Each operation calls the
// matching func field when set; unset fields answer with a zero value and
// ErrTransport so tests exercise the failure path by default.
type MockBackend struct {
	BuildFunc             func(ctx context.Context, req BuildRequest) (BuildResponse, error)
	PreviewFunc           func(ctx context.Context, req BuildRequest) (PreviewResponse, error)
	TranslateFunc         func(ctx context.Context, req TranslateRequest) (TranslateResponse, error)
	SearchCategoriesFunc  func(ctx context.Context, query string) ([]CategorySearchResult, error)
	SearchCompetencesFunc func(ctx context.Context, query string) ([]CompetenceSearchResult, error)
	HealthFunc            func(ctx context.Context) error

	mu    sync.Mutex
	calls map[string]int
	// BuildRequests records every build/preview payload in call order.
	BuildRequests []BuildRequest
}

var _ Backend = (*MockBackend)(nil)

func (m *MockBackend) note(op string, req *BuildRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
	if req != nil {
		m.BuildRequests = append(m.BuildRequests, *req)
	}
}

// CallCount returns how many times op ("build", "preview", "translate",
// "search-categories", "search-competences", "health") was invoked.
func (m *MockBackend) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func unavailable(endpoint string) error {
	return &ErrTransport{Endpoint: endpoint, Err: context.DeadlineExceeded}
}

func (m *MockBackend) Build(ctx context.Context, req BuildRequest) (BuildResponse, error) {
	m.note("build", &req)
	if m.BuildFunc == nil {
		return BuildResponse{}, unavailable(PathBuild)
	}
	return m.BuildFunc(ctx, req)
}

func (m *MockBackend) Preview(ctx context.Context, req BuildRequest) (PreviewResponse, error) {
	m.note("preview", &req)
	if m.PreviewFunc == nil {
		return PreviewResponse{}, unavailable(PathPreview)
	}
	return m.PreviewFunc(ctx, req)
}

func (m *MockBackend) Translate(ctx context.Context, req TranslateRequest) (TranslateResponse, error) {
	m.note("translate", nil)
	if m.TranslateFunc == nil {
		return TranslateResponse{}, unavailable(PathTranslate)
	}
	return m.TranslateFunc(ctx, req)
}

func (m *MockBackend) SearchCategories(ctx context.Context, query string) ([]CategorySearchResult, error) {
	m.note("search-categories", nil)
	if m.SearchCategoriesFunc == nil {
		return nil, unavailable(PathCategories)
	}
	return m.SearchCategoriesFunc(ctx, query)
}

func (m *MockBackend) SearchCompetences(ctx context.Context, query string) ([]CompetenceSearchResult, error) {
	m.note("search-competences", nil)
	if m.SearchCompetencesFunc == nil {
		return nil, unavailable(PathCompetences)
	}
	return m.SearchCompetencesFunc(ctx, query)
}

func (m *MockBackend) Health(ctx context.Context) error {
	m.note("health", nil)
	if m.HealthFunc == nil {
		return unavailable(PathHealth)
	}
	return m.HealthFunc(ctx)
}
