package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/assessor/internal/store"
)

// maxLoggedBody bounds the request/response text kept per event.
const maxLoggedBody = 16 << 10

// LoggingBackend is a decorator that records every backend call as an
// operation event.
type LoggingBackend struct {
	inner     Backend
	eventRepo store.EventRepo
	logger    *zap.Logger
}

var _ Backend = (*LoggingBackend)(nil)

// WithLogging wraps a Backend with event logging. A nil repo returns b as is.
// logger receives the failures to write an event; it may be nil.
func WithLogging(b Backend, repo store.EventRepo, logger *zap.Logger) Backend {
	if repo == nil {
		return b
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingBackend{inner: b, eventRepo: repo, logger: logger}
}

func (l *LoggingBackend) Build(ctx context.Context, req BuildRequest) (BuildResponse, error) {
	ctx, code := observeStatus(ctx)
	start := time.Now()
	resp, err := l.inner.Build(ctx, req)
	l.record(ctx, "build", PathBuild, *code, start, req, resp, err)
	return resp, err
}

func (l *LoggingBackend) Preview(ctx context.Context, req BuildRequest) (PreviewResponse, error) {
	ctx, code := observeStatus(ctx)
	start := time.Now()
	resp, err := l.inner.Preview(ctx, req)
	l.record(ctx, "preview", PathPreview, *code, start, req, resp, err)
	return resp, err
}

func (l *LoggingBackend) Translate(ctx context.Context, req TranslateRequest) (TranslateResponse, error) {
	ctx, code := observeStatus(ctx)
	start := time.Now()
	resp, err := l.inner.Translate(ctx, req)
	l.record(ctx, "translate", PathTranslate, *code, start, req, resp, err)
	return resp, err
}

func (l *LoggingBackend) SearchCategories(ctx context.Context, query string) ([]CategorySearchResult, error) {
	ctx, code := observeStatus(ctx)
	start := time.Now()
	resp, err := l.inner.SearchCategories(ctx, query)
	l.record(ctx, "search-categories", PathCategories, *code, start, map[string]string{"query": query}, resp, err)
	return resp, err
}

func (l *LoggingBackend) SearchCompetences(ctx context.Context, query string) ([]CompetenceSearchResult, error) {
	ctx, code := observeStatus(ctx)
	start := time.Now()
	resp, err := l.inner.SearchCompetences(ctx, query)
	l.record(ctx, "search-competences", PathCompetences, *code, start, map[string]string{"query": query}, resp, err)
	return resp, err
}

func (l *LoggingBackend) Health(ctx context.Context) error {
	ctx, code := observeStatus(ctx)
	start := time.Now()
	err := l.inner.Health(ctx)
	l.record(ctx, "health", PathHealth, *code, start, nil, nil, err)
	return err
}

func (l *LoggingBackend) record(ctx context.Context, family, endpoint string, code int, start time.Time, req, resp any, err error) {
	data := store.OperationEventData{
		Family:      family,
		Endpoint:    endpoint,
		LatencyMs:   time.Since(start).Milliseconds(),
		StatusCode:  code,
		Success:     err == nil,
		RequestBody: serializeBody(req),
	}

	if err == nil {
		data.ResponseBody = serializeBody(resp)
	} else {
		data.ErrorMessage = err.Error()
		var statusErr *ErrStatus
		var decodeErr *ErrDecode
		switch {
		case errors.As(err, &statusErr):
			data.StatusCode = statusErr.Code
			data.ResponseBody = truncate(statusErr.Body, maxLoggedBody)
		case errors.As(err, &decodeErr):
			data.ResponseBody = truncate(string(decodeErr.Body), maxLoggedBody)
		}
	}

	// Use a context that outlives a cancelled request so failures still get
	// recorded.
	logCtx := context.WithoutCancel(ctx)
	if logErr := l.eventRepo.AppendOperation(logCtx, data); logErr != nil {
		l.logger.Warn("failed to log operation event",
			zap.String("family", family),
			zap.Error(logErr))
	}
}

func serializeBody(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return truncate(string(b), maxLoggedBody)
}
