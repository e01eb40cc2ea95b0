package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Endpoint paths served by the assessment builder backend.
const (
	PathBuild       = "/api/assessments/build"
	PathPreview     = "/api/xml/preview"
	PathTranslate   = "/api/translate"
	PathCategories  = "/api/categories"
	PathCompetences = "/api/competences"
	PathHealth      = "/api/health"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Backend is the request/response contract of the assessment builder
// backend. Implementations return typed errors (*ErrTransport, *ErrStatus,
// *ErrDecode) and never interpret backend-level failures such as
// BuildResponse.Success == false.
type Backend interface {
	Build(ctx context.Context, req BuildRequest) (BuildResponse, error)
	Preview(ctx context.Context, req BuildRequest) (PreviewResponse, error)
	Translate(ctx context.Context, req TranslateRequest) (TranslateResponse, error)
	SearchCategories(ctx context.Context, query string) ([]CategorySearchResult, error)
	SearchCompetences(ctx context.Context, query string) ([]CompetenceSearchResult, error)
	Health(ctx context.Context) error
}

// Client talks JSON over HTTP to the backend.
type Client struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

const defaultTimeout = 30 * time.Second

var _ Backend = (*Client)(nil)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client to copy from. The client passed in is
// never modified. nil keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. It overrides the timeout of a
// client given with WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a backend client rooted at baseURL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "assessor",
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := http.Client{Timeout: defaultTimeout}
	if c.httpClient != nil {
		hc = *c.httpClient
	}
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.httpClient = &hc
	return c
}

// BaseURL returns the backend root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Build(ctx context.Context, req BuildRequest) (BuildResponse, error) {
	var out BuildResponse
	err := c.doJSON(ctx, http.MethodPost, PathBuild, normalizeBuild(req), "build-response", &out)
	return out, err
}

func (c *Client) Preview(ctx context.Context, req BuildRequest) (PreviewResponse, error) {
	var out PreviewResponse
	err := c.doJSON(ctx, http.MethodPost, PathPreview, normalizeBuild(req), "preview-response", &out)
	return out, err
}

func (c *Client) Translate(ctx context.Context, req TranslateRequest) (TranslateResponse, error) {
	if req.Texts == nil {
		req.Texts = []string{}
	}
	var out TranslateResponse
	err := c.doJSON(ctx, http.MethodPost, PathTranslate, req, "translate-response", &out)
	return out, err
}

func (c *Client) SearchCategories(ctx context.Context, query string) ([]CategorySearchResult, error) {
	var out []CategorySearchResult
	if err := c.doJSON(ctx, http.MethodGet, lookupPath(PathCategories, query), nil, "lookup-results", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchCompetences(ctx context.Context, query string) ([]CompetenceSearchResult, error) {
	var out []CompetenceSearchResult
	if err := c.doJSON(ctx, http.MethodGet, lookupPath(PathCompetences, query), nil, "lookup-results", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health pings the backend. Any 2xx answer counts as healthy.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, PathHealth, nil)
	return err
}

func lookupPath(path, query string) string {
	return path + "?query=" + url.QueryEscape(query)
}

// normalizeBuild makes sure competences serialize as [] rather than null.
func normalizeBuild(req BuildRequest) BuildRequest {
	if req.Competences == nil {
		req.Competences = []CompetencePayload{}
	}
	return req
}

// doJSON sends body (if any) as JSON, validates the response against the
// named schema, then decodes it into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, schema string, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
		reader = bytes.NewReader(b)
	}

	raw, err := c.do(ctx, method, path, reader)
	if err != nil {
		return err
	}

	if err := validateBody(schema, raw); err != nil {
		return &ErrDecode{Endpoint: endpointName(path), Body: raw, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ErrDecode{Endpoint: endpointName(path), Body: raw, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	name := endpointName(path)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ErrTransport{Endpoint: name, Err: err}
	}
	defer resp.Body.Close()

	noteStatus(ctx, resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &ErrTransport{Endpoint: name, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ErrStatus{Endpoint: name, Code: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

type statusKey struct{}

// observeStatus returns a context in which a Client call stores the HTTP
// status it received into the returned int. It stays 0 when no response
// arrived or the backend is not a Client.
func observeStatus(ctx context.Context) (context.Context, *int) {
	code := new(int)
	return context.WithValue(ctx, statusKey{}, code), code
}

func noteStatus(ctx context.Context, code int) {
	if p, ok := ctx.Value(statusKey{}).(*int); ok {
		*p = code
	}
}

// endpointName strips the query string so errors and logs never carry user
// search text.
func endpointName(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
