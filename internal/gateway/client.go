package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/citycare/internal/api/dto"
	"github.com/spec-kit/citycare/internal/domain"
	"github.com/spec-kit/citycare/internal/observability"
	apperrors "github.com/spec-kit/citycare/pkg/util"
)

// DefaultBaseURL is where the CityCare server listens in development.
const DefaultBaseURL = "http://localhost:8000/api/"

const maxBodyBytes = 4 << 20

// Client issues JSON requests against the CityCare REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *observability.Metrics
	timeout    time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the request counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTimeout bounds every call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New builds a client rooted at baseURL. An empty baseURL means DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q is not absolute", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Login exchanges credentials for tokens. Any non-2xx answer is an AuthError.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	res, err := c.do(ctx, http.MethodPost, "auth/login/", req, "")
	if err != nil {
		return nil, err
	}
	if !res.ok() {
		msg := apperrors.BodyMessage(res.body)
		if msg == "" {
			msg = fmt.Sprintf("login failed (%d)", res.status)
		}
		authErr := &apperrors.AuthError{Status: res.status, Message: msg, Body: res.body}
		c.metrics.RecordError("auth/login/", http.MethodPost, string(authErr.Kind()))
		return nil, authErr
	}

	var out dto.AuthResponse
	if err := res.decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAuthenticated issues a GET with a bearer token and decodes into out.
func (c *Client) GetAuthenticated(ctx context.Context, path, token string, out any) error {
	return c.call(ctx, http.MethodGet, path, nil, token, out)
}

// PostAuthenticated issues a POST. The token may be empty for public routes.
func (c *Client) PostAuthenticated(ctx context.Context, path string, body any, token string, out any) error {
	return c.call(ctx, http.MethodPost, path, body, token, out)
}

// PutAuthenticated issues a PUT with a bearer token.
func (c *Client) PutAuthenticated(ctx context.Context, path string, body any, token string, out any) error {
	return c.call(ctx, http.MethodPut, path, body, token, out)
}

// PutStatus moves an issue to status. The server answers with a sparse
// record; when it omits the record entirely the request values are echoed.
func (c *Client) PutStatus(ctx context.Context, id string, status domain.ComplaintStatus, token string) (*dto.IssueRecord, error) {
	path := "admin/issues/" + url.PathEscape(id) + "/status/"
	var env dto.IssueEnvelope
	if err := c.PutAuthenticated(ctx, path, dto.StatusUpdateRequest{Status: string(status)}, token, &env); err != nil {
		return nil, err
	}
	if env.Issue == nil {
		return &dto.IssueRecord{ID: dto.ID(id), Status: string(status)}, nil
	}
	if env.Issue.ID == "" {
		env.Issue.ID = dto.ID(id)
	}
	return env.Issue, nil
}

func (c *Client) call(ctx context.Context, method, path string, body any, token string, out any) error {
	res, err := c.do(ctx, method, path, body, token)
	if err != nil {
		return err
	}
	if !res.ok() {
		reqErr := &apperrors.RequestError{Method: method, Path: path, Status: res.status, Body: res.body}
		c.metrics.RecordError(metricPath(path), method, string(reqErr.Kind()))
		return reqErr
	}
	return res.decode(out)
}

type response struct {
	method string
	path   string
	status int
	raw    []byte
	body   any
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (r *response) decode(out any) error {
	if out == nil || len(bytes.TrimSpace(r.raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.raw, out); err != nil {
		return &apperrors.RequestError{Method: r.method, Path: r.path, Status: r.status, Body: r.body}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string) (*response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint, err := c.resolve(path)
	if err != nil {
		return nil, &apperrors.NetworkError{Method: method, Path: path, Err: err}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &apperrors.NetworkError{Method: method, Path: path, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		netErr := &apperrors.NetworkError{Method: method, Path: path, Err: err}
		c.metrics.RecordError(metricPath(path), method, string(netErr.Kind()))
		c.logger.Warn("api request failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, netErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil && !errors.Is(err, io.EOF) {
		netErr := &apperrors.NetworkError{Method: method, Path: path, Err: err}
		c.metrics.RecordError(metricPath(path), method, string(netErr.Kind()))
		return nil, netErr
	}
	elapsed := time.Since(start)

	c.metrics.RecordRequest(metricPath(path), method, resp.StatusCode, elapsed)
	c.logger.Debug("api request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed))

	return &response{
		method: method,
		path:   path,
		status: resp.StatusCode,
		raw:    raw,
		body:   decodeBody(raw),
	}, nil
}

func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", err
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// decodeBody keeps JSON bodies as generic values and anything else as text.
func decodeBody(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(trimmed)
	}
	return v
}

func metricPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
