// Package valapi is the HTTP client for the provider-data validation
// backend. The backend owns record assignment, locking and persistence;
// every method here is a thin, normalized call against its REST contract.
package valapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/validator-cli/internal/model"
)

const (
	defaultBaseURL = "http://localhost:8080/api"
	defaultTimeout = 10 * time.Second
)

// TokenSource supplies the bearer token attached to every request. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to a TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// Client covers the backend operations used by the validation workflow.
type Client interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error)
	Register(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error)
	Me(ctx context.Context) (*model.User, error)
	NextProvider(ctx context.Context) (*model.ProviderValidationData, error)
	Stats(ctx context.Context) (*model.ProviderStats, error)
	UpdateValidation(ctx context.Context, sessionID int, update model.ValidationUpdate) error
	RecordCallAttempt(ctx context.Context, sessionID int, attemptNumber int) error
	Preview(ctx context.Context, sessionID int) (*model.ValidationPreview, error)
	Complete(ctx context.Context, sessionID int) error
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default backend base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the fixed per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

// WithTokenSource sets the bearer-token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *httpClient) {
		c.tokens = ts
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
}

// NewClient creates a backend API client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Register(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) NextProvider(ctx context.Context) (*model.ProviderValidationData, error) {
	var out model.ProviderValidationData
	if err := c.do(ctx, http.MethodGet, "/providers/next", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Stats(ctx context.Context) (*model.ProviderStats, error) {
	var out model.ProviderStats
	if err := c.do(ctx, http.MethodGet, "/providers/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) UpdateValidation(ctx context.Context, sessionID int, update model.ValidationUpdate) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/sessions/%d/validate", sessionID), update, nil)
}

func (c *httpClient) RecordCallAttempt(ctx context.Context, sessionID int, attemptNumber int) error {
	body := model.CallAttemptRequest{AttemptNumber: attemptNumber}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/sessions/%d/call-attempt", sessionID), body, nil)
}

func (c *httpClient) Preview(ctx context.Context, sessionID int) (*model.ValidationPreview, error) {
	var out model.ValidationPreview
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/sessions/%d/preview", sessionID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Complete(ctx context.Context, sessionID int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/sessions/%d/complete", sessionID), nil, nil)
}

// do performs one request against the backend: JSON in, JSON out, bearer
// token and request id attached, non-2xx normalized into *Error, deadline
// hits normalized into ErrTimeout. No automatic retry.
func (c *httpClient) do(ctx context.Context, method, path string, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "valapi: rate limit wait")
		}
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return eris.Wrap(err, "valapi: marshal request")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return eris.Wrap(err, "valapi: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return ErrTimeout
		}
		return eris.Wrap(err, "valapi: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return ErrTimeout
		}
		return eris.Wrap(err, "valapi: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalizeError(resp.StatusCode, http.StatusText(resp.StatusCode), respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "valapi: unmarshal response")
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
