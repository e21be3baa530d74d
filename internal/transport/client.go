package transport

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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a single request when none is configured.
	DefaultTimeout = 15 * time.Second
	// maxResponseBytes guards against runaway bodies.
	maxResponseBytes = 8 << 20
)

// Request describes one API call. Path is relative to the client's base URL.
type Request struct {
	Method string
	Path   string
	Body   any
}

// Doer executes requests. *Client is the production implementation; tests
// substitute their own.
type Doer interface {
	Do(ctx context.Context, req Request) Result[json.RawMessage]
}

// TokenSource yields the bearer token for outgoing requests, or "".
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function into a TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// Client talks JSON over HTTP to the leads API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
	timeout time.Duration
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource attaches a bearer token to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		if ts != nil {
			c.tokens = ts
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient prepares a client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("transport: base url is required")
	}
	parsed, err := url.Parse(strings.TrimRight(trimmed, "/"))
	if err != nil {
		return nil, fmt.Errorf("transport: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("transport: base url must be http or https, got %q", baseURL)
	}
	c := &Client{
		baseURL: parsed,
		http:    &http.Client{},
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do sends req and normalizes the outcome. 2xx responses yield the raw body;
// everything else becomes an Err carrying the server message when one exists.
func (c *Client) Do(ctx context.Context, req Request) Result[json.RawMessage] {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return Err[json.RawMessage](KindDecode, fmt.Sprintf("encode request: %v", err))
		}
		body = bytes.NewReader(encoded)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.baseURL.String() + "/" + strings.TrimLeft(req.Path, "/")
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return Err[json.RawMessage](KindNetwork, err.Error())
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := strings.TrimSpace(c.tokens.Token()); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return Err[json.RawMessage](KindNetwork, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.logger.Debug("request finished",
		zap.String("method", method),
		zap.String("path", req.Path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))
	if err != nil {
		return ErrStatus[json.RawMessage](KindDecode, resp.StatusCode, fmt.Sprintf("read body: %v", err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Ok(json.RawMessage(raw))
	}
	message := serverMessage(raw)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	kind := KindRejected
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		kind = KindUnauthorized
	}
	return ErrStatus[json.RawMessage](kind, resp.StatusCode, message)
}

// serverMessage extracts {"message": "..."} (or {"error": "..."}) from an
// error body.
func serverMessage(raw []byte) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(envelope.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(envelope.Error)
}

// Decode parses the JSON body of an Ok result into T. An empty or null body
// is a decode failure.
func Decode[T any](r Result[json.RawMessage]) Result[T] {
	return Map(r, func(raw json.RawMessage) (T, error) {
		var out T
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			return out, fmt.Errorf("empty response body")
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return out, fmt.Errorf("decode response: %w", err)
		}
		return out, nil
	})
}
