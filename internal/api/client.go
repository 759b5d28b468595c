// Package api is the client of the WhimsicalFrog HTTP/JSON API.
package api

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
	"github.com/rs/zerolog"

	"github.com/whimsicalfrog/frogshop/internal/core/logging"
)

const (
	defaultTimeout = 10 * time.Second
	maxLoggedBody  = 512
	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"
)

// ErrMalformedResponse is returned when a response body is not a valid
// envelope. The raw body is logged, never returned.
var ErrMalformedResponse = errors.New("malformed response")

// Envelope is the shape of every API response.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// errorText returns the error field whether it is a string or an object
// with a message.
func (e Envelope) errorText() string {
	if len(e.Error) == 0 || string(e.Error) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(e.Error, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Code
	}
	return ""
}

// RequestError is an API-level failure: a non-2xx status or success=false.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	RequestID  string
}

func (e *RequestError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" {
		msg = "request failed"
	}
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Retryable reports whether repeating the request may succeed.
func (e *RequestError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode >= 500
}

// RequestOptions are the optional parts of a request.
type RequestOptions struct {
	Query   url.Values
	Body    any
	Headers map[string]string
}

// Client calls the API relative to a base URL.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  zerolog.Logger
	newID   func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request that has no earlier deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRequestID overrides request id generation.
func WithRequestID(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: defaultTimeout,
		logger:  zerolog.Nop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Get issues a GET with params and decodes the envelope data into dest.
func (c *Client) Get(ctx context.Context, path string, params url.Values, dest any) error {
	return c.Request(ctx, http.MethodGet, path, RequestOptions{Query: params}, dest)
}

// Post issues a POST with a JSON body and decodes the envelope data into dest.
func (c *Client) Post(ctx context.Context, path string, body any, dest any) error {
	return c.Request(ctx, http.MethodPost, path, RequestOptions{Body: body}, dest)
}

// Request issues any request. dest may be nil when the data is not needed.
func (c *Client) Request(ctx context.Context, method, path string, opts RequestOptions, dest any) error {
	if c.timeout > 0 {
		if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) > c.timeout {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}

	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(opts.Query) > 0 {
		u += "?" + opts.Query.Encode()
	}

	var body io.Reader
	if opts.Body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(opts.Body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := logging.RequestID(ctx)
	if requestID == "" {
		requestID = c.newID()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	ctx = logging.WithRequestID(ctx, requestID)
	log := c.logger.With().Str("method", method).Str("path", path).Logger()
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	log.Debug().Ctx(ctx).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("api request")

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		log.Warn().Ctx(ctx).
			Int("status", resp.StatusCode).
			Str("body", truncate(payload, maxLoggedBody)).
			Msg("malformed api response")
		if resp.StatusCode >= 400 {
			return &RequestError{Method: method, Path: path, StatusCode: resp.StatusCode, RequestID: requestID}
		}
		return fmt.Errorf("%s %s: %w", method, path, ErrMalformedResponse)
	}

	if resp.StatusCode >= 400 || !env.Success {
		msg := env.errorText()
		if msg == "" {
			msg = env.Message
		}
		return &RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    msg,
			RequestID:  requestID,
		}
	}

	if dest == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		log.Warn().Ctx(ctx).Err(err).Str("data", truncate(env.Data, maxLoggedBody)).Msg("unexpected api data")
		return fmt.Errorf("%s %s: decode data: %w", method, path, errors.Join(ErrMalformedResponse, err))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
