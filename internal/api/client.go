// Package api is the typed HTTP client for the library backend. It owns the
// wire concerns: bearer auth, JSON codecs, error envelope decoding, rate
// limiting and request tracing. Domain rules live in the service packages
// that sit on top of it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"libraclient/internal/session"
)

// Error is a non-2xx response from the backend. Message is the backend's own
// wording when the error envelope carried one, otherwise a generic fallback.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Client talks to the library backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
	tracer  trace.Tracer
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithRateLimit caps outgoing requests at rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   newHTTPClient(),
		limiter: rate.NewLimiter(rate.Inf, 0),
		tracer:  otel.Tracer("libraclient/api"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient() *http.Client {
	tr := &http.Transport{
		MaxIdleConns:      20,
		MaxConnsPerHost:   20,
		IdleConnTimeout:   30 * time.Second,
		ForceAttemptHTTP2: true,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	return &http.Client{Transport: tr}
}

// SetToken installs the bearer token attached to subsequent requests. An
// empty token detaches authentication.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do performs one request. A non-nil body is sent as JSON; a non-nil out
// receives the decoded JSON response. Responses with a status other than
// wantStatus become an *Error, with 401s additionally marked unauthorized.
// Requests are never retried.
func (c *Client) do(ctx context.Context, method, path string, body, out any, wantStatus int) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	ctx, span := c.tracer.Start(ctx, "api.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		),
	)
	defer span.End()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != wantStatus {
		apiErr := decodeError(resp)
		span.SetStatus(codes.Error, apiErr.Message)
		c.logger.Debug("request failed",
			"method", method, "path", path, "status", resp.StatusCode)
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", session.ErrUnauthorized, apiErr.Message)
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeError extracts the backend's error envelope. Bodies are read with a
// hard cap, and anything unparseable falls back to a generic message.
func decodeError(resp *http.Response) *Error {
	apiErr := &Error{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("unexpected response from server (status %d)", resp.StatusCode),
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}

	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != "" {
		apiErr.Message = envelope.Error
	}
	return apiErr
}

// asSentinel rewraps a backend error of the given status around a domain
// sentinel, keeping the backend's message visible.
func asSentinel(err error, status int, sentinel error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status == status {
		return fmt.Errorf("%w: %s", sentinel, apiErr.Message)
	}
	return err
}
