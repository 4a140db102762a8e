// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the chat backend.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/parley-tui/internal/model"
	"github.com/jeranaias/parley-tui/internal/session"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout is the default timeout for API requests. Exchange
	// requests wait on model inference, so it is generous.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 4 * 1024 * 1024 // 4MB

	// sendBurst and sendPerSecond throttle message exchanges client-side
	// so a key held down in the composer cannot hammer the server.
	sendPerSecond = 1
	sendBurst     = 3
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared HTTP client for all backend requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// Error variables for common backend errors.
var (
	// ErrNotConfigured indicates no token source is set.
	ErrNotConfigured = errors.New("backend credentials not configured")

	// ErrUnauthorized indicates the token was rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the resource does not exist on the server.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrServerError indicates a 5xx response.
	ErrServerError = errors.New("server error")
)

// BackendError represents a non-2xx response from the backend.
type BackendError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// TokenSource supplies the current bearer token. Credentials are threaded
// through this function, never read from globals or the environment.
type TokenSource func() string

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat backend REST API and implements
// session.Backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// compile-time check
var _ session.Backend = (*Client)(nil)

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, token TokenSource, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    trimTrailingSlash(baseURL),
		httpClient: sharedHTTPClient,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(sendPerSecond), sendBurst),
		log:        log,
	}
}

// WithHTTPClient overrides the HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithLimiter overrides the send throttle.
func (c *Client) WithLimiter(l *rate.Limiter) *Client {
	c.limiter = l
	return c
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// wireMessage is one message as the server encodes it. The role may be the
// historical "ai" spelling; decoding normalizes it.
type wireMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// wireSession is one session in the listing response.
type wireSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []wireMessage `json:"messages"`
	CreatedAt int64         `json:"created_at"`
}

type createSessionRequest struct {
	Title string `json:"title"`
}

type createSessionResponse struct {
	ID string `json:"id"`
}

type exchangeRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type exchangeResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// apiErrorResponse is the server's error envelope, when it sends one.
type apiErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// BACKEND OPERATIONS
// =============================================================================

// ListSessions fetches every session the server holds for this user.
func (c *Client) ListSessions(ctx context.Context) ([]session.SessionSummary, error) {
	body, err := c.do(ctx, http.MethodGet, "/sessions", nil)
	if err != nil {
		return nil, err
	}

	var sessions []wireSession
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("failed to parse sessions response: %w", err)
	}

	out := make([]session.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		msgs := make([]model.Message, 0, len(s.Messages))
		for _, m := range s.Messages {
			msgs = append(msgs, model.Message{
				ID:        m.ID,
				Role:      model.NormalizeRole(m.Role),
				Content:   m.Content,
				Timestamp: m.Timestamp,
			})
		}
		out = append(out, session.SessionSummary{
			ID:        s.ID,
			Title:     s.Title,
			Messages:  msgs,
			CreatedAt: s.CreatedAt,
		})
	}
	return out, nil
}

// CreateSession registers a new session under the given title.
func (c *Client) CreateSession(ctx context.Context, title string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/sessions", createSessionRequest{Title: title})
	if err != nil {
		return "", err
	}

	var resp createSessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse create session response: %w", err)
	}
	if resp.ID == "" {
		return "", &BackendError{Status: http.StatusOK, Message: "create session returned no id"}
	}
	return resp.ID, nil
}

// ExchangeMessage sends one user message and returns the assistant reply.
func (c *Client) ExchangeMessage(ctx context.Context, text, sessionID string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := c.do(ctx, http.MethodPost, "/chat", exchangeRequest{
		Message:   text,
		SessionID: sessionID,
	})
	if err != nil {
		return "", err
	}

	var resp exchangeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	return resp.Response, nil
}

// DeleteSession removes a session remotely. A 204 is an acknowledged
// deletion and a 404 means the server does not know the session; every
// other outcome is reported as failed.
func (c *Client) DeleteSession(ctx context.Context, id string) (session.DeleteResult, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, "/sessions/"+id, nil)
	if err != nil {
		return session.DeleteFailed, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return session.DeleteFailed, &session.NetworkError{Op: "delete session", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return session.DeleteDeleted, nil
	case http.StatusNotFound:
		return session.DeleteNotFound, nil
	default:
		return session.DeleteFailed, statusError(resp.StatusCode, nil)
	}
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do runs one JSON round trip and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, reqBody any) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, reqBody)
	if err != nil {
		return nil, err
	}
	return c.roundTrip(req, path)
}

// roundTrip executes a prepared request and returns the body on 2xx.
func (c *Client) roundTrip(req *http.Request, path string) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("request failed")
		return nil, &session.NetworkError{Op: req.Method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	// Log status and duration only, never headers or bodies.
	c.log.Debug().
		Str("method", req.Method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

// newRequest builds a request with auth and content headers set.
func (c *Client) newRequest(ctx context.Context, method, path string, reqBody any) (*http.Request, error) {
	var reader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "parley/0.1.0")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// statusError converts a non-2xx response into a typed error.
func statusError(status int, body []byte) error {
	msg := ""
	var apiErr apiErrorResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &apiErr); err == nil {
			msg = apiErr.Error
		}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return wrapStatus(ErrUnauthorized, status, msg)
	case status == http.StatusNotFound:
		return wrapStatus(ErrNotFound, status, msg)
	case status == http.StatusTooManyRequests:
		return wrapStatus(ErrRateLimited, status, msg)
	case status >= 500:
		return wrapStatus(ErrServerError, status, msg)
	default:
		return &BackendError{Status: status, Message: msg}
	}
}

func wrapStatus(sentinel error, status int, msg string) error {
	if msg != "" {
		return fmt.Errorf("%w (HTTP %d): %s", sentinel, status, msg)
	}
	return fmt.Errorf("%w (HTTP %d)", sentinel, status)
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
