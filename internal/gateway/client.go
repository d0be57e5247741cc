// Package gateway is the HTTP client for the external health REST backend.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	// ErrUnauthenticated is returned without any network call when the
	// session holds no token
	ErrUnauthenticated = errors.New("no active session")
	// ErrTransport wraps network failures reaching the backend
	ErrTransport = errors.New("backend unreachable")
	// ErrEmptyBody is returned when a 2xx response to a read carries no
	// data. Mutations treat it as success.
	ErrEmptyBody = errors.New("backend returned an empty response")
)

// TokenSource supplies the bearer token for a call
type TokenSource interface {
	Token() (string, error)
}

// APIError is a non-2xx response from the backend
type APIError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// IsUnauthorized reports whether the backend rejected the session
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// StatusCode returns the backend status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// errorBody is the backend's error payload
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Config holds gateway client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the backend. It never retries.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a backend client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetLogger(logger.Sugar()).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:   client,
		logger: logger,
	}, nil
}

// call describes one backend request
type call struct {
	method     string
	path       string
	pathParams map[string]string
	query      map[string]string
	body       any
	result     any
}

// authorized runs a call with the session's bearer token attached
func (c *Client) authorized(ctx context.Context, sess TokenSource, req call) error {
	if sess == nil {
		return ErrUnauthenticated
	}
	token, err := sess.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if token == "" {
		return ErrUnauthenticated
	}
	return c.do(ctx, token, req)
}

// do sends a request. A 2xx body is decoded into req.result and an error
// body into errorBody, both by resty.
func (c *Client) do(ctx context.Context, token string, req call) error {
	r := c.http.R().
		SetContext(ctx).
		SetError(&errorBody{}).
		ForceContentType("application/json")
	if token != "" {
		r.SetAuthToken(token)
	}
	if len(req.pathParams) > 0 {
		r.SetPathParams(req.pathParams)
	}
	if len(req.query) > 0 {
		r.SetQueryParams(req.query)
	}
	if req.body != nil {
		r.SetBody(req.body)
	}
	if req.result != nil {
		r.SetResult(req.result)
	}

	start := time.Now()
	resp, err := r.Execute(req.method, req.path)
	if err != nil && (resp == nil || resp.RawResponse == nil) {
		c.logger.Error("backend call failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, req.method, req.path, err)
	}

	c.logger.Debug("backend call completed",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)

	if !resp.IsSuccess() {
		apiErr := &APIError{
			Status:  resp.StatusCode(),
			Message: errorMessage(resp.StatusCode(), resp.Error()),
			Method:  req.method,
			Path:    req.path,
		}
		c.logger.Warn("backend returned error",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Int("status", apiErr.Status),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if req.result == nil {
		return nil
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return ErrEmptyBody
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", req.method, req.path, err)
	}
	return nil
}

// errorMessage extracts the backend's message or falls back to the status text
func errorMessage(status int, decoded any) string {
	if eb, ok := decoded.(*errorBody); ok && eb != nil {
		if eb.Error != "" {
			return eb.Error
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}
