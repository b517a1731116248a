// Package remote adapts the upstream booking REST API to the engine's ports.
package remote

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
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bookingengine/internal/app/ports"
)

const defaultTimeout = 5 * time.Second

var (
	ErrUnavailable   = errors.New("remote: booking api unavailable")
	ErrTimeout       = errors.New("remote: booking api timeout")
	ErrRejected      = errors.New("remote: request rejected")
	ErrNotConfigured = errors.New("remote: base url not configured")
)

// StatusError is an upstream response with a status of 400 or above (404
// excluded, which maps to ports.ErrNotFound).
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: %s %s returned %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Unwrap classifies the failure: 4xx means the request was refused, anything
// else means the upstream is not serving.
func (e *StatusError) Unwrap() error {
	if e.Code >= http.StatusBadRequest && e.Code < http.StatusInternalServerError {
		return ErrRejected
	}
	return ErrUnavailable
}

// Client talks JSON to the booking API. Limiter is optional and throttles
// every outbound request.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Limiter  *rate.Limiter
	Timeout  time.Duration
	Currency string
	Logger   *slog.Logger
}

// New builds a client with its own http.Client. A non-positive perSecond
// disables throttling.
func New(baseURL string, timeout time.Duration, perSecond float64, burst int, logger *slog.Logger) *Client {
	var limiter *rate.Limiter
	if perSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{},
		Limiter: limiter,
		Timeout: timeout,
		Logger:  logger,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	if c == nil || c.BaseURL == "" {
		return nil, ErrNotConfigured
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("remote: throttled: %w", err)
		}
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("remote: encode %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			err = fmt.Errorf("%w (%s %s)", ErrTimeout, method, path)
		} else {
			err = fmt.Errorf("%w (%s %s): %v", ErrUnavailable, method, path, err)
		}
		c.logError("remote request failed", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, path)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		c.logError("remote returned error", err)
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logError("remote read failed", err)
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, err)
	}
	return data, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) logError(msg string, err error) {
	if c.Logger != nil {
		c.Logger.Error(msg, "error", err)
	}
}

func escape(id string) string {
	return url.PathEscape(strings.TrimSpace(id))
}
