package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// Response is an upstream answer relayed to the caller as is.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Forward describes one call to the core server.
type Forward struct {
	Method    string
	Path      string
	RawQuery  string
	UserID    string
	RequestID string
	Body      []byte
}

// ServerClient calls the core ShareIt server.
type ServerClient struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryPolicy
	logger     *zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewServerClient(baseURL string, timeout time.Duration, retry RetryPolicy, logger *zerolog.Logger) *ServerClient {
	l := logger.With().Str("component", "server_client").Logger()
	return &ServerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry,
		logger:     &l,
		sleep:      sleepCtx,
	}
}

// Do sends the call. GET requests are retried on transport errors only;
// any HTTP status from the server counts as an answer.
func (c *ServerClient) Do(ctx context.Context, f Forward) (*Response, error) {
	attempts := 1
	if f.Method == http.MethodGet && c.retry.MaxRetries > 0 {
		attempts += c.retry.MaxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := c.retry.NextDelay(attempt - 1)
			c.logger.Warn().Err(lastErr).Int("attempt", attempt).Dur("delay", delay).
				Str("path", f.Path).Msg("retrying upstream request")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		resp, err := c.do(ctx, f)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("upstream %s %s failed after %d attempt(s): %w", f.Method, f.Path, attempts, lastErr)
}

func (c *ServerClient) do(ctx context.Context, f Forward) (*Response, error) {
	endpoint := c.baseURL + f.Path
	if f.RawQuery != "" {
		endpoint += "?" + f.RawQuery
	}

	var body io.Reader
	if len(f.Body) > 0 {
		body = bytes.NewReader(f.Body)
	}
	req, err := http.NewRequestWithContext(ctx, f.Method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if f.UserID != "" {
		req.Header.Set(models.HeaderUserID, f.UserID)
	}
	if f.RequestID != "" {
		req.Header.Set(models.HeaderRequestID, f.RequestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Ping checks the server readiness endpoint.
func (c *ServerClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, Forward{Method: http.MethodGet, Path: "/readyz"})
	if err != nil {
		return err
	}
	if resp.Status != http.StatusOK {
		return fmt.Errorf("server is not ready: http %d", resp.Status)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
