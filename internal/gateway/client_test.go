package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyTransport struct {
	failures int32
	calls    atomic.Int32
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, errors.New("connection reset by peer")
	}
	return f.next.RoundTrip(req)
}

func newTestClient(baseURL string, retries int) (*ServerClient, *[]time.Duration) {
	logger := zerolog.Nop()
	c := NewServerClient(baseURL, time.Second, RetryPolicy{
		MaxRetries:    retries,
		InitialDelay:  10 * time.Millisecond,
		BackoffFactor: 2,
	}, &logger)

	var delays []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return c, &delays
}

func TestServerClient_Forward(t *testing.T) {
	var got *http.Request
	var gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"missing"}`))
	}))
	defer upstream.Close()

	c, _ := newTestClient(upstream.URL+"/", 0)
	resp, err := c.Do(context.Background(), Forward{
		Method:    http.MethodPost,
		Path:      "/items/3/comment",
		RawQuery:  "a=1",
		UserID:    "7",
		RequestID: "rid",
		Body:      []byte(`{"text":"hi"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.JSONEq(t, `{"error":"missing"}`, string(resp.Body))
	assert.Equal(t, "/items/3/comment", got.URL.Path)
	assert.Equal(t, "a=1", got.URL.RawQuery)
	assert.Equal(t, "7", got.Header.Get(models.HeaderUserID))
	assert.Equal(t, "rid", got.Header.Get(models.HeaderRequestID))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, `{"text":"hi"}`, gotBody)
}

func TestServerClient_Retry(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer upstream.Close()

	t.Run("GetRecovers", func(t *testing.T) {
		c, delays := newTestClient(upstream.URL, 3)
		tr := &flakyTransport{failures: 2, next: http.DefaultTransport}
		c.httpClient.Transport = tr

		resp, err := c.Do(context.Background(), Forward{Method: http.MethodGet, Path: "/users"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, int32(3), tr.calls.Load())
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *delays)
	})

	t.Run("GetGivesUp", func(t *testing.T) {
		c, _ := newTestClient(upstream.URL, 2)
		tr := &flakyTransport{failures: 10, next: http.DefaultTransport}
		c.httpClient.Transport = tr

		_, err := c.Do(context.Background(), Forward{Method: http.MethodGet, Path: "/users"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "3 attempt(s)")
		assert.Equal(t, int32(3), tr.calls.Load())
	})

	t.Run("PostNotRetried", func(t *testing.T) {
		c, delays := newTestClient(upstream.URL, 3)
		tr := &flakyTransport{failures: 1, next: http.DefaultTransport}
		c.httpClient.Transport = tr

		_, err := c.Do(context.Background(), Forward{Method: http.MethodPost, Path: "/users", Body: []byte(`{}`)})
		require.Error(t, err)
		assert.Equal(t, int32(1), tr.calls.Load())
		assert.Empty(t, *delays)
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		c, _ := newTestClient(upstream.URL, 3)
		c.httpClient.Transport = &flakyTransport{failures: 10, next: http.DefaultTransport}
		c.sleep = sleepCtx

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Do(ctx, Forward{Method: http.MethodGet, Path: "/users"})
		assert.Error(t, err)
	})
}

func TestServerClient_Ping(t *testing.T) {
	ready := true
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/readyz"))
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer upstream.Close()

	c, _ := newTestClient(upstream.URL, 0)
	assert.NoError(t, c.Ping(context.Background()))

	ready = false
	assert.Error(t, c.Ping(context.Background()))
}
