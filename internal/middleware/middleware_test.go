package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shareit/internal/config"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("Generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(models.HeaderRequestID))
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set(models.HeaderRequestID, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(models.HeaderRequestID))
	})
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "user with id = 5: not found")
	}), RequestID, AccessLog(&logger))

	req := httptest.NewRequest(http.MethodGet, "/users/5", nil)
	req.Header.Set(models.HeaderUserID, "7")
	req.Header.Set(models.HeaderRequestID, "rid")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "rid", line["request_id"])
	assert.Equal(t, "/users/5", line["path"])
	assert.Equal(t, float64(http.StatusNotFound), line["status"])
	assert.Equal(t, "7", line["user_id"])

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user with id = 5: not found", body["error"])
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {})

	h := Metrics("test")(mux)
	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/1", nil))
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	})
}

func TestRateLimiter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	t.Run("Disabled", func(t *testing.T) {
		h := NewRateLimiter(config.APIRateLimitConfig{}).Wrap(ok)
		for i := 0; i < 20; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("PerCaller", func(t *testing.T) {
		h := NewRateLimiter(config.APIRateLimitConfig{RPS: 0.001, Burst: 1}).Wrap(ok)

		call := func(userID string) int {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(models.HeaderUserID, userID)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec.Code
		}

		assert.Equal(t, http.StatusOK, call("1"))
		assert.Equal(t, http.StatusTooManyRequests, call("1"))
		assert.Equal(t, http.StatusOK, call("2"))
	})
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientKey(req))

	req.Header.Set(models.HeaderUserID, "3")
	assert.Equal(t, "user:3", clientKey(req))
}
