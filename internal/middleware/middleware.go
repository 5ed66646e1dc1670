package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const requestIDKey ctxKey = iota

// Chain applies middlewares so that the first one is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestID reuses the incoming X-Request-ID or generates a new one and echoes it back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(models.HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(models.HeaderRequestID, id)
		}
		w.Header().Set(models.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// AccessLog writes one line per request.
func AccessLog(logger *zerolog.Logger) func(http.Handler) http.Handler {
	l := logger.With().Str("component", "http").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			event := l.Info()
			if recorder.Status >= http.StatusInternalServerError {
				event = l.Error()
			}
			event.
				Str("request_id", RequestIDFromContext(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.Status).
				Dur("duration", time.Since(start)).
				Str("user_id", r.Header.Get(models.HeaderUserID)).
				Msg("http request")
		})
	}
}

// Metrics counts requests by the matched route pattern.
func Metrics(binary string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			endpoint := r.Pattern
			if endpoint == "" {
				endpoint = "unmatched"
			}
			metrics.IncHTTP(binary, endpoint, recorder.Status)
		})
	}
}

// StatusRecorder remembers the status code written by the handler.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *StatusRecorder) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, map[string]string{"error": message})
}
