package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/middleware"
	"shareit/internal/models"
)

var errMalformedBody = errors.New("invalid JSON body")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotAvailable),
		errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	event := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request failed")

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	middleware.WriteError(w, status, msg)
}

func (s *HTTPServer) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	s.writeDomainError(w, r, fmt.Errorf("%w: %s", domain.ErrValidation, msg))
}

// callerID reads the caller identity header.
func callerID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(models.HeaderUserID))
	if raw == "" {
		return 0, fmt.Errorf("missing %s header", models.HeaderUserID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s header: %q", models.HeaderUserID, raw)
	}
	return id, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}
