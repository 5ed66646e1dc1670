package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/metrics"
	"shareit/internal/middleware"
	"shareit/internal/models"
	"shareit/internal/repository"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// relayed upstream headers
var passHeaders = []string{"Content-Type", "Content-Disposition"}

// route describes how the gateway treats one endpoint.
type route struct {
	requireUser bool
	cacheable   bool
	body        func() any
	check       func(r *http.Request) error
}

// Gateway validates incoming requests and forwards them to the core server.
type Gateway struct {
	cfg       config.GatewayConfig
	client    *ServerClient
	cache     repository.ResponseCache
	validator *Validator
	logger    *zerolog.Logger
	server    *http.Server
	handler   http.Handler
}

// New builds the gateway; cache may be nil.
func New(cfg config.GatewayConfig, client *ServerClient, cache repository.ResponseCache, logger *zerolog.Logger) *Gateway {
	l := logger.With().Str("component", "gateway").Logger()
	g := &Gateway{
		cfg:       cfg,
		client:    client,
		cache:     cache,
		validator: NewValidator(time.Now),
		logger:    &l,
	}

	mux := http.NewServeMux()
	g.routes(mux)

	g.handler = middleware.Chain(mux,
		middleware.RequestID,
		middleware.AccessLog(logger),
		middleware.Metrics("gateway"),
		middleware.NewRateLimiter(cfg.RateLimit).Wrap,
	)
	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           g.handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Timeout + 5*time.Second,
	}
	return g
}

func (g *Gateway) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /readyz", g.handleReadyz)

	public := route{}
	user := route{requireUser: true}

	g.handle(mux, "GET /users", route{cacheable: true})
	g.handle(mux, "GET /users/{id}", route{cacheable: true})
	g.handle(mux, "POST /users", route{body: func() any { return &userRequest{} }})
	g.handle(mux, "PATCH /users/{id}", public)
	g.handle(mux, "DELETE /users/{id}", public)

	g.handle(mux, "GET /items", user)
	g.handle(mux, "GET /items/search", route{cacheable: true})
	g.handle(mux, "GET /items/{id}", user)
	g.handle(mux, "POST /items", route{requireUser: true, body: func() any { return &itemRequest{} }})
	g.handle(mux, "PATCH /items/{id}", user)
	g.handle(mux, "DELETE /items/{id}", user)
	g.handle(mux, "POST /items/{id}/comment", route{requireUser: true, body: func() any { return &commentRequest{} }})

	g.handle(mux, "GET /bookings", user)
	g.handle(mux, "GET /bookings/owner", user)
	g.handle(mux, "GET /bookings/owner/export", user)
	g.handle(mux, "GET /bookings/{id}", user)
	g.handle(mux, "POST /bookings", route{requireUser: true, body: func() any { return &bookingRequest{} }})
	g.handle(mux, "PATCH /bookings/{id}", route{requireUser: true, check: requireApprovedParam})

	g.handle(mux, "GET /requests", user)
	g.handle(mux, "GET /requests/all", user)
	g.handle(mux, "GET /requests/{id}", user)
	g.handle(mux, "POST /requests", route{requireUser: true, body: func() any { return &itemWantedRequest{} }})
}

func (g *Gateway) handle(mux *http.ServeMux, pattern string, rt route) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		g.serve(w, r, rt)
	})
}

func (g *Gateway) serve(w http.ResponseWriter, r *http.Request, rt route) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	userID := strings.TrimSpace(r.Header.Get(models.HeaderUserID))
	if rt.requireUser {
		if err := checkUserID(userID); err != nil {
			g.reject(w, r, err)
			return
		}
	}
	if rt.check != nil {
		if err := rt.check(r); err != nil {
			g.reject(w, r, err)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		g.reject(w, r, fmt.Errorf("failed to read body: %w", err))
		return
	}
	if rt.body != nil {
		if err := g.validator.DecodeAndValidate(body, rt.body()); err != nil {
			g.reject(w, r, err)
			return
		}
	}

	cacheKey := r.Method + " " + r.URL.RequestURI()
	if rt.cacheable && g.cache != nil {
		data, ok, err := g.cache.Get(ctx, cacheKey)
		if err != nil {
			g.logger.Warn().Err(err).Str("key", cacheKey).Msg("cache lookup failed")
		}
		metrics.IncCacheLookup(ok)
		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
			return
		}
	}

	resp, err := g.client.Do(ctx, Forward{
		Method:    r.Method,
		Path:      r.URL.Path,
		RawQuery:  r.URL.RawQuery,
		UserID:    userID,
		RequestID: requestID,
		Body:      body,
	})
	if err != nil {
		metrics.IncUpstreamError()
		g.logger.Error().Err(err).Str("request_id", requestID).Msg("upstream request failed")
		middleware.WriteError(w, http.StatusBadGateway, "upstream server unavailable")
		return
	}

	success := resp.Status >= 200 && resp.Status < 300
	if g.cache != nil && success {
		switch {
		case rt.cacheable:
			if err := g.cache.Set(ctx, cacheKey, resp.Body); err != nil {
				g.logger.Warn().Err(err).Str("key", cacheKey).Msg("cache store failed")
			}
		case r.Method != http.MethodGet:
			if err := g.cache.Flush(ctx); err != nil {
				g.logger.Warn().Err(err).Msg("cache flush failed")
			}
		}
	}

	for _, h := range passHeaders {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

func (g *Gateway) reject(w http.ResponseWriter, r *http.Request, err error) {
	g.logger.Warn().Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request rejected")
	middleware.WriteError(w, http.StatusBadRequest, err.Error())
}

func (g *Gateway) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := g.client.Ping(ctx); err != nil {
		g.logger.Error().Err(err).Msg("readiness check failed")
		middleware.WriteError(w, http.StatusServiceUnavailable, "server is not ready")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func checkUserID(raw string) error {
	if raw == "" {
		return fmt.Errorf("missing %s header", models.HeaderUserID)
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		return fmt.Errorf("invalid %s header: %q", models.HeaderUserID, raw)
	}
	return nil
}

func requireApprovedParam(r *http.Request) error {
	if _, err := strconv.ParseBool(r.URL.Query().Get("approved")); err != nil {
		return errors.New("approved must be true or false")
	}
	return nil
}

func (g *Gateway) Handler() http.Handler {
	return g.handler
}

func (g *Gateway) Start() error {
	g.logger.Info().Str("addr", g.server.Addr).Str("server_url", g.cfg.ServerURL).Msg("gateway listening")
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}
