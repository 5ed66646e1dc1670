package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/middleware"
	"shareit/internal/service"

	"github.com/rs/zerolog"
)

// Services bundles the domain services behind the HTTP API.
type Services struct {
	Users    *service.UserService
	Items    *service.ItemService
	Bookings *service.BookingService
	Requests *service.RequestService
}

// HTTPServer exposes the ShareIt JSON API.
type HTTPServer struct {
	cfg     config.APIConfig
	repo    domain.Repository
	svc     Services
	server  *http.Server
	handler http.Handler
	logger  *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, repo domain.Repository, svc Services, logger *zerolog.Logger) *HTTPServer {
	l := logger.With().Str("component", "http").Logger()
	srv := &HTTPServer{cfg: cfg, repo: repo, svc: svc, logger: &l}

	mux := http.NewServeMux()
	srv.routes(mux)

	srv.handler = middleware.Chain(mux,
		middleware.RequestID,
		middleware.AccessLog(logger),
		middleware.Metrics("server"),
		middleware.NewRateLimiter(cfg.RateLimit).Wrap,
	)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return srv
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("PATCH /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)

	mux.HandleFunc("GET /items", s.handleListItems)
	mux.HandleFunc("GET /items/search", s.handleSearchItems)
	mux.HandleFunc("GET /items/{id}", s.handleGetItem)
	mux.HandleFunc("POST /items", s.handleCreateItem)
	mux.HandleFunc("PATCH /items/{id}", s.handleUpdateItem)
	mux.HandleFunc("DELETE /items/{id}", s.handleDeleteItem)
	mux.HandleFunc("POST /items/{id}/comment", s.handleAddComment)

	mux.HandleFunc("GET /bookings", s.handleListBookings)
	mux.HandleFunc("GET /bookings/owner", s.handleListOwnerBookings)
	mux.HandleFunc("GET /bookings/owner/export", s.handleExportOwnerBookings)
	mux.HandleFunc("GET /bookings/{id}", s.handleGetBooking)
	mux.HandleFunc("POST /bookings", s.handleCreateBooking)
	mux.HandleFunc("PATCH /bookings/{id}", s.handleApproveBooking)

	mux.HandleFunc("GET /requests", s.handleListOwnRequests)
	mux.HandleFunc("GET /requests/all", s.handleListOtherRequests)
	mux.HandleFunc("GET /requests/{id}", s.handleGetRequest)
	mux.HandleFunc("POST /requests", s.handleCreateRequest)
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Error().Err(err).Msg("readiness check failed")
		middleware.WriteError(w, http.StatusServiceUnavailable, "storage is not reachable")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
