package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"
	"shareit/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	repo, db, err := initStorage(cfg, &logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	eventBus := events.NewEventBus()
	events.SubscribeBookingAudit(eventBus, &logger)

	bookings := service.NewBookingService(repo, eventBus, &logger)
	services := api.Services{
		Users:    service.NewUserService(repo, &logger),
		Items:    service.NewItemService(repo, bookings, &logger),
		Bookings: bookings,
		Requests: service.NewRequestService(repo, &logger),
	}

	grpcServer, err := api.NewGRPCServer(&cfg.API, repo, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("create grpc server")
		return err
	}

	httpServer := api.NewHTTPServer(cfg.API, repo, services, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)

	if db != nil {
		backup := database.NewBackupService(db, cfg.Backup, &logger)
		go backup.Start(ctx)
	}

	return startServers(ctx, grpcServer, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App, "server")
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "server-main").Logger()

	return cfg, logger, closer, nil
}

// initStorage returns the SQL handle as well when the store is relational.
func initStorage(cfg *config.Config, logger *zerolog.Logger) (domain.Repository, *database.DB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn().Msg("using in-memory storage, data is lost on restart")
		return repository.NewMemoryRepository(), nil, nil
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
		return nil, nil, err
	}
	return db, db, nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(ctx context.Context, grpcServer *api.GRPCServer, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := grpcServer.Serve(); err != nil {
			logger.Error().Err(err).Msg("grpc server stopped")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := grpcServer.CheckStorage(pingCtx); err != nil {
		logger.Warn().Err(err).Msg("storage is not ready")
	}
	cancel()

	logger.Info().Str("grpc_addr", grpcServer.Addr()).Str("http_addr", httpServer.Addr()).Msg("ShareIt server started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("http server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.Shutdown(shutdownCtx)
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("ShareIt server stopped")
	return runErr
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
