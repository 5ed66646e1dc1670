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

	"shareit/internal/config"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
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

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	client := gateway.NewServerClient(cfg.Gateway.ServerURL, cfg.Gateway.Timeout,
		gateway.RetryPolicyFromConfig(cfg.Gateway.Retry), &logger)
	gw := gateway.New(cfg.Gateway, client, initCache(cfg, redisClient, &logger), &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Gateway.MetricsPort, &logger)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- gw.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("gateway stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = gw.Shutdown(shutdownCtx)

	logger.Info().Msg("gateway stopped")
	return runErr
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

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App, "gateway")
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "gateway-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory cache")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return client
}

// initCache returns nil when caching is disabled.
func initCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) repository.ResponseCache {
	if cfg.Gateway.CacheTTL <= 0 {
		return nil
	}

	memory := repository.NewMemoryResponseCache(cfg.Gateway.CacheTTL)
	if redisClient == nil {
		return memory
	}
	cacheLogger := logger.With().Str("component", "response_cache").Logger()
	return repository.NewFailoverResponseCache(
		repository.NewRedisResponseCache(redisClient, cfg.Gateway.CacheTTL),
		memory,
		&cacheLogger,
	)
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
