package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Gateway    GatewayConfig    `yaml:"gateway"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	Path         string `yaml:"path"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIGRPCConfig struct {
	Enabled bool         `yaml:"enabled"`
	Port    int          `yaml:"port"`
	TLS     APITLSConfig `yaml:"tls"`
}

type APITLSConfig struct {
	Enabled           bool   `yaml:"enabled"`
	CertFile          string `yaml:"cert_file"`
	KeyFile           string `yaml:"key_file"`
	ClientCAFile      string `yaml:"client_ca_file"`
	RequireClientCert bool   `yaml:"require_client_cert"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type GatewayConfig struct {
	Port        int                `yaml:"port"`
	MetricsPort int                `yaml:"metrics_port"`
	ServerURL   string             `yaml:"server_url"`
	Timeout     time.Duration      `yaml:"timeout"`
	CacheTTL    time.Duration      `yaml:"cache_ttl"`
	Retry       RetryConfig        `yaml:"retry"`
	RateLimit   APIRateLimitConfig `yaml:"rate_limit"`
}

type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required for sqlite3")
		}
	case DriverMySQL:
		if c.Database.DSN == "" {
			return errors.New("database dsn is required for mysql")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	u, err := url.Parse(c.Gateway.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("gateway server_url must be an absolute URL, got %q", c.Gateway.ServerURL)
	}

	if c.API.GRPC.TLS.Enabled && (c.API.GRPC.TLS.CertFile == "" || c.API.GRPC.TLS.KeyFile == "") {
		return errors.New("grpc tls enabled but cert_file/key_file not set")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		c.Database.Path = "data/shareit.db"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 9090
	}
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 9091
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9100
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}

	// Gateway defaults
	if c.Gateway.Port == 0 {
		c.Gateway.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Gateway.MetricsPort == 0 {
		c.Gateway.MetricsPort = c.Monitoring.PrometheusPort + 1
	}
	if c.Gateway.ServerURL == "" {
		c.Gateway.ServerURL = fmt.Sprintf("http://localhost:%d", c.API.HTTP.Port)
	}
	if c.Gateway.Timeout == 0 {
		c.Gateway.Timeout = 10 * time.Second
	}
	if c.Gateway.Retry.InitialDelay == 0 {
		c.Gateway.Retry.InitialDelay = 200 * time.Millisecond
	}
	if c.Gateway.Retry.MaxDelay == 0 {
		c.Gateway.Retry.MaxDelay = 2 * time.Second
	}
	if c.Gateway.Retry.BackoffFactor == 0 {
		c.Gateway.Retry.BackoffFactor = 2
	}
}
