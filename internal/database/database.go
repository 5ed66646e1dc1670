package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shareit/internal/config"
	"shareit/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is the SQL implementation of domain.Repository for SQLite and MySQL.
type DB struct {
	*sql.DB
	q      querier
	inTx   bool
	driver string
	logger *zerolog.Logger
}

var _ domain.Repository = (*DB)(nil)

// Open connects to the configured engine and creates the schema.
func Open(cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return NewDB(cfg.Path, logger)
	case config.DriverMySQL:
		return NewMySQL(cfg.DSN, cfg.MaxOpenConns, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewDB opens (or creates) a SQLite database file. ":memory:" is accepted for tests.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		// Создаем директорию для БД, если её нет
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open(config.DriverSQLite, path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite пишет в один поток; одно соединение также сохраняет ":memory:" между запросами.
	sqlDB.SetMaxOpenConns(1)

	return initDB(sqlDB, config.DriverSQLite, logger)
}

// NewMySQL connects to a MySQL server using a go-sql-driver DSN.
func NewMySQL(dsn string, maxOpenConns int, logger *zerolog.Logger) (*DB, error) {
	mysqlCfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mysql dsn: %w", err)
	}
	// UPDATE без изменений должен считаться найденной строкой
	mysqlCfg.ClientFoundRows = true

	sqlDB, err := sql.Open(config.DriverMySQL, mysqlCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(maxOpenConns)
	}

	return initDB(sqlDB, config.DriverMySQL, logger)
}

func initDB(sqlDB *sql.DB, driver string, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(sqlDB, driver); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("driver", driver).Msg("database initialized")
	return &DB{DB: sqlDB, q: sqlDB, driver: driver, logger: logger}, nil
}

func createTables(db *sql.DB, driver string) error {
	queries := sqliteSchema
	if driver == config.DriverMySQL {
		queries = mysqlSchema
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		available BOOLEAN NOT NULL DEFAULT 1,
		host_id INTEGER NOT NULL,
		request_id INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_at INTEGER NOT NULL,
		end_at INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'WAITING',
		booker_id INTEGER NOT NULL,
		item_id INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		item_id INTEGER NOT NULL,
		author_id INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		user_id INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS request_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id INTEGER NOT NULL,
		item_id INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
	`CREATE INDEX IF NOT EXISTS idx_items_host_id ON items(host_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_booker_id ON bookings(booker_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_item_id ON bookings(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_item_id ON comments(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_user_id ON requests(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_request_items_request_id ON request_items(request_id)`,
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes are declared inline.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		UNIQUE KEY idx_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description VARCHAR(255) NOT NULL,
		available BOOLEAN NOT NULL DEFAULT TRUE,
		host_id BIGINT NOT NULL,
		request_id BIGINT NULL,
		KEY idx_items_host_id (host_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		start_at BIGINT NOT NULL,
		end_at BIGINT NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'WAITING',
		booker_id BIGINT NOT NULL,
		item_id BIGINT NOT NULL,
		KEY idx_bookings_booker_id (booker_id),
		KEY idx_bookings_item_id (item_id),
		KEY idx_bookings_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		text TEXT NOT NULL,
		item_id BIGINT NOT NULL,
		author_id BIGINT NOT NULL,
		created_at BIGINT NOT NULL,
		KEY idx_comments_item_id (item_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS requests (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		description VARCHAR(255) NOT NULL,
		user_id BIGINT NOT NULL,
		created_at BIGINT NOT NULL,
		KEY idx_requests_user_id (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS request_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		request_id BIGINT NOT NULL,
		item_id BIGINT NOT NULL,
		created_at BIGINT NOT NULL,
		KEY idx_request_items_request_id (request_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Engine returns the driver name ("sqlite3" or "mysql").
func (db *DB) Engine() string {
	return db.driver
}

func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// WithinTx runs fn inside one transaction. Nested calls reuse the outer one.
func (db *DB) WithinTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	if db.inTx {
		return fn(db)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	txDB := &DB{DB: db.DB, q: tx, inTx: true, driver: db.driver, logger: db.logger}
	if err := fn(txDB); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// likePattern builds a case-insensitive substring pattern escaped with '!'.
func likePattern(text string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(text)) + "%"
}

// inClause returns "?, ?, ?" for n placeholders.
func inClause(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
