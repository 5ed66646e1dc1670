package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shareit/internal/config"

	"github.com/rs/zerolog"
)

// BackupService writes periodic SQLite snapshots with VACUUM INTO.
type BackupService struct {
	db     *DB
	config config.BackupConfig
	logger *zerolog.Logger
	now    func() time.Time
}

func NewBackupService(db *DB, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	l := logger.With().Str("component", "backup").Logger()
	return &BackupService{
		db:     db,
		config: cfg,
		logger: &l,
		now:    time.Now,
	}
}

// Start blocks until ctx is done. It is a no-op when backups are disabled or the engine is not SQLite.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("backup service is disabled")
		return
	}
	if s.db.Engine() != config.DriverSQLite {
		s.logger.Warn().Str("driver", s.db.Engine()).Msg("backups are only supported for sqlite3")
		return
	}

	interval := 24 * time.Hour
	if s.config.Schedule != "" {
		if d, err := time.ParseDuration(s.config.Schedule); err == nil && d > 0 {
			interval = d
		} else {
			s.logger.Warn().Str("schedule", s.config.Schedule).Msg("failed to parse backup schedule, using default 24h")
		}
	}
	s.logger.Info().Dur("interval", interval).Msg("backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PerformBackup(ctx); err != nil {
				s.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup writes one snapshot and returns its path.
func (s *BackupService) PerformBackup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath := filepath.Join(s.config.StoragePath,
		fmt.Sprintf("shareit_%s.db", s.now().Format("20060102_150405")))

	escaped := strings.ReplaceAll(backupPath, "'", "''")
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", escaped)); err != nil {
		return "", fmt.Errorf("failed to vacuum into %s: %w", backupPath, err)
	}

	s.logger.Info().Str("path", backupPath).Msg("backup completed")
	return backupPath, nil
}

// CleanupOldBackups removes snapshots older than the retention window.
func (s *BackupService) CleanupOldBackups() {
	if s.config.RetentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read backup directory for cleanup")
		return
	}

	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)
	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), "shareit_") {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("deleting old backup")
			_ = os.Remove(filepath.Join(s.config.StoragePath, file.Name()))
		}
	}
}
