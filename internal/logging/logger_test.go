package logging

import (
	"os"
	"path/filepath"
	"testing"

	"shareit/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	appCfg := config.AppConfig{
		Name:        "shareit",
		Environment: "test",
		Version:     "1.0.0",
	}

	t.Run("DefaultStdout", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{}, appCfg, "server")
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.Nil(t, closer)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("Stderr", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{Level: "debug", Output: "stderr"}, appCfg, "gateway")
		require.NoError(t, err)
		assert.Nil(t, closer)
		assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
	})

	t.Run("Console", func(t *testing.T) {
		logger, closer, err := New(config.LoggingConfig{Level: "warn", Format: "console"}, appCfg, "server")
		require.NoError(t, err)
		assert.Nil(t, closer)
		assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	})

	t.Run("File", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "shareit.log")
		logger, closer, err := New(config.LoggingConfig{Level: "info", Output: "file", FilePath: logPath}, appCfg, "server")
		require.NoError(t, err)
		require.NotNil(t, closer)

		logger.Info().Msg("hello")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"binary":"server"`)
		assert.Contains(t, string(data), `"message":"hello"`)
	})

	t.Run("FileMissingPath", func(t *testing.T) {
		_, _, err := New(config.LoggingConfig{Output: "file"}, appCfg, "server")
		assert.Error(t, err)
	})

	t.Run("UnknownOutput", func(t *testing.T) {
		_, _, err := New(config.LoggingConfig{Output: "syslog"}, appCfg, "server")
		assert.Error(t, err)
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		logger, _, err := New(config.LoggingConfig{Level: "invalid"}, appCfg, "server")
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})
}
