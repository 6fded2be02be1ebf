package commands

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("backups-disabled", func(t *testing.T) {
		err := RunMigrations(logger, "", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "DB_DRIVER is not set")
	})

	t.Run("unsupported-driver", func(t *testing.T) {
		err := RunMigrations(logger, "sqlite", "file:test.db")
		require.Error(t, err)
		require.Contains(t, err.Error(), `unsupported database driver "sqlite"`)
	})

	t.Run("invalid-connection-string", func(t *testing.T) {
		err := RunMigrations(logger, "postgres", "invalid-connection-string")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create migrate instance")
	})
}
