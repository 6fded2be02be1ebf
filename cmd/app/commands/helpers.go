// Package commands implements the keyvault CLI subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
)

// Stdout is where commands print their results. Tests swap it for a buffer.
var Stdout io.Writer = os.Stdout

// stopper is a server that can be shut down gracefully.
type stopper interface {
	Shutdown(ctx context.Context) error
}

type namedStopper struct {
	name string
	srv  stopper
}

// shutdownAll stops every server within timeout and joins their errors.
func shutdownAll(timeout time.Duration, servers ...namedStopper) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, s := range servers {
		if s.srv == nil {
			continue
		}
		if err := s.srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s shutdown: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		logger.Error("failed to close migrate",
			slog.Any("source_error", srcErr),
			slog.Any("database_error", dbErr),
		)
	}
}
