package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/allisson/keyvault/internal/app"
	"github.com/allisson/keyvault/internal/config"
)

// RunServer starts the API server and, when enabled, the metrics server. It returns when a
// SIGINT/SIGTERM arrives or either server fails, after stopping both within the shutdown timeout.
// A missing or invalid master key aborts startup before any listener opens.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainerWithVersion(cfg, version)
	logger := container.Logger()
	defer func() {
		if err := container.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown container", slog.Any("error", err))
		}
	}()

	logger.Info("starting keyvault", slog.String("version", version))

	// HTTPServer builds the whole dependency graph, including the CipherBox.
	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	servers := []namedStopper{{name: "api server", srv: server}}
	failed := make(chan error, 2)
	go func() {
		if err := server.Start(ctx); err != nil {
			failed <- fmt.Errorf("api server: %w", err)
		}
	}()
	if metricsServer != nil {
		servers = append(servers, namedStopper{name: "metrics server", srv: metricsServer})
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				failed <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-failed:
		logger.Error("server failed, shutting down", slog.Any("error", runErr))
	}

	return errors.Join(runErr, shutdownAll(cfg.ShutdownTimeout, servers...))
}
