// Package http provides the HTTP server, router and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/keyvault/internal/auth/http"
	authService "github.com/allisson/keyvault/internal/auth/service"
	authUseCase "github.com/allisson/keyvault/internal/auth/usecase"
	"github.com/allisson/keyvault/internal/config"
	"github.com/allisson/keyvault/internal/metrics"
	vaultHTTP "github.com/allisson/keyvault/internal/vault/http"
)

// limiterEvictionInterval controls how often idle rate limiters are dropped.
const limiterEvictionInterval = time.Minute

// Server represents the HTTP API server.
type Server struct {
	db       *sql.DB
	server   *http.Server
	logger   *slog.Logger
	router   *gin.Engine
	limiters []*authHTTP.RateLimiterStore

	runCtx    context.Context
	runCancel context.CancelFunc
}

// NewServer creates a new HTTP server. db may be nil when no backup store is configured.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	runCtx, runCancel := context.WithCancel(context.Background())
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		runCtx:    runCtx,
		runCancel: runCancel,
	}
}

// SetupRouter configures the Gin router with all routes and middleware.
// backupHandler may be nil, in which case the backup routes are not registered.
func (s *Server) SetupRouter(
	cfg *config.Config,
	keyHandler *vaultHTTP.KeyHandler,
	contractHandler *vaultHTTP.ContractHandler,
	healthHandler *vaultHTTP.HealthHandler,
	backupHandler *vaultHTTP.BackupHandler,
	initHandler *authHTTP.InitHandler,
	adminTokenUseCase authUseCase.AdminTokenUseCase,
	tokenService authService.TokenService,
	callerAuthenticator authService.CallerAuthenticator,
	metricsProvider *metrics.Provider,
	metricsNamespace string,
) {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsNamespace))
	}

	router.GET("/health", healthHandler.HealthHandler)
	router.GET("/ready", s.readinessHandler)

	var ipLimiter gin.HandlerFunc
	if cfg.ContractRateLimitEnabled {
		store := authHTTP.NewRateLimiterStore(cfg.ContractRateLimitRequestsPerSec, cfg.ContractRateLimitBurst)
		s.limiters = append(s.limiters, store)
		ipLimiter = authHTTP.RateLimitMiddleware(store, authHTTP.ClientIPKey, s.logger)
	}

	admin := router.Group("/admin")
	{
		// Bootstrap is unauthenticated, so it shares the per-IP throttle.
		if ipLimiter != nil {
			admin.POST("/init", ipLimiter, initHandler.InitHandler)
		} else {
			admin.POST("/init", initHandler.InitHandler)
		}

		authed := admin.Group("")
		authed.Use(authHTTP.AdminAuthMiddleware(adminTokenUseCase, tokenService, s.logger))
		if cfg.RateLimitEnabled {
			store := authHTTP.NewRateLimiterStore(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst)
			s.limiters = append(s.limiters, store)
			authed.Use(authHTTP.RateLimitMiddleware(store, authHTTP.AdminTokenKey, s.logger))
		}

		authed.POST("/keys", keyHandler.CreateHandler)
		authed.GET("/keys", keyHandler.ListHandler)
		authed.PUT("/keys/:id", keyHandler.UpdateHandler)
		authed.DELETE("/keys/:id", keyHandler.DeleteHandler)
		authed.POST("/keys/:id/rotate", keyHandler.RotateHandler)
		authed.GET("/usage/:id", keyHandler.UsageHandler)
		authed.GET("/export", keyHandler.ExportHandler)
		authed.POST("/import", keyHandler.ImportHandler)

		if backupHandler != nil {
			backups := authed.Group("/backups")
			{
				backups.POST("", backupHandler.CreateHandler)
				backups.GET("", backupHandler.ListHandler)
				backups.POST("/:id/restore", backupHandler.RestoreHandler)
			}
		}
	}

	contract := router.Group("/contract")
	{
		if ipLimiter != nil {
			contract.Use(ipLimiter)
		}
		contract.Use(authHTTP.CallerAuthMiddleware(callerAuthenticator, s.logger))
		contract.POST("/get-key", contractHandler.GetKeyHandler)
	}

	s.router = router
	s.server.Handler = router
}

// GetHandler returns the configured router, or nil before SetupRouter runs.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// readinessHandler reports whether the server can take traffic. The vault itself is in memory, so
// only the optional backup database is probed.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"vault": "ok"}

	if s.db == nil {
		components["database"] = "disabled"
		c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	components["database"] = "ok"
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// Start starts the HTTP server and the rate limiter janitors. It blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	if s.server.Handler == nil {
		return fmt.Errorf("router not configured: call SetupRouter before Start")
	}

	for _, store := range s.limiters {
		go store.Run(s.runCtx, limiterEvictionInterval)
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server and stops background janitors.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	s.runCancel()
	return s.server.Shutdown(ctx)
}
