package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/keyvault/internal/httputil"
	"github.com/allisson/keyvault/internal/vault/http/dto"
	vaultUseCase "github.com/allisson/keyvault/internal/vault/usecase"
)

// HealthHandler reports liveness together with registry counts.
type HealthHandler struct {
	vaultUseCase vaultUseCase.VaultUseCase
	version      string
	logger       *slog.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(useCase vaultUseCase.VaultUseCase, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		vaultUseCase: useCase,
		version:      version,
		logger:       logger,
	}
}

// HealthHandler answers GET /health. It never reveals secrets.
func (h *HealthHandler) HealthHandler(c *gin.Context) {
	status, err := h.vaultUseCase.Status(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:     "healthy",
		Version:    h.version,
		TotalKeys:  status.TotalKeys,
		ActiveKeys: status.ActiveKeys,
	})
}
