package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
	authUseCase "github.com/allisson/keyvault/internal/auth/usecase"
	"github.com/allisson/keyvault/internal/httputil"
)

// BootstrapSecretHeader carries the bootstrap secret presented to POST /admin/init.
const BootstrapSecretHeader = "X-Bootstrap-Secret" //nolint:gosec // header name, not a credential

// InitAdminResponse is the body of a successful POST /admin/init.
type InitAdminResponse struct {
	AdminToken string     `json:"admin_token"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Message    string     `json:"message"`
}

// InitHandler handles admin bootstrap requests.
type InitHandler struct {
	adminTokenUseCase authUseCase.AdminTokenUseCase
	logger            *slog.Logger
}

// NewInitHandler creates a new InitHandler.
func NewInitHandler(adminTokenUseCase authUseCase.AdminTokenUseCase, logger *slog.Logger) *InitHandler {
	return &InitHandler{
		adminTokenUseCase: adminTokenUseCase,
		logger:            logger,
	}
}

// InitHandler issues an admin token.
// POST /admin/init - Optional X-Bootstrap-Secret header.
// Returns 201 Created with the plain token, which is never shown again.
func (h *InitHandler) InitHandler(c *gin.Context) {
	output, err := h.adminTokenUseCase.Init(c.Request.Context(), &authDomain.InitAdminInput{
		BootstrapSecret: c.GetHeader(BootstrapSecretHeader),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("admin token issued")

	c.JSON(http.StatusCreated, InitAdminResponse{
		AdminToken: output.PlainToken,
		ExpiresAt:  output.ExpiresAt,
		Message:    "Save this token securely! You'll need it for all admin operations.",
	})
}
