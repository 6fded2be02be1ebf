package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/keyvault/internal/auth/http"
	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/httputil"
	customValidation "github.com/allisson/keyvault/internal/validation"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
	"github.com/allisson/keyvault/internal/vault/http/dto"
	vaultUseCase "github.com/allisson/keyvault/internal/vault/usecase"
)

// ContractHandler releases credentials to authenticated callers.
type ContractHandler struct {
	vaultUseCase vaultUseCase.VaultUseCase
	logger       *slog.Logger
}

// NewContractHandler creates a new contract handler.
func NewContractHandler(useCase vaultUseCase.VaultUseCase, logger *slog.Logger) *ContractHandler {
	return &ContractHandler{
		vaultUseCase: useCase,
		logger:       logger,
	}
}

// GetKeyHandler releases the active credential for a service.
// POST /contract/get-key - Requires CallerAuthMiddleware.
// Returns 200 OK with the plaintext key. SECURITY: Plaintext is zeroed after response.
func (h *ContractHandler) GetKeyHandler(c *gin.Context) {
	caller, ok := authHTTP.GetCaller(c.Request.Context())
	if !ok || caller == nil {
		h.logger.Error("get key: no authenticated caller in context")
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.GetKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// The body may name a contract, but only the authenticated one can be served.
	if req.ContractAddress != "" && req.ContractAddress != caller.Identity {
		httputil.HandleErrorGin(c, vaultDomain.ErrCallerNotAuthorized, h.logger)
		return
	}

	release, err := h.vaultUseCase.Release(c.Request.Context(), req.ServiceName, caller.Identity)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// SECURITY: Zero plaintext after mapping to response
	defer cryptoDomain.Zero(release.Secret)

	c.JSON(http.StatusOK, dto.MapReleaseToResponse(release))
}
