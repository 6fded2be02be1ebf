// Package http provides HTTP handlers for the vault: key administration, credential release to
// authenticated callers, backups and health.
package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/keyvault/internal/httputil"
	customValidation "github.com/allisson/keyvault/internal/validation"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
	"github.com/allisson/keyvault/internal/vault/http/dto"
	vaultUseCase "github.com/allisson/keyvault/internal/vault/usecase"
)

// KeyHandler handles admin HTTP requests for key records.
type KeyHandler struct {
	vaultUseCase     vaultUseCase.VaultUseCase
	defaultRateLimit int
	logger           *slog.Logger
}

// NewKeyHandler creates a new key handler. defaultRateLimit applies to create requests that omit
// rate_limit.
func NewKeyHandler(
	useCase vaultUseCase.VaultUseCase,
	defaultRateLimit int,
	logger *slog.Logger,
) *KeyHandler {
	return &KeyHandler{
		vaultUseCase:     useCase,
		defaultRateLimit: defaultRateLimit,
		logger:           logger,
	}
}

// CreateHandler stores a new API key.
// POST /admin/keys
// Returns 201 Created with the key id. The secret is never echoed.
func (h *KeyHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	record, err := h.vaultUseCase.Create(c.Request.Context(), req.ToDomain(h.defaultRateLimit))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapKeyRecordToCreateResponse(record))
}

// ListHandler lists every key with its usage totals.
// GET /admin/keys
func (h *KeyHandler) ListHandler(c *gin.Context) {
	summaries, err := h.vaultUseCase.List(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSummariesToListResponse(summaries))
}

// UpdateHandler applies optional changes to a key.
// PUT /admin/keys/:id
func (h *KeyHandler) UpdateHandler(c *gin.Context) {
	keyID := c.Param("id")

	var req dto.UpdateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	record, err := h.vaultUseCase.Update(c.Request.Context(), keyID, req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.UpdateKeyResponse{
		KeyID:   record.ID,
		Message: "Key updated successfully",
	})
}

// DeleteHandler removes a key and its usage history.
// DELETE /admin/keys/:id
func (h *KeyHandler) DeleteHandler(c *gin.Context) {
	if err := h.vaultUseCase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Key deleted successfully"})
}

// RotateHandler replaces a key's secret.
// POST /admin/keys/:id/rotate - new_api_key in the JSON body or the query string.
// Returns 200 OK with a bounded preview of the replaced secret.
func (h *KeyHandler) RotateHandler(c *gin.Context) {
	var req dto.RotateKeyRequest
	// An empty body, chunked or not, falls back to the query string.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if req.NewAPIKey == "" {
		req.NewAPIKey = c.Query("new_api_key")
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.vaultUseCase.Rotate(c.Request.Context(), c.Param("id"), []byte(req.NewAPIKey))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRotationToResponse(result))
}

// UsageHandler reports a key's usage.
// GET /admin/usage/:id
func (h *KeyHandler) UsageHandler(c *gin.Context) {
	stats, err := h.vaultUseCase.Usage(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUsageToResponse(stats))
}

// ExportHandler returns the whole registry with sealed secrets only.
// GET /admin/export
func (h *KeyHandler) ExportHandler(c *gin.Context) {
	snapshot, err := h.vaultUseCase.Export(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ImportHandler replaces the whole registry with an exported snapshot.
// POST /admin/import
func (h *KeyHandler) ImportHandler(c *gin.Context) {
	var snapshot vaultDomain.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid snapshot: %w", err), h.logger)
		return
	}

	imported, err := h.vaultUseCase.Import(c.Request.Context(), &snapshot)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewImportResponse(imported))
}
