package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/keyvault/internal/httputil"
	"github.com/allisson/keyvault/internal/vault/http/dto"
	vaultUseCase "github.com/allisson/keyvault/internal/vault/usecase"
)

// BackupHandler handles admin HTTP requests for stored snapshots.
type BackupHandler struct {
	backupUseCase vaultUseCase.BackupUseCase
	logger        *slog.Logger
}

// NewBackupHandler creates a new backup handler.
func NewBackupHandler(useCase vaultUseCase.BackupUseCase, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{
		backupUseCase: useCase,
		logger:        logger,
	}
}

// CreateHandler stores a snapshot of the current registry.
// POST /admin/backups
func (h *BackupHandler) CreateHandler(c *gin.Context) {
	backup, err := h.backupUseCase.Create(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapBackupToResponse(backup))
}

// ListHandler lists stored snapshots, newest first.
// GET /admin/backups?offset=0&limit=20
func (h *BackupHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	backups, err := h.backupUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapBackupsToListResponse(backups))
}

// RestoreHandler replaces the registry with a stored snapshot.
// POST /admin/backups/:id/restore
func (h *BackupHandler) RestoreHandler(c *gin.Context) {
	backupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid backup id: %w", err), h.logger)
		return
	}

	imported, err := h.backupUseCase.Restore(c.Request.Context(), backupID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewImportResponse(imported))
}
