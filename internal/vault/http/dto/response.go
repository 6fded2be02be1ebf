package dto

import (
	"time"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// CreateKeyResponse acknowledges a stored key. It never echoes the secret.
type CreateKeyResponse struct {
	KeyID       string `json:"key_id"`
	ServiceName string `json:"service_name"`
	Message     string `json:"message"`
}

// MapKeyRecordToCreateResponse converts a created record to its response.
func MapKeyRecordToCreateResponse(record *vaultDomain.KeyRecord) CreateKeyResponse {
	return CreateKeyResponse{
		KeyID:       record.ID,
		ServiceName: record.ServiceName,
		Message:     "API key stored securely",
	}
}

// KeySummaryResponse is one entry of the key listing.
type KeySummaryResponse struct {
	KeyID            string     `json:"key_id"`
	ServiceName      string     `json:"service_name"`
	Description      string     `json:"description"`
	AllowedContracts []string   `json:"allowed_contracts"`
	RateLimit        int        `json:"rate_limit"`
	Active           bool       `json:"active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	RotatedAt        *time.Time `json:"rotated_at,omitempty"`
	TotalCalls       int64      `json:"total_calls"`
	RateLimitHits    int64      `json:"rate_limit_hits"`
	LastUsed         *time.Time `json:"last_used"`
}

// ListKeysResponse wraps the key listing.
type ListKeysResponse struct {
	Keys []KeySummaryResponse `json:"keys"`
}

// MapSummariesToListResponse converts record summaries to the listing response.
func MapSummariesToListResponse(summaries []*vaultDomain.KeyRecordSummary) ListKeysResponse {
	keys := make([]KeySummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		allowed := summary.AllowedCallers
		if allowed == nil {
			allowed = []string{}
		}
		keys = append(keys, KeySummaryResponse{
			KeyID:            summary.ID,
			ServiceName:      summary.ServiceName,
			Description:      summary.Description,
			AllowedContracts: allowed,
			RateLimit:        summary.RateLimit,
			Active:           summary.Active,
			CreatedAt:        summary.CreatedAt,
			UpdatedAt:        summary.UpdatedAt,
			RotatedAt:        summary.RotatedAt,
			TotalCalls:       summary.TotalCalls,
			RateLimitHits:    summary.RateLimitHits,
			LastUsed:         summary.LastUsed,
		})
	}
	return ListKeysResponse{Keys: keys}
}

// UpdateKeyResponse acknowledges an update.
type UpdateKeyResponse struct {
	KeyID   string `json:"key_id"`
	Message string `json:"message"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// RotateKeyResponse acknowledges a rotation with a bounded preview of the replaced key.
type RotateKeyResponse struct {
	KeyID         string    `json:"key_id"`
	Message       string    `json:"message"`
	OldKeyPreview string    `json:"old_key_preview"`
	RotatedAt     time.Time `json:"rotated_at"`
}

// MapRotationToResponse converts a rotation result to its response.
func MapRotationToResponse(result *vaultDomain.RotationResult) RotateKeyResponse {
	return RotateKeyResponse{
		KeyID:         result.KeyID,
		Message:       "Key rotated successfully",
		OldKeyPreview: result.OldKeyPreview,
		RotatedAt:     result.RotatedAt,
	}
}

// UsageResponse reports a key's usage.
type UsageResponse struct {
	KeyID         string     `json:"key_id"`
	TotalCalls    int64      `json:"total_calls"`
	CallsLastHour int        `json:"calls_last_hour"`
	LastUsed      *time.Time `json:"last_used"`
	RateLimitHits int64      `json:"rate_limit_hits"`
	RateLimit     int        `json:"rate_limit"`
	Active        bool       `json:"active"`
}

// MapUsageToResponse converts usage stats to their response.
func MapUsageToResponse(stats *vaultDomain.UsageStats) UsageResponse {
	return UsageResponse{
		KeyID:         stats.KeyID,
		TotalCalls:    stats.TotalCalls,
		CallsLastHour: stats.CallsLastHour,
		LastUsed:      stats.LastUsed,
		RateLimitHits: stats.RateLimitHits,
		RateLimit:     stats.RateLimit,
		Active:        stats.Active,
	}
}

// GetKeyResponse carries a released credential.
// SECURITY: APIKey is plaintext. Must be transmitted over HTTPS in production.
type GetKeyResponse struct {
	APIKey         string `json:"api_key"`
	ServiceName    string `json:"service_name"`
	RateLimit      int    `json:"rate_limit"`
	CallsRemaining int    `json:"calls_remaining"`
}

// MapReleaseToResponse converts a release to its response. The caller must zero release.Secret
// after mapping using cryptoDomain.Zero(release.Secret).
func MapReleaseToResponse(release *vaultDomain.Release) GetKeyResponse {
	return GetKeyResponse{
		APIKey:         string(release.Secret),
		ServiceName:    release.ServiceName,
		RateLimit:      release.RateLimit,
		CallsRemaining: release.Remaining,
	}
}

// ImportResponse acknowledges an import or restore.
type ImportResponse struct {
	Message      string `json:"message"`
	KeysImported int    `json:"keys_imported"`
	Warning      string `json:"warning"`
}

// NewImportResponse builds the acknowledgement for a full-replace import.
func NewImportResponse(keysImported int) ImportResponse {
	return ImportResponse{
		Message:      "Vault imported successfully",
		KeysImported: keysImported,
		Warning:      "The previous vault contents were replaced. Imported keys only open under the master key that sealed them.",
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	TotalKeys  int    `json:"total_keys"`
	ActiveKeys int    `json:"active_keys"`
}

// BackupResponse describes a stored backup. It never includes the payload.
type BackupResponse struct {
	ID        string    `json:"id"`
	KeyCount  int       `json:"key_count"`
	CreatedAt time.Time `json:"created_at"`
}

// MapBackupToResponse converts a backup to its response.
func MapBackupToResponse(backup *vaultDomain.Backup) BackupResponse {
	return BackupResponse{
		ID:        backup.ID.String(),
		KeyCount:  backup.KeyCount,
		CreatedAt: backup.CreatedAt,
	}
}

// ListBackupsResponse wraps a page of backups.
type ListBackupsResponse struct {
	Data []BackupResponse `json:"data"`
}

// MapBackupsToListResponse converts backups to the listing response.
func MapBackupsToListResponse(backups []*vaultDomain.Backup) ListBackupsResponse {
	data := make([]BackupResponse, 0, len(backups))
	for _, backup := range backups {
		data = append(data, MapBackupToResponse(backup))
	}
	return ListBackupsResponse{Data: data}
}
