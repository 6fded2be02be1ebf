package domain

import (
	"github.com/allisson/keyvault/internal/errors"
)

// Vault error definitions. Each wraps a standard error from internal/errors so handlers can map
// it to a status code without knowing the vault package.
var (
	// ErrKeyNotFound indicates no key record exists for the given id.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "key not found")

	// ErrServiceNotFound indicates no active key record exists for the requested service.
	ErrServiceNotFound = errors.Wrap(errors.ErrNotFound, "no active key found for this service")

	// ErrCallerNotAuthorized indicates the caller is not on the record's allow-list.
	ErrCallerNotAuthorized = errors.Wrap(errors.ErrForbidden, "contract not authorized to use this key")

	// ErrVaultIntegrity indicates a stored sealed secret failed to open. It points at a master key
	// mismatch or corrupted state and is never retried.
	ErrVaultIntegrity = errors.Wrap(errors.ErrIntegrity, "vault integrity error")

	// ErrServiceNameRequired indicates an empty service name.
	ErrServiceNameRequired = errors.Wrap(errors.ErrInvalidInput, "service_name is required")

	// ErrSecretRequired indicates an empty API key.
	ErrSecretRequired = errors.Wrap(errors.ErrInvalidInput, "api_key is required")

	// ErrInvalidRateLimit indicates a rate limit that is not a positive integer.
	ErrInvalidRateLimit = errors.Wrap(errors.ErrInvalidInput, "rate_limit must be a positive integer")

	// ErrCallerIdentityRequired indicates a release request without a caller identity.
	ErrCallerIdentityRequired = errors.Wrap(errors.ErrInvalidInput, "caller identity is required")

	// ErrInvalidSnapshot indicates an import payload that cannot be restored.
	ErrInvalidSnapshot = errors.Wrap(errors.ErrInvalidInput, "invalid snapshot")

	// ErrBackupNotFound indicates no stored backup exists for the given id.
	ErrBackupNotFound = errors.Wrap(errors.ErrNotFound, "backup not found")

	// ErrBackupsDisabled indicates the backup store is not configured.
	ErrBackupsDisabled = errors.Wrap(errors.ErrNotFound, "backups are not enabled")
)

// NewRateLimitError builds the denial returned when a record's window is full.
func NewRateLimitError(admission Admission) error {
	return &errors.RateLimitError{
		Limit:      admission.RateLimit,
		Window:     RateWindow,
		RetryAfter: admission.RetryAfter,
	}
}
