package domain

import (
	"github.com/allisson/keyvault/internal/errors"
)

// Authentication errors.
var (
	// ErrInvalidAdminToken indicates the presented admin token is missing, unknown or expired.
	ErrInvalidAdminToken = errors.Wrap(errors.ErrUnauthorized, "invalid admin token")

	// ErrAdminAlreadyInitialized indicates the vault already issued its first admin token and no
	// bootstrap secret is configured to authorize another one.
	ErrAdminAlreadyInitialized = errors.Wrap(errors.ErrConflict, "admin already initialized")

	// ErrInvalidBootstrapSecret indicates the bootstrap secret did not match the configured hash.
	ErrInvalidBootstrapSecret = errors.Wrap(errors.ErrUnauthorized, "invalid bootstrap secret")

	// ErrMissingCallerCredentials indicates the caller identity or signature header is absent.
	ErrMissingCallerCredentials = errors.Wrap(errors.ErrUnauthorized, "missing caller credentials")

	// ErrAdminTokenNotFound indicates no admin token matches the given hash.
	ErrAdminTokenNotFound = errors.Wrap(errors.ErrNotFound, "admin token not found")
)
