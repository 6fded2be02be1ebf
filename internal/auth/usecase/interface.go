// Package usecase implements admin bootstrap and admin token authentication.
package usecase

import (
	"context"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
)

// AdminTokenRepository defines storage for issued admin tokens.
type AdminTokenRepository interface {
	// Create stores a token unconditionally.
	Create(ctx context.Context, token *authDomain.AdminToken) error

	// CreateFirst stores a token only if none exists yet. Returns ErrAdminAlreadyInitialized
	// otherwise.
	CreateFirst(ctx context.Context, token *authDomain.AdminToken) error

	// GetByTokenHash returns the token with the given hash. Returns ErrAdminTokenNotFound if
	// no token matches.
	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.AdminToken, error)
}

// AdminTokenUseCase defines the admin capability lifecycle.
type AdminTokenUseCase interface {
	// Init issues an admin token and returns its plain value exactly once.
	//
	// Without a configured bootstrap secret hash only the first call succeeds; later calls fail
	// with ErrAdminAlreadyInitialized. With one, every call presenting a matching bootstrap
	// secret issues a fresh token and a mismatch fails with ErrInvalidBootstrapSecret.
	Init(ctx context.Context, input *authDomain.InitAdminInput) (*authDomain.InitAdminOutput, error)

	// Authenticate resolves the token with the given SHA-256 hash. Unknown and expired tokens
	// both fail with ErrInvalidAdminToken.
	Authenticate(ctx context.Context, tokenHash string) (*authDomain.AdminToken, error)
}
