package service

import (
	"context"
	"strings"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
	"github.com/allisson/keyvault/internal/validation"
)

// headerCallerAuthenticator accepts any caller that presents both an identity and a signature.
// The signature is not verified cryptographically; deployments that need proof of control plug in
// their own CallerAuthenticator.
type headerCallerAuthenticator struct{}

// Authenticate returns the caller for identity when both credentials are present and the identity
// is well formed.
func (h *headerCallerAuthenticator) Authenticate(
	ctx context.Context,
	identity, signature string,
) (*authDomain.Caller, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	identity = strings.TrimSpace(identity)
	if identity == "" || strings.TrimSpace(signature) == "" {
		return nil, authDomain.ErrMissingCallerCredentials
	}
	if err := validation.CallerIdentity.Validate(identity); err != nil {
		return nil, authDomain.ErrMissingCallerCredentials
	}

	return &authDomain.Caller{Identity: identity}, nil
}

// NewHeaderCallerAuthenticator creates a CallerAuthenticator that trusts presented headers.
func NewHeaderCallerAuthenticator() CallerAuthenticator {
	return &headerCallerAuthenticator{}
}
