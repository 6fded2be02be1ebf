// Package service provides the credential primitives behind admin bootstrap, admin token checks
// and caller authentication.
package service

import (
	"context"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
)

// SecretService generates and verifies bootstrap secrets. Hashes use Argon2id in PHC format.
type SecretService interface {
	// GenerateSecret returns a fresh random secret and its hash. The plain secret is shown once
	// to the operator; only the hash goes into ADMIN_BOOTSTRAP_SECRET_HASH.
	GenerateSecret() (plainSecret string, hashedSecret string, err error)

	// HashSecret hashes an operator-chosen secret.
	HashSecret(plainSecret string) (hashedSecret string, err error)

	// CompareSecret reports whether plainSecret matches hashedSecret in constant time.
	// A malformed hash never matches.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// TokenService generates admin tokens and derives the lookup hash of presented tokens.
type TokenService interface {
	// GenerateToken returns a random plain token and its SHA-256 hash.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a plain token. The same input always yields the same hash.
	HashToken(plainToken string) string
}

// CallerAuthenticator authenticates the requester of a secret release. The identity it returns
// is the one matched against a record's allowed callers.
type CallerAuthenticator interface {
	Authenticate(ctx context.Context, identity, signature string) (*authDomain.Caller, error)
}
