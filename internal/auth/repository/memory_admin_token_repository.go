// Package repository provides admin token storage.
package repository

import (
	"context"
	"sync"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
)

// MemoryAdminTokenRepository keeps admin tokens in process memory, indexed by token hash.
// Tokens live exactly as long as the vault contents they guard.
type MemoryAdminTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*authDomain.AdminToken
}

// Create stores token.
func (m *MemoryAdminTokenRepository) Create(ctx context.Context, token *authDomain.AdminToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[token.TokenHash] = cloneAdminToken(token)
	return nil
}

// CreateFirst stores token only when no token was ever stored. Returns ErrAdminAlreadyInitialized
// otherwise. The check and the insert happen under one lock.
func (m *MemoryAdminTokenRepository) CreateFirst(ctx context.Context, token *authDomain.AdminToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tokens) > 0 {
		return authDomain.ErrAdminAlreadyInitialized
	}
	m.tokens[token.TokenHash] = cloneAdminToken(token)
	return nil
}

// GetByTokenHash returns the token with the given hash or ErrAdminTokenNotFound.
func (m *MemoryAdminTokenRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*authDomain.AdminToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok := m.tokens[tokenHash]
	if !ok {
		return nil, authDomain.ErrAdminTokenNotFound
	}
	return cloneAdminToken(token), nil
}

// Count returns the number of stored tokens.
func (m *MemoryAdminTokenRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.tokens), nil
}

func cloneAdminToken(token *authDomain.AdminToken) *authDomain.AdminToken {
	clone := *token
	if token.ExpiresAt != nil {
		expiresAt := *token.ExpiresAt
		clone.ExpiresAt = &expiresAt
	}
	return &clone
}

// NewMemoryAdminTokenRepository creates an empty repository.
func NewMemoryAdminTokenRepository() *MemoryAdminTokenRepository {
	return &MemoryAdminTokenRepository{
		tokens: make(map[string]*authDomain.AdminToken),
	}
}
