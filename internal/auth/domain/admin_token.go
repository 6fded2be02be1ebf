// Package domain defines the admin capability and caller identity models.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminToken is an issued admin capability. Only the SHA-256 hash of the plain token is kept.
type AdminToken struct {
	ID        uuid.UUID
	TokenHash string
	// ExpiresAt is nil for tokens that never expire.
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the token is no longer valid at now.
func (t *AdminToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// InitAdminInput carries the bootstrap request. BootstrapSecret is empty when no bootstrap
// secret was presented.
type InitAdminInput struct {
	BootstrapSecret string
}

// InitAdminOutput holds the plain admin token. It is returned exactly once.
type InitAdminOutput struct {
	PlainToken string
	ExpiresAt  *time.Time
}

// Caller is the authenticated identity of a release requester (e.g. a contract address).
type Caller struct {
	Identity string
}
