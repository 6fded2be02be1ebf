// Package domain defines the vault's key records, their usage counters and the value types
// exchanged by the vault use cases.
//
// A KeyRecord holds a third-party API credential only in sealed form. The plaintext exists in
// memory only while a use case is creating, rotating or releasing it.
package domain

import (
	"slices"
	"strings"
	"time"
)

// KeyRecord is one stored credential.
type KeyRecord struct {
	// ID is an opaque identifier generated at creation. Immutable.
	ID string `json:"key_id"`
	// ServiceName is the name callers resolve the credential by. Immutable.
	ServiceName string `json:"service_name"`
	// SealedSecret is the CipherBox output for the credential. Never plaintext.
	SealedSecret []byte `json:"sealed_secret"`
	// Description is free display text.
	Description string `json:"description"`
	// AllowedCallers restricts which caller identities may release the credential.
	// Empty means any authenticated caller.
	AllowedCallers []string `json:"allowed_contracts"`
	// RateLimit is the number of releases allowed per rolling hour.
	RateLimit int `json:"rate_limit"`
	// Active records are the only ones visible to the release path.
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	RotatedAt *time.Time `json:"rotated_at,omitempty"`
}

// Clone returns a deep copy so callers never share slices with the registry.
func (k *KeyRecord) Clone() *KeyRecord {
	if k == nil {
		return nil
	}
	c := *k
	c.SealedSecret = slices.Clone(k.SealedSecret)
	c.AllowedCallers = slices.Clone(k.AllowedCallers)
	if k.RotatedAt != nil {
		rotatedAt := *k.RotatedAt
		c.RotatedAt = &rotatedAt
	}
	return &c
}

// AllowsCaller reports whether callerIdentity may release this credential.
func (k *KeyRecord) AllowsCaller(callerIdentity string) bool {
	if len(k.AllowedCallers) == 0 {
		return true
	}
	return slices.Contains(k.AllowedCallers, callerIdentity)
}

// Touch sets UpdatedAt to now without ever moving it backwards.
func (k *KeyRecord) Touch(now time.Time) {
	k.UpdatedAt = latest(k.UpdatedAt, now)
}

// MarkRotated stamps RotatedAt (and UpdatedAt) with now, never moving either backwards.
func (k *KeyRecord) MarkRotated(now time.Time) {
	rotatedAt := now
	if k.RotatedAt != nil {
		rotatedAt = latest(*k.RotatedAt, now)
	}
	k.RotatedAt = &rotatedAt
	k.Touch(now)
}

// Apply copies every provided field of input onto the record. SealedSecret is handled by the
// caller, since only the CipherBox may produce it.
func (k *KeyRecord) Apply(input *UpdateKeyInput) {
	if input.Description != nil {
		k.Description = *input.Description
	}
	if input.AllowedCallers != nil {
		k.AllowedCallers = NormalizeCallers(*input.AllowedCallers)
	}
	if input.RateLimit != nil {
		k.RateLimit = *input.RateLimit
	}
	if input.Active != nil {
		k.Active = *input.Active
	}
}

// KeyRecordSummary is the listing view of a record joined with its usage totals.
// It never contains secret material.
type KeyRecordSummary struct {
	ID             string
	ServiceName    string
	Description    string
	AllowedCallers []string
	RateLimit      int
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	RotatedAt      *time.Time
	TotalCalls     int64
	RateLimitHits  int64
	LastUsed       *time.Time
}

// NewKeyRecordSummary joins a record with its counter.
func NewKeyRecordSummary(record *KeyRecord, usage *UsageCounter) *KeyRecordSummary {
	c := record.Clone()
	summary := &KeyRecordSummary{
		ID:             c.ID,
		ServiceName:    c.ServiceName,
		Description:    c.Description,
		AllowedCallers: c.AllowedCallers,
		RateLimit:      c.RateLimit,
		Active:         c.Active,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		RotatedAt:      c.RotatedAt,
	}
	if usage != nil {
		summary.TotalCalls = usage.TotalCalls
		summary.RateLimitHits = usage.RateLimitHits
		if usage.LastUsed != nil {
			lastUsed := *usage.LastUsed
			summary.LastUsed = &lastUsed
		}
	}
	return summary
}

// CreateKeyInput carries a new credential before it is sealed.
type CreateKeyInput struct {
	ServiceName    string
	Secret         []byte
	Description    string
	AllowedCallers []string
	RateLimit      int
}

// Validate checks the invariants a record must satisfy at creation.
func (i *CreateKeyInput) Validate() error {
	if strings.TrimSpace(i.ServiceName) == "" {
		return ErrServiceNameRequired
	}
	if len(i.Secret) == 0 {
		return ErrSecretRequired
	}
	if i.RateLimit <= 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

// NewKeyRecordInput is what the registry needs to insert a record: the sealed form only.
type NewKeyRecordInput struct {
	ServiceName    string
	SealedSecret   []byte
	Description    string
	AllowedCallers []string
	RateLimit      int
}

// UpdateKeyInput is a set of optional deltas. Nil fields are left untouched.
type UpdateKeyInput struct {
	Secret         []byte
	Description    *string
	AllowedCallers *[]string
	RateLimit      *int
	Active         *bool
}

// Validate checks the provided fields.
func (i *UpdateKeyInput) Validate() error {
	if i.Secret != nil && len(i.Secret) == 0 {
		return ErrSecretRequired
	}
	if i.RateLimit != nil && *i.RateLimit <= 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

// NormalizeCallers trims and de-duplicates an allow-list, preserving first-seen order.
func NormalizeCallers(callers []string) []string {
	out := make([]string, 0, len(callers))
	for _, caller := range callers {
		caller = strings.TrimSpace(caller)
		if caller == "" || slices.Contains(out, caller) {
			continue
		}
		out = append(out, caller)
	}
	return out
}

// ResolutionLess orders records for service-name resolution and listing: earliest CreatedAt
// first, then lowest ID. The order is total, so resolution among several active records that
// share a service name is deterministic.
func ResolutionLess(a, b *KeyRecord) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func latest(prev, now time.Time) time.Time {
	if now.Before(prev) {
		return prev
	}
	return now
}
