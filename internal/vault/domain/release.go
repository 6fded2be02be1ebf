package domain

import (
	"time"

	"github.com/google/uuid"
)

// Grant is what the registry hands back after a successful admission: enough to reveal the
// secret outside the record lock.
type Grant struct {
	KeyID        string
	ServiceName  string
	SealedSecret []byte
	Admission    Admission
}

// Release is the successful result of the release path. Secret is plaintext; the receiver must
// zero it once the response is written.
type Release struct {
	KeyID       string
	ServiceName string
	Secret      []byte
	RateLimit   int
	Remaining   int
}

// RotationResult acknowledges a rotation with a bounded preview of the previous secret.
type RotationResult struct {
	KeyID         string
	OldKeyPreview string
	RotatedAt     time.Time
}

// UsageStats is the per-record usage report.
type UsageStats struct {
	KeyID         string
	TotalCalls    int64
	CallsLastHour int
	LastUsed      *time.Time
	RateLimitHits int64
	RateLimit     int
	Active        bool
}

// VaultStatus is the health view of the registry. It never carries secrets.
type VaultStatus struct {
	TotalKeys  int
	ActiveKeys int
}

// Backup is a stored export snapshot.
type Backup struct {
	ID uuid.UUID
	// KeyCount is the number of records in the snapshot.
	KeyCount int
	// Payload is the JSON-encoded Snapshot. Contains sealed secrets only.
	Payload   []byte
	CreatedAt time.Time
}
