// Package usecase implements the vault's business operations: administering key records and
// releasing credentials to authenticated callers under per-record rate limits.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// Registry is the store of key records and usage counters.
type Registry interface {
	Create(ctx context.Context, input *vaultDomain.NewKeyRecordInput) (*vaultDomain.KeyRecord, error)
	Get(ctx context.Context, id string) (*vaultDomain.KeyRecord, error)
	FindActiveByService(ctx context.Context, serviceName string) (*vaultDomain.KeyRecord, error)
	// Update applies fn to a copy of the record under the record's lock and commits only when
	// fn returns nil.
	Update(
		ctx context.Context,
		id string,
		fn func(record *vaultDomain.KeyRecord, now time.Time) error,
	) (*vaultDomain.KeyRecord, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*vaultDomain.KeyRecordSummary, error)
	// Admit runs authorize and the rate window check as one step under the resolved record's lock.
	Admit(
		ctx context.Context,
		serviceName string,
		authorize func(record *vaultDomain.KeyRecord) error,
	) (*vaultDomain.Grant, error)
	Usage(ctx context.Context, id string) (*vaultDomain.UsageStats, error)
	Stats(ctx context.Context) (*vaultDomain.VaultStatus, error)
	Snapshot(ctx context.Context) (*vaultDomain.Snapshot, error)
	Restore(ctx context.Context, snapshot *vaultDomain.Snapshot) (int, error)
}

// BackupRepository persists registry snapshots.
type BackupRepository interface {
	Create(ctx context.Context, backup *vaultDomain.Backup) error
	Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Backup, error)
	List(ctx context.Context, offset, limit int) ([]*vaultDomain.Backup, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// VaultUseCase defines the vault's business operations.
type VaultUseCase interface {
	Create(ctx context.Context, input *vaultDomain.CreateKeyInput) (*vaultDomain.KeyRecord, error)
	List(ctx context.Context) ([]*vaultDomain.KeyRecordSummary, error)
	Update(ctx context.Context, id string, input *vaultDomain.UpdateKeyInput) (*vaultDomain.KeyRecord, error)
	Delete(ctx context.Context, id string) error
	// Rotate re-seals the record with newSecret and returns a bounded preview of the old one.
	Rotate(ctx context.Context, id string, newSecret []byte) (*vaultDomain.RotationResult, error)
	Usage(ctx context.Context, id string) (*vaultDomain.UsageStats, error)
	// Release resolves, authorizes, admits and reveals the credential for serviceName.
	//
	// Security Note: The returned Release contains plaintext in the Secret field.
	// Callers MUST zero it after use by calling cryptoDomain.Zero(release.Secret).
	Release(ctx context.Context, serviceName, callerIdentity string) (*vaultDomain.Release, error)
	Export(ctx context.Context) (*vaultDomain.Snapshot, error)
	// Import replaces the whole registry with snapshot and returns the number of records loaded.
	Import(ctx context.Context, snapshot *vaultDomain.Snapshot) (int, error)
	Status(ctx context.Context) (*vaultDomain.VaultStatus, error)
}

// BackupUseCase stores and restores registry snapshots.
type BackupUseCase interface {
	Create(ctx context.Context) (*vaultDomain.Backup, error)
	List(ctx context.Context, offset, limit int) ([]*vaultDomain.Backup, error)
	// Restore replaces the registry with a stored snapshot and returns the number of records loaded.
	Restore(ctx context.Context, id uuid.UUID) (int, error)
}
