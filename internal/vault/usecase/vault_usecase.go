package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
	apperrors "github.com/allisson/keyvault/internal/errors"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// vaultUseCase implements VaultUseCase on top of a Registry and a Sealer.
type vaultUseCase struct {
	registry Registry
	sealer   cryptoService.Sealer
	logger   *slog.Logger
}

// Create seals the secret and inserts a new active record.
func (v *vaultUseCase) Create(
	ctx context.Context,
	input *vaultDomain.CreateKeyInput,
) (*vaultDomain.KeyRecord, error) {
	input.ServiceName = strings.TrimSpace(input.ServiceName)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	sealed, err := v.sealer.Seal(input.Secret)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to seal secret")
	}

	return v.registry.Create(ctx, &vaultDomain.NewKeyRecordInput{
		ServiceName:    input.ServiceName,
		SealedSecret:   sealed,
		Description:    input.Description,
		AllowedCallers: input.AllowedCallers,
		RateLimit:      input.RateLimit,
	})
}

// List returns every record with its usage totals.
func (v *vaultUseCase) List(ctx context.Context) ([]*vaultDomain.KeyRecordSummary, error) {
	return v.registry.List(ctx)
}

// Update applies the provided fields. A new secret is sealed before the record is locked.
func (v *vaultUseCase) Update(
	ctx context.Context,
	id string,
	input *vaultDomain.UpdateKeyInput,
) (*vaultDomain.KeyRecord, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var sealed []byte
	if input.Secret != nil {
		var err error
		sealed, err = v.sealer.Seal(input.Secret)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to seal secret")
		}
	}

	return v.registry.Update(ctx, id, func(record *vaultDomain.KeyRecord, _ time.Time) error {
		record.Apply(input)
		if sealed != nil {
			record.SealedSecret = sealed
		}
		return nil
	})
}

// Delete removes the record and its usage counter.
func (v *vaultUseCase) Delete(ctx context.Context, id string) error {
	return v.registry.Delete(ctx, id)
}

// Rotate replaces the sealed secret and stamps RotatedAt. The old secret is opened under the
// record lock so the preview always describes the value that was replaced. A record whose old
// secret no longer opens is an integrity fault and is left untouched; Update with a new secret
// re-seals it without opening the old one.
func (v *vaultUseCase) Rotate(
	ctx context.Context,
	id string,
	newSecret []byte,
) (*vaultDomain.RotationResult, error) {
	if len(newSecret) == 0 {
		return nil, vaultDomain.ErrSecretRequired
	}

	sealed, err := v.sealer.Seal(newSecret)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to seal secret")
	}

	var preview string
	record, err := v.registry.Update(ctx, id, func(record *vaultDomain.KeyRecord, now time.Time) error {
		old, openErr := v.sealer.Open(record.SealedSecret)
		if openErr != nil {
			v.logIntegrityFault(ctx, "rotate", record.ID, record.ServiceName, openErr)
			return vaultDomain.ErrVaultIntegrity
		}
		preview = vaultDomain.Preview(old)
		cryptoDomain.Zero(old)

		record.SealedSecret = sealed
		record.MarkRotated(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &vaultDomain.RotationResult{
		KeyID:         record.ID,
		OldKeyPreview: preview,
		RotatedAt:     *record.RotatedAt,
	}, nil
}

// Usage reports the record's usage counter.
func (v *vaultUseCase) Usage(ctx context.Context, id string) (*vaultDomain.UsageStats, error) {
	return v.registry.Usage(ctx, id)
}

// Release runs Resolve, Authorize, Admit and Reveal in order and stops at the first failure.
// Authorize and Admit share the record lock, so an admitted call always counts against the
// window even if the reveal that follows fails.
func (v *vaultUseCase) Release(
	ctx context.Context,
	serviceName, callerIdentity string,
) (*vaultDomain.Release, error) {
	if callerIdentity == "" {
		return nil, vaultDomain.ErrCallerIdentityRequired
	}

	grant, err := v.registry.Admit(ctx, serviceName, func(record *vaultDomain.KeyRecord) error {
		if !record.AllowsCaller(callerIdentity) {
			return vaultDomain.ErrCallerNotAuthorized
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	secret, err := v.sealer.Open(grant.SealedSecret)
	if err != nil {
		v.logIntegrityFault(ctx, "release", grant.KeyID, grant.ServiceName, err)
		return nil, vaultDomain.ErrVaultIntegrity
	}

	return &vaultDomain.Release{
		KeyID:       grant.KeyID,
		ServiceName: grant.ServiceName,
		Secret:      secret,
		RateLimit:   grant.Admission.RateLimit,
		Remaining:   grant.Admission.Remaining,
	}, nil
}

// Export snapshots every record and counter. Sealed secrets are exported as-is.
func (v *vaultUseCase) Export(ctx context.Context) (*vaultDomain.Snapshot, error) {
	return v.registry.Snapshot(ctx)
}

// Import replaces the registry wholesale. Records missing from snapshot are discarded.
func (v *vaultUseCase) Import(ctx context.Context, snapshot *vaultDomain.Snapshot) (int, error) {
	count, err := v.registry.Restore(ctx, snapshot)
	if err != nil {
		return 0, err
	}

	if v.logger != nil {
		v.logger.WarnContext(ctx, "vault state replaced by import", slog.Int("key_count", count))
	}
	return count, nil
}

// Status returns record counts.
func (v *vaultUseCase) Status(ctx context.Context) (*vaultDomain.VaultStatus, error) {
	return v.registry.Stats(ctx)
}

func (v *vaultUseCase) logIntegrityFault(ctx context.Context, operation, keyID, serviceName string, err error) {
	if v.logger == nil {
		return
	}
	v.logger.ErrorContext(ctx, "sealed secret failed to open",
		slog.String("operation", operation),
		slog.String("key_id", keyID),
		slog.String("service_name", serviceName),
		slog.Any("error", err),
	)
}

// NewVaultUseCase creates a new VaultUseCase.
func NewVaultUseCase(registry Registry, sealer cryptoService.Sealer, logger *slog.Logger) VaultUseCase {
	return &vaultUseCase{
		registry: registry,
		sealer:   sealer,
		logger:   logger,
	}
}
