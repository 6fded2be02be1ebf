package usecase

import (
	"context"
	"time"

	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/metrics"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

const metricsDomain = "vault"

// vaultUseCaseWithMetrics decorates VaultUseCase with metrics instrumentation.
type vaultUseCaseWithMetrics struct {
	next    VaultUseCase
	metrics metrics.BusinessMetrics
}

// NewVaultUseCaseWithMetrics wraps a VaultUseCase with metrics recording.
func NewVaultUseCaseWithMetrics(useCase VaultUseCase, m metrics.BusinessMetrics) VaultUseCase {
	return &vaultUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (v *vaultUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	v.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Create records metrics for key creation.
func (v *vaultUseCaseWithMetrics) Create(
	ctx context.Context,
	input *vaultDomain.CreateKeyInput,
) (*vaultDomain.KeyRecord, error) {
	start := time.Now()
	record, err := v.next.Create(ctx, input)
	v.record(ctx, "key_create", start, err)
	return record, err
}

// List records metrics for key listing.
func (v *vaultUseCaseWithMetrics) List(ctx context.Context) ([]*vaultDomain.KeyRecordSummary, error) {
	start := time.Now()
	summaries, err := v.next.List(ctx)
	v.record(ctx, "key_list", start, err)
	return summaries, err
}

// Update records metrics for key updates.
func (v *vaultUseCaseWithMetrics) Update(
	ctx context.Context,
	id string,
	input *vaultDomain.UpdateKeyInput,
) (*vaultDomain.KeyRecord, error) {
	start := time.Now()
	record, err := v.next.Update(ctx, id, input)
	v.record(ctx, "key_update", start, err)
	return record, err
}

// Delete records metrics for key deletion.
func (v *vaultUseCaseWithMetrics) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := v.next.Delete(ctx, id)
	v.record(ctx, "key_delete", start, err)
	return err
}

// Rotate records metrics for key rotation.
func (v *vaultUseCaseWithMetrics) Rotate(
	ctx context.Context,
	id string,
	newSecret []byte,
) (*vaultDomain.RotationResult, error) {
	start := time.Now()
	result, err := v.next.Rotate(ctx, id, newSecret)
	v.record(ctx, "key_rotate", start, err)
	return result, err
}

// Usage records metrics for usage lookups.
func (v *vaultUseCaseWithMetrics) Usage(ctx context.Context, id string) (*vaultDomain.UsageStats, error) {
	start := time.Now()
	stats, err := v.next.Usage(ctx, id)
	v.record(ctx, "key_usage", start, err)
	return stats, err
}

// Release records metrics for credential releases. Rate limit denials get their own status so
// they can be told apart from failures, and every attempt is counted per service by outcome.
func (v *vaultUseCaseWithMetrics) Release(
	ctx context.Context,
	serviceName, callerIdentity string,
) (*vaultDomain.Release, error) {
	start := time.Now()
	release, err := v.next.Release(ctx, serviceName, callerIdentity)

	status := "success"
	switch {
	case err == nil:
	case apperrors.Is(err, apperrors.ErrTooManyRequests):
		status = "rate_limited"
	default:
		status = "error"
	}

	v.metrics.RecordOperation(ctx, metricsDomain, "key_release", status)
	v.metrics.RecordDuration(ctx, metricsDomain, "key_release", time.Since(start), status)
	outcome := releaseOutcome(err)
	v.metrics.RecordRelease(ctx, releaseServiceLabel(serviceName, outcome), outcome)
	return release, err
}

// releaseServiceLabel keeps the service name only once it is known to name a stored record.
func releaseServiceLabel(serviceName, outcome string) string {
	switch outcome {
	case metrics.ReleaseOutcomeNotFound, metrics.ReleaseOutcomeError:
		return metrics.UnknownService
	default:
		return serviceName
	}
}

func releaseOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.ReleaseOutcomeReleased
	case apperrors.Is(err, apperrors.ErrNotFound):
		return metrics.ReleaseOutcomeNotFound
	case apperrors.Is(err, apperrors.ErrForbidden):
		return metrics.ReleaseOutcomeForbidden
	case apperrors.Is(err, apperrors.ErrTooManyRequests):
		return metrics.ReleaseOutcomeRateLimited
	case apperrors.Is(err, apperrors.ErrIntegrity):
		return metrics.ReleaseOutcomeIntegrityError
	default:
		return metrics.ReleaseOutcomeError
	}
}

// Export records metrics for exports.
func (v *vaultUseCaseWithMetrics) Export(ctx context.Context) (*vaultDomain.Snapshot, error) {
	start := time.Now()
	snapshot, err := v.next.Export(ctx)
	v.record(ctx, "vault_export", start, err)
	return snapshot, err
}

// Import records metrics for imports.
func (v *vaultUseCaseWithMetrics) Import(ctx context.Context, snapshot *vaultDomain.Snapshot) (int, error) {
	start := time.Now()
	count, err := v.next.Import(ctx, snapshot)
	v.record(ctx, "vault_import", start, err)
	return count, err
}

// Status backs the health endpoint and is not instrumented.
func (v *vaultUseCaseWithMetrics) Status(ctx context.Context) (*vaultDomain.VaultStatus, error) {
	return v.next.Status(ctx)
}
