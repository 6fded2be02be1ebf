package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
	"github.com/allisson/keyvault/internal/metrics"
)

// adminTokenUseCaseWithMetrics decorates AdminTokenUseCase with metrics instrumentation.
type adminTokenUseCaseWithMetrics struct {
	next    AdminTokenUseCase
	metrics metrics.BusinessMetrics
}

// NewAdminTokenUseCaseWithMetrics wraps an AdminTokenUseCase with metrics recording.
func NewAdminTokenUseCaseWithMetrics(useCase AdminTokenUseCase, m metrics.BusinessMetrics) AdminTokenUseCase {
	return &adminTokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Init records metrics for admin token issuance.
func (a *adminTokenUseCaseWithMetrics) Init(
	ctx context.Context,
	input *authDomain.InitAdminInput,
) (*authDomain.InitAdminOutput, error) {
	start := time.Now()
	output, err := a.next.Init(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "auth", "admin_init", status)
	a.metrics.RecordDuration(ctx, "auth", "admin_init", time.Since(start), status)

	return output, err
}

// Authenticate records metrics for admin token authentication.
func (a *adminTokenUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	tokenHash string,
) (*authDomain.AdminToken, error) {
	start := time.Now()
	token, err := a.next.Authenticate(ctx, tokenHash)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "auth", "admin_authenticate", status)
	a.metrics.RecordDuration(ctx, "auth", "admin_authenticate", time.Since(start), status)

	return token, err
}
