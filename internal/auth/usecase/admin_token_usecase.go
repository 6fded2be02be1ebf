package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
	authService "github.com/allisson/keyvault/internal/auth/service"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// adminTokenUseCase implements AdminTokenUseCase.
type adminTokenUseCase struct {
	tokenRepo           AdminTokenRepository
	tokenService        authService.TokenService
	secretService       authService.SecretService
	bootstrapSecretHash string
	tokenExpiration     time.Duration
	now                 func() time.Time
}

// Init issues a new admin token according to the bootstrap policy.
func (a *adminTokenUseCase) Init(
	ctx context.Context,
	input *authDomain.InitAdminInput,
) (*authDomain.InitAdminOutput, error) {
	if a.bootstrapSecretHash != "" &&
		!a.secretService.CompareSecret(input.BootstrapSecret, a.bootstrapSecretHash) {
		return nil, authDomain.ErrInvalidBootstrapSecret
	}

	plainToken, tokenHash, err := a.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate admin token id")
	}

	now := a.now()
	token := &authDomain.AdminToken{
		ID:        id,
		TokenHash: tokenHash,
		CreatedAt: now,
	}
	if a.tokenExpiration > 0 {
		expiresAt := now.Add(a.tokenExpiration)
		token.ExpiresAt = &expiresAt
	}

	if a.bootstrapSecretHash == "" {
		err = a.tokenRepo.CreateFirst(ctx, token)
	} else {
		err = a.tokenRepo.Create(ctx, token)
	}
	if err != nil {
		return nil, err
	}

	return &authDomain.InitAdminOutput{
		PlainToken: plainToken,
		ExpiresAt:  token.ExpiresAt,
	}, nil
}

// Authenticate resolves a non-expired admin token by hash.
func (a *adminTokenUseCase) Authenticate(
	ctx context.Context,
	tokenHash string,
) (*authDomain.AdminToken, error) {
	token, err := a.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if apperrors.Is(err, authDomain.ErrAdminTokenNotFound) {
			return nil, authDomain.ErrInvalidAdminToken
		}
		return nil, err
	}

	if token.IsExpired(a.now()) {
		return nil, authDomain.ErrInvalidAdminToken
	}

	return token, nil
}

// NewAdminTokenUseCase creates an AdminTokenUseCase. An empty bootstrapSecretHash selects the
// first-init-only policy; a zero tokenExpiration issues tokens that never expire.
func NewAdminTokenUseCase(
	tokenRepo AdminTokenRepository,
	tokenService authService.TokenService,
	secretService authService.SecretService,
	bootstrapSecretHash string,
	tokenExpiration time.Duration,
) AdminTokenUseCase {
	return &adminTokenUseCase{
		tokenRepo:           tokenRepo,
		tokenService:        tokenService,
		secretService:       secretService,
		bootstrapSecretHash: bootstrapSecretHash,
		tokenExpiration:     tokenExpiration,
		now:                 func() time.Time { return time.Now().UTC() },
	}
}
