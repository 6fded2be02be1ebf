package app

import (
	"fmt"

	authHTTP "github.com/allisson/keyvault/internal/auth/http"
	authRepository "github.com/allisson/keyvault/internal/auth/repository"
	authService "github.com/allisson/keyvault/internal/auth/service"
	authUseCase "github.com/allisson/keyvault/internal/auth/usecase"
)

// TokenService returns the service that generates and hashes admin tokens.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authService.NewTokenService()
	})
	return c.tokenService
}

// SecretService returns the service that hashes and verifies the bootstrap secret.
func (c *Container) SecretService() authService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = authService.NewSecretService()
	})
	return c.secretService
}

// CallerAuthenticator returns the authenticator for contract callers.
func (c *Container) CallerAuthenticator() authService.CallerAuthenticator {
	c.callerAuthenticatorInit.Do(func() {
		c.callerAuthenticator = authService.NewHeaderCallerAuthenticator()
	})
	return c.callerAuthenticator
}

// AdminTokenRepository returns the in-memory admin token store.
func (c *Container) AdminTokenRepository() *authRepository.MemoryAdminTokenRepository {
	c.adminTokenRepositoryInit.Do(func() {
		c.adminTokenRepository = authRepository.NewMemoryAdminTokenRepository()
	})
	return c.adminTokenRepository
}

// AdminTokenUseCase returns the admin token use case, wrapped with metrics when enabled.
func (c *Container) AdminTokenUseCase() (authUseCase.AdminTokenUseCase, error) {
	c.adminTokenUseCaseInit.Do(func() {
		useCase, err := c.initAdminTokenUseCase()
		if err != nil {
			c.setInitError("adminTokenUseCase", err)
			return
		}
		c.adminTokenUseCase = useCase
	})
	if err := c.initError("adminTokenUseCase"); err != nil {
		return nil, err
	}
	return c.adminTokenUseCase, nil
}

// InitHandler returns the admin bootstrap handler.
func (c *Container) InitHandler() (*authHTTP.InitHandler, error) {
	useCase, err := c.AdminTokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get admin token use case for init handler: %w", err)
	}
	return authHTTP.NewInitHandler(useCase, c.Logger()), nil
}

// initAdminTokenUseCase creates the admin token use case with all its dependencies.
func (c *Container) initAdminTokenUseCase() (authUseCase.AdminTokenUseCase, error) {
	baseUseCase := authUseCase.NewAdminTokenUseCase(
		c.AdminTokenRepository(),
		c.TokenService(),
		c.SecretService(),
		c.config.AdminBootstrapSecretHash,
		c.config.AdminTokenExpiration,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for admin token use case: %w", err)
		}
		return authUseCase.NewAdminTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
