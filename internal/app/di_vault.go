package app

import (
	"context"
	"fmt"

	"github.com/allisson/keyvault/internal/config"
	"github.com/allisson/keyvault/internal/metrics"
	vaultHTTP "github.com/allisson/keyvault/internal/vault/http"
	vaultRepository "github.com/allisson/keyvault/internal/vault/repository"
	vaultUseCase "github.com/allisson/keyvault/internal/vault/usecase"
)

// Registry returns the in-memory key registry. There is exactly one per process.
func (c *Container) Registry() *vaultRepository.MemoryRegistry {
	c.registryInit.Do(func() {
		c.registry = vaultRepository.NewMemoryRegistry()
	})
	return c.registry
}

// VaultUseCase returns the vault use case, wrapped with metrics when enabled.
func (c *Container) VaultUseCase() (vaultUseCase.VaultUseCase, error) {
	c.vaultUseCaseInit.Do(func() {
		useCase, err := c.initVaultUseCase()
		if err != nil {
			c.setInitError("vaultUseCase", err)
			return
		}
		c.vaultUseCase = useCase
	})
	if err := c.initError("vaultUseCase"); err != nil {
		return nil, err
	}
	return c.vaultUseCase, nil
}

// BackupRepository returns the backup repository for the configured driver, or nil when backups
// are disabled.
func (c *Container) BackupRepository() (vaultUseCase.BackupRepository, error) {
	c.backupRepositoryInit.Do(func() {
		repo, err := c.initBackupRepository()
		if err != nil {
			c.setInitError("backupRepository", err)
			return
		}
		c.backupRepository = repo
	})
	if err := c.initError("backupRepository"); err != nil {
		return nil, err
	}
	return c.backupRepository, nil
}

// BackupUseCase returns the backup use case, or nil when backups are disabled.
func (c *Container) BackupUseCase() (vaultUseCase.BackupUseCase, error) {
	c.backupUseCaseInit.Do(func() {
		useCase, err := c.initBackupUseCase()
		if err != nil {
			c.setInitError("backupUseCase", err)
			return
		}
		c.backupUseCase = useCase
	})
	if err := c.initError("backupUseCase"); err != nil {
		return nil, err
	}
	return c.backupUseCase, nil
}

// KeyHandler returns the admin key management handler.
func (c *Container) KeyHandler() (*vaultHTTP.KeyHandler, error) {
	useCase, err := c.VaultUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault use case for key handler: %w", err)
	}
	return vaultHTTP.NewKeyHandler(useCase, c.config.DefaultRateLimit, c.Logger()), nil
}

// ContractHandler returns the credential release handler.
func (c *Container) ContractHandler() (*vaultHTTP.ContractHandler, error) {
	useCase, err := c.VaultUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault use case for contract handler: %w", err)
	}
	return vaultHTTP.NewContractHandler(useCase, c.Logger()), nil
}

// HealthHandler returns the health handler.
func (c *Container) HealthHandler() (*vaultHTTP.HealthHandler, error) {
	useCase, err := c.VaultUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault use case for health handler: %w", err)
	}
	return vaultHTTP.NewHealthHandler(useCase, c.version, c.Logger()), nil
}

// BackupHandler returns the backup handler, or nil when backups are disabled.
func (c *Container) BackupHandler() (*vaultHTTP.BackupHandler, error) {
	useCase, err := c.BackupUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get backup use case for backup handler: %w", err)
	}
	if useCase == nil {
		return nil, nil
	}
	return vaultHTTP.NewBackupHandler(useCase, c.Logger()), nil
}

// initVaultUseCase creates the vault use case with all its dependencies.
func (c *Container) initVaultUseCase() (vaultUseCase.VaultUseCase, error) {
	box, err := c.CipherBox()
	if err != nil {
		return nil, fmt.Errorf("failed to get cipher box for vault use case: %w", err)
	}

	baseUseCase := vaultUseCase.NewVaultUseCase(c.Registry(), box, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for vault use case: %w", err)
		}
		if err := c.registerKeyGauges(baseUseCase); err != nil {
			return nil, err
		}
		return vaultUseCase.NewVaultUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initBackupRepository selects the backup repository based on the database driver.
func (c *Container) initBackupRepository() (vaultUseCase.BackupRepository, error) {
	if !c.config.BackupsEnabled() {
		return nil, nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for backup repository: %w", err)
	}

	switch c.config.DBDriver {
	case config.DBDriverPostgres:
		return vaultRepository.NewPostgreSQLBackupRepository(db), nil
	case config.DBDriverMySQL:
		return vaultRepository.NewMySQLBackupRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initBackupUseCase creates the backup use case when a backup store is configured.
func (c *Container) initBackupUseCase() (vaultUseCase.BackupUseCase, error) {
	backupRepo, err := c.BackupRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get backup repository for backup use case: %w", err)
	}
	if backupRepo == nil {
		return nil, nil
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for backup use case: %w", err)
	}

	return vaultUseCase.NewBackupUseCase(
		txManager,
		backupRepo,
		c.Registry(),
		c.config.BackupRetention,
		c.Logger(),
	), nil
}

// registerKeyGauges exports the registry size through the metrics provider.
func (c *Container) registerKeyGauges(useCase vaultUseCase.VaultUseCase) error {
	provider, err := c.MetricsProvider()
	if err != nil {
		return fmt.Errorf("failed to get metrics provider for key gauges: %w", err)
	}
	if provider == nil {
		return nil
	}

	return metrics.RegisterKeyGauges(
		provider.MeterProvider(),
		c.config.MetricsNamespace,
		func(ctx context.Context) (int, int, error) {
			status, err := useCase.Status(ctx)
			if err != nil {
				return 0, 0, err
			}
			return status.TotalKeys, status.ActiveKeys, nil
		},
	)
}
