package app

import (
	"context"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
)

// KMSService returns the KMS service used to unwrap a KMS-protected master key.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// CipherBox returns the box that seals and opens every stored credential.
// Startup fails here when VAULT_MASTER_KEY is missing or invalid.
func (c *Container) CipherBox() (*cryptoService.CipherBox, error) {
	c.cipherBoxInit.Do(func() {
		box, err := c.initCipherBox()
		if err != nil {
			c.setInitError("cipherBox", err)
			return
		}
		c.cipherBox = box
	})
	if err := c.initError("cipherBox"); err != nil {
		return nil, err
	}
	return c.cipherBox, nil
}

// initCipherBox loads the master key, builds the AEAD and wipes the raw key.
func (c *Container) initCipherBox() (*cryptoService.CipherBox, error) {
	alg, err := cryptoDomain.ParseAlgorithm(c.config.VaultCipherAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cipher algorithm: %w", err)
	}

	masterKey, err := c.loadMasterKey(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	defer masterKey.Close()

	box, err := cryptoService.NewCipherBox(c.AEADManager(), masterKey, alg)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher box: %w", err)
	}

	c.Logger().Info("vault master key loaded",
		slog.String("algorithm", string(alg)),
		slog.Bool("kms", c.config.KMSEnabled()),
	)

	return box, nil
}

// loadMasterKey decodes VAULT_MASTER_KEY, unwrapping it through the configured KMS when enabled.
func (c *Container) loadMasterKey(ctx context.Context) (*cryptoDomain.MasterKey, error) {
	if !c.config.KMSEnabled() {
		return cryptoDomain.ParseMasterKey(c.config.VaultMasterKey)
	}

	if err := cryptoService.CheckKeyURI(c.config.KMSProvider, c.config.KMSKeyURI); err != nil {
		return nil, err
	}

	keeper, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			c.Logger().Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	return cryptoDomain.UnwrapMasterKey(ctx, c.config.VaultMasterKey, keeper)
}
