package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"

	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// kmsProviderSchemes maps each KMS_PROVIDER value to the URI scheme its keys use.
var kmsProviderSchemes = map[string]string{
	"awskms":        "awskms",
	"azurekeyvault": "azurekeyvault",
	"gcpkms":        "gcpkms",
	"hashivault":    "hashivault",
	"localsecrets":  "base64key",
}

// KMSProviders returns the supported KMS_PROVIDER values, sorted.
func KMSProviders() []string {
	providers := make([]string, 0, len(kmsProviderSchemes))
	for provider := range kmsProviderSchemes {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	return providers
}

// CheckKeyURI verifies that keyURI belongs to provider, so a master key wrapped by one KMS is
// never handed to another.
func CheckKeyURI(provider, keyURI string) error {
	scheme, ok := kmsProviderSchemes[provider]
	if !ok {
		return fmt.Errorf("%w: unknown KMS provider %q (supported: %s)",
			cryptoDomain.ErrInvalidKMSConfig, provider, strings.Join(KMSProviders(), ", "))
	}
	if !strings.HasPrefix(keyURI, scheme+"://") {
		return fmt.Errorf("%w: KMS provider %q expects a %s:// key URI",
			cryptoDomain.ErrInvalidKMSConfig, provider, scheme)
	}
	return nil
}

// KMSService opens gocloud.dev keepers used to wrap and unwrap the vault master key.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

type kmsService struct{}

// NewKMSService creates a KMSService backed by gocloud.dev/secrets.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens a keeper for keyURI. The caller must Close it.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}
