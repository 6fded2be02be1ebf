package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// MasterKey holds the symmetric key every credential in the vault is sealed with.
//
// The key is provisioned externally (VAULT_MASTER_KEY, optionally wrapped by a KMS) and is
// read-only for the lifetime of the process. Call Close on shutdown to wipe it from memory.
type MasterKey struct {
	Key []byte
}

// Close zeroes the key material.
func (m *MasterKey) Close() {
	if m == nil {
		return
	}
	Zero(m.Key)
	m.Key = nil
}

// KMSKeeper is the subset of a gocloud.dev secrets keeper needed to unwrap a master key.
type KMSKeeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// ParseMasterKey decodes a base64-encoded 32-byte master key.
//
// An empty value returns ErrMasterKeyNotSet. Decoded bytes of the wrong length are zeroed before
// ErrInvalidKeySize is returned.
func ParseMasterKey(encoded string) (*MasterKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrMasterKeyNotSet
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKeyBase64, err)
	}

	if len(key) != MasterKeySize {
		size := len(key)
		Zero(key)
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", ErrInvalidKeySize, MasterKeySize, size)
	}

	return &MasterKey{Key: key}, nil
}

// UnwrapMasterKey decodes a base64 KMS ciphertext and decrypts it with keeper into a master key.
func UnwrapMasterKey(ctx context.Context, encoded string, keeper KMSKeeper) (*MasterKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrMasterKeyNotSet
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKeyBase64, err)
	}

	key, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKMSDecryptionFailed, err)
	}

	if len(key) != MasterKeySize {
		size := len(key)
		Zero(key)
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", ErrInvalidKeySize, MasterKeySize, size)
	}

	return &MasterKey{Key: key}, nil
}
