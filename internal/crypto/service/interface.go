// Package service provides the cryptographic services behind the vault: AEAD ciphers, the
// CipherBox that seals stored credentials, and KMS access for unwrapping the master key.
package service

import (
	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)

	// NonceSize returns the nonce length in bytes.
	NonceSize() int
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Sealer is the encrypt/decrypt boundary of the vault. Sealed values are opaque: the only code
// allowed to interpret them is Open.
type Sealer interface {
	// Seal encrypts plaintext and returns a self-contained sealed value.
	Seal(plaintext []byte) ([]byte, error)

	// Open decrypts a value produced by Seal. Any other input fails with
	// cryptoDomain.ErrDecryptionFailed.
	Open(sealed []byte) ([]byte, error)
}
