package service

import (
	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// CipherBox seals and opens credentials with the vault master key.
//
// A sealed value is nonce || ciphertext || tag, so it can be stored and exported as a single
// opaque byte string. The box keeps only the initialized AEAD; the raw key can be wiped by the
// caller once NewCipherBox returns.
type CipherBox struct {
	aead AEAD
}

// NewCipherBox builds a CipherBox for masterKey using the given algorithm.
func NewCipherBox(
	aeadManager AEADManager,
	masterKey *cryptoDomain.MasterKey,
	alg cryptoDomain.Algorithm,
) (*CipherBox, error) {
	if masterKey == nil {
		return nil, cryptoDomain.ErrMasterKeyNotSet
	}

	aead, err := aeadManager.CreateCipher(masterKey.Key, alg)
	if err != nil {
		return nil, err
	}

	return &CipherBox{aead: aead}, nil
}

// Seal encrypts plaintext under a fresh nonce.
func (b *CipherBox) Seal(plaintext []byte) ([]byte, error) {
	ciphertext, nonce, err := b.aead.Encrypt(plaintext, nil)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(nonce)+len(ciphertext))
	sealed = append(sealed, nonce...)
	sealed = append(sealed, ciphertext...)
	return sealed, nil
}

// Open decrypts a value produced by Seal.
func (b *CipherBox) Open(sealed []byte) ([]byte, error) {
	nonceSize := b.aead.NonceSize()
	if len(sealed) <= nonceSize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := b.aead.Decrypt(sealed[nonceSize:], sealed[:nonceSize], nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
