package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/keyvault/internal/errors"
)

// credentialSize is the entropy, in bytes, of bootstrap secrets and admin tokens.
const credentialSize = 32

// randomCredential returns credentialSize random bytes encoded as base64url.
func randomCredential() (string, error) {
	buf := make([]byte, credentialSize)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// argon2SecretService hashes bootstrap secrets with Argon2id.
type argon2SecretService struct {
	hasher *pwdhash.PasswordHasher
}

// NewSecretService returns a SecretService using the Moderate Argon2id policy.
func NewSecretService() SecretService {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		panic(err)
	}
	return &argon2SecretService{hasher: hasher}
}

func (s *argon2SecretService) GenerateSecret() (string, string, error) {
	secret, err := randomCredential()
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate bootstrap secret")
	}
	hash, err := s.HashSecret(secret)
	if err != nil {
		return "", "", err
	}
	return secret, hash, nil
}

func (s *argon2SecretService) HashSecret(plainSecret string) (string, error) {
	hash, err := s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash bootstrap secret")
	}
	return hash, nil
}

func (s *argon2SecretService) CompareSecret(plainSecret, hashedSecret string) bool {
	ok, err := s.hasher.Verify([]byte(plainSecret), hashedSecret)
	return err == nil && ok
}

// sha256TokenService issues admin tokens. Tokens carry full credential entropy, so a fast hash is
// enough for the lookup key.
type sha256TokenService struct{}

// NewTokenService returns a TokenService keyed by hex SHA-256.
func NewTokenService() TokenService {
	return sha256TokenService{}
}

func (sha256TokenService) GenerateToken() (string, string, error) {
	token, err := randomCredential()
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate admin token")
	}
	return token, sha256TokenService{}.HashToken(token), nil
}

func (sha256TokenService) HashToken(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}
