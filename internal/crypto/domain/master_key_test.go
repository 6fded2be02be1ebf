package domain

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/keyvault/internal/errors"
)

type fakeKeeper struct {
	plaintext []byte
	err       error
}

func (f *fakeKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte(nil), f.plaintext...), nil
}

func (f *fakeKeeper) Close() error { return nil }

func randomKey(t *testing.T, size int) []byte {
	t.Helper()
	key := make([]byte, size)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestParseMasterKey(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		key := randomKey(t, MasterKeySize)

		masterKey, err := ParseMasterKey(base64.StdEncoding.EncodeToString(key))
		require.NoError(t, err)
		assert.Equal(t, key, masterKey.Key)
	})

	t.Run("Error_Empty", func(t *testing.T) {
		masterKey, err := ParseMasterKey("  ")
		assert.Nil(t, masterKey)
		assert.ErrorIs(t, err, ErrMasterKeyNotSet)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("Error_InvalidBase64", func(t *testing.T) {
		masterKey, err := ParseMasterKey("not-base64!!")
		assert.Nil(t, masterKey)
		assert.ErrorIs(t, err, ErrInvalidMasterKeyBase64)
	})

	t.Run("Error_WrongSize", func(t *testing.T) {
		masterKey, err := ParseMasterKey(base64.StdEncoding.EncodeToString(randomKey(t, 16)))
		assert.Nil(t, masterKey)
		assert.ErrorIs(t, err, ErrInvalidKeySize)
		assert.Contains(t, err.Error(), "got 16")
	})
}

func TestUnwrapMasterKey(t *testing.T) {
	ctx := context.Background()
	wrapped := base64.StdEncoding.EncodeToString([]byte("kms-ciphertext"))

	t.Run("Success", func(t *testing.T) {
		key := randomKey(t, MasterKeySize)

		masterKey, err := UnwrapMasterKey(ctx, wrapped, &fakeKeeper{plaintext: key})
		require.NoError(t, err)
		assert.Equal(t, key, masterKey.Key)
	})

	t.Run("Error_KeeperFails", func(t *testing.T) {
		masterKey, err := UnwrapMasterKey(ctx, wrapped, &fakeKeeper{err: errors.New("denied")})
		assert.Nil(t, masterKey)
		assert.ErrorIs(t, err, ErrKMSDecryptionFailed)
	})

	t.Run("Error_UnwrappedWrongSize", func(t *testing.T) {
		masterKey, err := UnwrapMasterKey(ctx, wrapped, &fakeKeeper{plaintext: []byte("short")})
		assert.Nil(t, masterKey)
		assert.ErrorIs(t, err, ErrInvalidKeySize)
	})

	t.Run("Error_Empty", func(t *testing.T) {
		masterKey, err := UnwrapMasterKey(ctx, "", &fakeKeeper{})
		assert.Nil(t, masterKey)
		assert.ErrorIs(t, err, ErrMasterKeyNotSet)
	})
}

func TestMasterKey_Close(t *testing.T) {
	key := randomKey(t, MasterKeySize)
	backing := key
	masterKey := &MasterKey{Key: key}

	masterKey.Close()

	assert.Nil(t, masterKey.Key)
	assert.Equal(t, make([]byte, MasterKeySize), backing)

	var nilKey *MasterKey
	assert.NotPanics(t, func() { nilKey.Close() })
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("aes-gcm")
	require.NoError(t, err)
	assert.Equal(t, AESGCM, alg)

	alg, err = ParseAlgorithm("chacha20-poly1305")
	require.NoError(t, err)
	assert.Equal(t, ChaCha20, alg)

	_, err = ParseAlgorithm("des")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}
