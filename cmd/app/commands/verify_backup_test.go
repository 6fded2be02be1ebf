package commands

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
	vaultMocks "github.com/allisson/keyvault/internal/vault/usecase/mocks"
)

func newTestBox(t *testing.T) *cryptoService.CipherBox {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	box, err := cryptoService.NewCipherBox(
		cryptoService.NewAEADManager(),
		&cryptoDomain.MasterKey{Key: key},
		cryptoDomain.AESGCM,
	)
	require.NoError(t, err)
	return box
}

func backupOf(t *testing.T, box *cryptoService.CipherBox, secrets map[string]string) *vaultDomain.Backup {
	t.Helper()
	snapshot := vaultDomain.Snapshot{
		Keys:       map[string]*vaultDomain.KeyRecord{},
		Usage:      map[string]*vaultDomain.UsageCounter{},
		ExportedAt: time.Now().UTC(),
	}
	for id, secret := range secrets {
		sealed, err := box.Seal([]byte(secret))
		require.NoError(t, err)
		snapshot.Keys[id] = &vaultDomain.KeyRecord{
			ID:           id,
			ServiceName:  "svc-" + id,
			SealedSecret: sealed,
			RateLimit:    10,
			Active:       true,
		}
	}
	payload, err := json.Marshal(snapshot)
	require.NoError(t, err)
	return &vaultDomain.Backup{
		ID:        uuid.Must(uuid.NewV7()),
		KeyCount:  len(secrets),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

func TestRunVerifyBackup(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("all keys open", func(t *testing.T) {
		box := newTestBox(t)
		backup := backupOf(t, box, map[string]string{"a": "sk-aaaaaaaaaa", "b": "sk-bbbbbbbbbb"})

		repo := &vaultMocks.MockBackupRepository{}
		repo.On("Get", ctx, backup.ID).Return(backup, nil)

		var out bytes.Buffer
		err := RunVerifyBackup(ctx, repo, box, logger, &out, backup.ID.String())
		require.NoError(t, err)
		assert.Contains(t, out.String(), "ok     a (svc-a)")
		assert.Contains(t, out.String(), "ok     b (svc-b)")
		assert.Contains(t, out.String(), "2 keys, 0 failed")
		assert.NotContains(t, out.String(), "sk-")
		repo.AssertExpectations(t)
	})

	t.Run("different master key", func(t *testing.T) {
		backup := backupOf(t, newTestBox(t), map[string]string{"a": "sk-aaaaaaaaaa"})

		repo := &vaultMocks.MockBackupRepository{}
		repo.On("Get", ctx, backup.ID).Return(backup, nil)

		var out bytes.Buffer
		err := RunVerifyBackup(ctx, repo, newTestBox(t), logger, &out, backup.ID.String())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 1 keys")
		assert.Contains(t, out.String(), "FAILED a (svc-a)")
	})

	t.Run("backups disabled", func(t *testing.T) {
		err := RunVerifyBackup(ctx, nil, newTestBox(t), logger, io.Discard, uuid.NewString())
		assert.ErrorIs(t, err, vaultDomain.ErrBackupsDisabled)
	})

	t.Run("invalid id", func(t *testing.T) {
		err := RunVerifyBackup(ctx, &vaultMocks.MockBackupRepository{}, newTestBox(t), logger, io.Discard, "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid backup id")
	})

	t.Run("backup not found", func(t *testing.T) {
		id := uuid.Must(uuid.NewV7())
		repo := &vaultMocks.MockBackupRepository{}
		repo.On("Get", ctx, id).Return(nil, vaultDomain.ErrBackupNotFound)

		err := RunVerifyBackup(ctx, repo, newTestBox(t), logger, io.Discard, id.String())
		require.Error(t, err)
		assert.True(t, errors.Is(err, vaultDomain.ErrBackupNotFound))
	})

	t.Run("corrupt payload", func(t *testing.T) {
		backup := &vaultDomain.Backup{ID: uuid.Must(uuid.NewV7()), Payload: []byte("{")}
		repo := &vaultMocks.MockBackupRepository{}
		repo.On("Get", ctx, backup.ID).Return(backup, nil)

		err := RunVerifyBackup(ctx, repo, newTestBox(t), logger, io.Discard, backup.ID.String())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unreadable payload")
	})

}
