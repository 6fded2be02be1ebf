package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
	vaultUseCase "github.com/allisson/keyvault/internal/vault/usecase"
)

// Opener opens sealed secrets. *service.CipherBox satisfies it.
type Opener interface {
	Open(sealed []byte) ([]byte, error)
}

// RunVerifyBackup loads a stored backup and checks that every sealed secret in it opens under the
// current master key. Plaintext is wiped as soon as it is opened and never written out.
func RunVerifyBackup(
	ctx context.Context,
	backupRepo vaultUseCase.BackupRepository,
	opener Opener,
	logger *slog.Logger,
	writer io.Writer,
	rawID string,
) error {
	if backupRepo == nil {
		return vaultDomain.ErrBackupsDisabled
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid backup id %q: %w", rawID, err)
	}

	backup, err := backupRepo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load backup: %w", err)
	}

	var snapshot vaultDomain.Snapshot
	if err := json.Unmarshal(backup.Payload, &snapshot); err != nil {
		return fmt.Errorf("backup %s has an unreadable payload: %w", id, err)
	}
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("backup %s: %w", id, err)
	}

	keyIDs := make([]string, 0, len(snapshot.Keys))
	for keyID := range snapshot.Keys {
		keyIDs = append(keyIDs, keyID)
	}
	sort.Strings(keyIDs)

	var failed []string
	for _, keyID := range keyIDs {
		record := snapshot.Keys[keyID]
		plaintext, err := opener.Open(record.SealedSecret)
		if err != nil {
			logger.Warn("sealed secret does not open",
				slog.String("backup_id", id.String()),
				slog.String("key_id", keyID),
				slog.String("service_name", record.ServiceName),
			)
			failed = append(failed, keyID)
			_, _ = fmt.Fprintf(writer, "FAILED %s (%s)\n", keyID, record.ServiceName)
			continue
		}
		cryptoDomain.Zero(plaintext)
		_, _ = fmt.Fprintf(writer, "ok     %s (%s)\n", keyID, record.ServiceName)
	}

	_, _ = fmt.Fprintf(writer, "\nbackup %s: %d keys, %d failed\n", id, len(keyIDs), len(failed))

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d keys in backup %s do not open under the configured master key",
			len(failed), len(keyIDs), id)
	}
	return nil
}
