package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/keyvault/internal/database"
	apperrors "github.com/allisson/keyvault/internal/errors"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// backupUseCase implements BackupUseCase. Backups are export snapshots, so they hold sealed
// secrets only and restore with the same master key that produced them.
type backupUseCase struct {
	txManager  database.TxManager
	backupRepo BackupRepository
	registry   Registry
	retention  int
	logger     *slog.Logger
}

// Create snapshots the registry and stores it. When retention is positive, older backups beyond
// the newest retention are pruned in the same transaction.
func (b *backupUseCase) Create(ctx context.Context) (*vaultDomain.Backup, error) {
	if b.backupRepo == nil {
		return nil, vaultDomain.ErrBackupsDisabled
	}

	snapshot, err := b.registry.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode snapshot")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate backup id")
	}

	backup := &vaultDomain.Backup{
		ID:        id,
		KeyCount:  len(snapshot.Keys),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	err = b.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := b.backupRepo.Create(ctx, backup); err != nil {
			return err
		}
		if b.retention <= 0 {
			return nil
		}
		pruned, err := b.backupRepo.Prune(ctx, b.retention)
		if err != nil {
			return err
		}
		if pruned > 0 && b.logger != nil {
			b.logger.InfoContext(ctx, "pruned old backups", slog.Int64("count", pruned))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return backup, nil
}

// List returns backup metadata newest first.
func (b *backupUseCase) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Backup, error) {
	if b.backupRepo == nil {
		return nil, vaultDomain.ErrBackupsDisabled
	}
	return b.backupRepo.List(ctx, offset, limit)
}

// Restore loads a stored snapshot into the registry, replacing its whole state.
func (b *backupUseCase) Restore(ctx context.Context, id uuid.UUID) (int, error) {
	if b.backupRepo == nil {
		return 0, vaultDomain.ErrBackupsDisabled
	}
	backup, err := b.backupRepo.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	var snapshot vaultDomain.Snapshot
	if err := json.Unmarshal(backup.Payload, &snapshot); err != nil {
		return 0, apperrors.Wrap(vaultDomain.ErrInvalidSnapshot, err.Error())
	}

	count, err := b.registry.Restore(ctx, &snapshot)
	if err != nil {
		return 0, err
	}

	if b.logger != nil {
		b.logger.WarnContext(ctx, "vault state replaced by backup restore",
			slog.String("backup_id", id.String()),
			slog.Int("key_count", count),
		)
	}
	return count, nil
}

// NewBackupUseCase creates a new BackupUseCase.
func NewBackupUseCase(
	txManager database.TxManager,
	backupRepo BackupRepository,
	registry Registry,
	retention int,
	logger *slog.Logger,
) BackupUseCase {
	return &backupUseCase{
		txManager:  txManager,
		backupRepo: backupRepo,
		registry:   registry,
		retention:  retention,
		logger:     logger,
	}
}
