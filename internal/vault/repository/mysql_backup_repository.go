package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/keyvault/internal/database"
	apperrors "github.com/allisson/keyvault/internal/errors"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// MySQLBackupRepository stores registry snapshots in MySQL. Ids are stored as BINARY(16).
type MySQLBackupRepository struct {
	db *sql.DB
}

// Create inserts a new backup. Uses transaction support via database.GetTx().
func (m *MySQLBackupRepository) Create(ctx context.Context, backup *vaultDomain.Backup) error {
	querier := database.GetTx(ctx, m.db)

	id, err := backup.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal backup id")
	}

	query := `INSERT INTO vault_backups (id, key_count, payload, created_at) VALUES (?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, backup.KeyCount, backup.Payload, backup.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create backup")
	}
	return nil
}

// Get retrieves a backup with its payload.
func (m *MySQLBackupRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Backup, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal backup id")
	}

	query := `SELECT id, key_count, payload, created_at FROM vault_backups WHERE id = ?`

	var backup vaultDomain.Backup
	var rawID []byte
	err = querier.QueryRowContext(ctx, query, idBytes).Scan(
		&rawID,
		&backup.KeyCount,
		&backup.Payload,
		&backup.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrBackupNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get backup")
	}

	if err := backup.ID.UnmarshalBinary(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal backup id")
	}
	return &backup, nil
}

// List returns backup metadata newest first. Payloads are not loaded.
func (m *MySQLBackupRepository) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Backup, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, key_count, created_at
			  FROM vault_backups
			  ORDER BY id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list backups")
	}
	defer func() {
		_ = rows.Close()
	}()

	backups := make([]*vaultDomain.Backup, 0)
	for rows.Next() {
		var backup vaultDomain.Backup
		var rawID []byte
		if err := rows.Scan(&rawID, &backup.KeyCount, &backup.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan backup")
		}
		if err := backup.ID.UnmarshalBinary(rawID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal backup id")
		}
		backups = append(backups, &backup)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate backups")
	}
	return backups, nil
}

// Prune deletes every backup except the newest keep ones and returns how many were removed.
// MySQL rejects LIMIT inside IN subqueries, so the kept ids go through a derived table.
func (m *MySQLBackupRepository) Prune(ctx context.Context, keep int) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM vault_backups
			  WHERE id NOT IN (
			      SELECT id FROM (SELECT id FROM vault_backups ORDER BY id DESC LIMIT ?) AS kept
			  )`

	result, err := querier.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to prune backups")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return deleted, nil
}

// NewMySQLBackupRepository creates a new MySQL backup repository.
func NewMySQLBackupRepository(db *sql.DB) *MySQLBackupRepository {
	return &MySQLBackupRepository{db: db}
}
