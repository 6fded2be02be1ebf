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

// PostgreSQLBackupRepository stores registry snapshots in PostgreSQL.
type PostgreSQLBackupRepository struct {
	db *sql.DB
}

// Create inserts a new backup. Uses transaction support via database.GetTx().
func (p *PostgreSQLBackupRepository) Create(ctx context.Context, backup *vaultDomain.Backup) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO vault_backups (id, key_count, payload, created_at) VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(ctx, query, backup.ID, backup.KeyCount, backup.Payload, backup.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create backup")
	}
	return nil
}

// Get retrieves a backup with its payload.
func (p *PostgreSQLBackupRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Backup, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, key_count, payload, created_at FROM vault_backups WHERE id = $1`

	var backup vaultDomain.Backup
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&backup.ID,
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
	return &backup, nil
}

// List returns backup metadata newest first. Payloads are not loaded.
func (p *PostgreSQLBackupRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*vaultDomain.Backup, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, key_count, created_at
			  FROM vault_backups
			  ORDER BY id DESC
			  LIMIT $1 OFFSET $2`

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
		if err := rows.Scan(&backup.ID, &backup.KeyCount, &backup.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan backup")
		}
		backups = append(backups, &backup)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate backups")
	}
	return backups, nil
}

// Prune deletes every backup except the newest keep ones and returns how many were removed.
func (p *PostgreSQLBackupRepository) Prune(ctx context.Context, keep int) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM vault_backups
			  WHERE id NOT IN (SELECT id FROM vault_backups ORDER BY id DESC LIMIT $1)`

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

// NewPostgreSQLBackupRepository creates a new PostgreSQL backup repository.
func NewPostgreSQLBackupRepository(db *sql.DB) *PostgreSQLBackupRepository {
	return &PostgreSQLBackupRepository{db: db}
}
