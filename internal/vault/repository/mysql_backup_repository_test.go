package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

func TestNewMySQLBackupRepository(t *testing.T) {
	db, _ := newMockDB(t)

	repo := NewMySQLBackupRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &MySQLBackupRepository{}, repo)
}

func TestMySQLBackupRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	backup := newTestBackup()
	id, err := backup.ID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO vault_backups (id, key_count, payload, created_at) VALUES (?, ?, ?, ?)`)).
		WithArgs(id, backup.KeyCount, backup.Payload, backup.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, NewMySQLBackupRepository(db).Create(context.Background(), backup))
}

func TestMySQLBackupRepository_Get(t *testing.T) {
	ctx := context.Background()
	backup := newTestBackup()
	id, err := backup.ID.MarshalBinary()
	require.NoError(t, err)
	query := regexp.QuoteMeta(`SELECT id, key_count, payload, created_at FROM vault_backups WHERE id = ?`)

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		rows := sqlmock.NewRows([]string{"id", "key_count", "payload", "created_at"}).
			AddRow(id, backup.KeyCount, backup.Payload, backup.CreatedAt)
		mock.ExpectQuery(query).WithArgs(id).WillReturnRows(rows)

		got, err := NewMySQLBackupRepository(db).Get(ctx, backup.ID)
		require.NoError(t, err)
		assert.Equal(t, backup, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(query).WithArgs(id).WillReturnError(sql.ErrNoRows)

		_, err := NewMySQLBackupRepository(db).Get(ctx, backup.ID)
		assert.ErrorIs(t, err, vaultDomain.ErrBackupNotFound)
	})

	t.Run("CorruptID", func(t *testing.T) {
		db, mock := newMockDB(t)
		rows := sqlmock.NewRows([]string{"id", "key_count", "payload", "created_at"}).
			AddRow([]byte{1, 2, 3}, backup.KeyCount, backup.Payload, backup.CreatedAt)
		mock.ExpectQuery(query).WithArgs(id).WillReturnRows(rows)

		_, err := NewMySQLBackupRepository(db).Get(ctx, backup.ID)
		assert.ErrorContains(t, err, "failed to unmarshal backup id")
	})
}

func TestMySQLBackupRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	backup := newTestBackup()
	id, err := backup.ID.MarshalBinary()
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "key_count", "created_at"}).
		AddRow(id, backup.KeyCount, backup.CreatedAt)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, key_count, created_at`)).
		WithArgs(50, 0).
		WillReturnRows(rows)

	backups, err := NewMySQLBackupRepository(db).List(context.Background(), 0, 50)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, backup.ID, backups[0].ID)
	assert.Equal(t, 2, backups[0].KeyCount)
}

func TestMySQLBackupRepository_Prune(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`SELECT id FROM (SELECT id FROM vault_backups ORDER BY id DESC LIMIT ?) AS kept`)).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := NewMySQLBackupRepository(db).Prune(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}
