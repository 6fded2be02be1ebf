// Package mocks provides mock implementations of the vault use case interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// MockBackupRepository is a mock implementation of BackupRepository for testing.
type MockBackupRepository struct {
	mock.Mock
}

// Create mocks the Create method of BackupRepository.
func (m *MockBackupRepository) Create(ctx context.Context, backup *vaultDomain.Backup) error {
	args := m.Called(ctx, backup)
	return args.Error(0)
}

// Get mocks the Get method of BackupRepository.
func (m *MockBackupRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Backup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Backup), args.Error(1)
}

// List mocks the List method of BackupRepository.
func (m *MockBackupRepository) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Backup, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Backup), args.Error(1)
}

// Prune mocks the Prune method of BackupRepository.
func (m *MockBackupRepository) Prune(ctx context.Context, keep int) (int64, error) {
	args := m.Called(ctx, keep)
	return args.Get(0).(int64), args.Error(1)
}
