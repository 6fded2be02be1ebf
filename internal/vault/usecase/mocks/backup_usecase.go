package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// MockBackupUseCase is a mock implementation of BackupUseCase for testing.
type MockBackupUseCase struct {
	mock.Mock
}

// Create mocks the Create method of BackupUseCase.
func (m *MockBackupUseCase) Create(ctx context.Context) (*vaultDomain.Backup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Backup), args.Error(1)
}

// List mocks the List method of BackupUseCase.
func (m *MockBackupUseCase) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Backup, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Backup), args.Error(1)
}

// Restore mocks the Restore method of BackupUseCase.
func (m *MockBackupUseCase) Restore(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}
