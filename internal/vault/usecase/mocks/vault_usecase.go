package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// MockVaultUseCase is a mock implementation of VaultUseCase for testing.
type MockVaultUseCase struct {
	mock.Mock
}

// Create mocks the Create method of VaultUseCase.
func (m *MockVaultUseCase) Create(
	ctx context.Context,
	input *vaultDomain.CreateKeyInput,
) (*vaultDomain.KeyRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.KeyRecord), args.Error(1)
}

// List mocks the List method of VaultUseCase.
func (m *MockVaultUseCase) List(ctx context.Context) ([]*vaultDomain.KeyRecordSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.KeyRecordSummary), args.Error(1)
}

// Update mocks the Update method of VaultUseCase.
func (m *MockVaultUseCase) Update(
	ctx context.Context,
	id string,
	input *vaultDomain.UpdateKeyInput,
) (*vaultDomain.KeyRecord, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.KeyRecord), args.Error(1)
}

// Delete mocks the Delete method of VaultUseCase.
func (m *MockVaultUseCase) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Rotate mocks the Rotate method of VaultUseCase.
func (m *MockVaultUseCase) Rotate(
	ctx context.Context,
	id string,
	newSecret []byte,
) (*vaultDomain.RotationResult, error) {
	args := m.Called(ctx, id, newSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.RotationResult), args.Error(1)
}

// Usage mocks the Usage method of VaultUseCase.
func (m *MockVaultUseCase) Usage(ctx context.Context, id string) (*vaultDomain.UsageStats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.UsageStats), args.Error(1)
}

// Release mocks the Release method of VaultUseCase.
func (m *MockVaultUseCase) Release(
	ctx context.Context,
	serviceName, callerIdentity string,
) (*vaultDomain.Release, error) {
	args := m.Called(ctx, serviceName, callerIdentity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Release), args.Error(1)
}

// Export mocks the Export method of VaultUseCase.
func (m *MockVaultUseCase) Export(ctx context.Context) (*vaultDomain.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Snapshot), args.Error(1)
}

// Import mocks the Import method of VaultUseCase.
func (m *MockVaultUseCase) Import(ctx context.Context, snapshot *vaultDomain.Snapshot) (int, error) {
	args := m.Called(ctx, snapshot)
	return args.Int(0), args.Error(1)
}

// Status mocks the Status method of VaultUseCase.
func (m *MockVaultUseCase) Status(ctx context.Context) (*vaultDomain.VaultStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.VaultStatus), args.Error(1)
}
