// Package mocks provides mock implementations of the auth use case interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
)

// MockAdminTokenRepository is a mock implementation of AdminTokenRepository for testing.
type MockAdminTokenRepository struct {
	mock.Mock
}

// Create mocks the Create method of AdminTokenRepository.
func (m *MockAdminTokenRepository) Create(ctx context.Context, token *authDomain.AdminToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// CreateFirst mocks the CreateFirst method of AdminTokenRepository.
func (m *MockAdminTokenRepository) CreateFirst(ctx context.Context, token *authDomain.AdminToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// GetByTokenHash mocks the GetByTokenHash method of AdminTokenRepository.
func (m *MockAdminTokenRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*authDomain.AdminToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AdminToken), args.Error(1)
}

// MockAdminTokenUseCase is a mock implementation of AdminTokenUseCase for testing.
type MockAdminTokenUseCase struct {
	mock.Mock
}

// Init mocks the Init method of AdminTokenUseCase.
func (m *MockAdminTokenUseCase) Init(
	ctx context.Context,
	input *authDomain.InitAdminInput,
) (*authDomain.InitAdminOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.InitAdminOutput), args.Error(1)
}

// Authenticate mocks the Authenticate method of AdminTokenUseCase.
func (m *MockAdminTokenUseCase) Authenticate(
	ctx context.Context,
	tokenHash string,
) (*authDomain.AdminToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AdminToken), args.Error(1)
}
