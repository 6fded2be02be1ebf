// Package mocks provides mock implementations of the auth service interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
)

// MockTokenService is a mock implementation of TokenService for testing.
type MockTokenService struct {
	mock.Mock
}

// GenerateToken mocks the GenerateToken method of TokenService.
func (m *MockTokenService) GenerateToken() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

// HashToken mocks the HashToken method of TokenService.
func (m *MockTokenService) HashToken(plainToken string) string {
	args := m.Called(plainToken)
	return args.String(0)
}

// MockSecretService is a mock implementation of SecretService for testing.
type MockSecretService struct {
	mock.Mock
}

// GenerateSecret mocks the GenerateSecret method of SecretService.
func (m *MockSecretService) GenerateSecret() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

// HashSecret mocks the HashSecret method of SecretService.
func (m *MockSecretService) HashSecret(plainSecret string) (string, error) {
	args := m.Called(plainSecret)
	return args.String(0), args.Error(1)
}

// CompareSecret mocks the CompareSecret method of SecretService.
func (m *MockSecretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	args := m.Called(plainSecret, hashedSecret)
	return args.Bool(0)
}

// MockCallerAuthenticator is a mock implementation of CallerAuthenticator for testing.
type MockCallerAuthenticator struct {
	mock.Mock
}

// Authenticate mocks the Authenticate method of CallerAuthenticator.
func (m *MockCallerAuthenticator) Authenticate(
	ctx context.Context,
	identity, signature string,
) (*authDomain.Caller, error) {
	args := m.Called(ctx, identity, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Caller), args.Error(1)
}
