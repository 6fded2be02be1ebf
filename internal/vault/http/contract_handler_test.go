package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
	authHTTP "github.com/allisson/keyvault/internal/auth/http"
	"github.com/allisson/keyvault/internal/httputil"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
	"github.com/allisson/keyvault/internal/vault/http/dto"
	"github.com/allisson/keyvault/internal/vault/usecase/mocks"
)

func setupContractHandler(t *testing.T) (*ContractHandler, *mocks.MockVaultUseCase) {
	t.Helper()

	mockVaultUseCase := &mocks.MockVaultUseCase{}
	t.Cleanup(func() { mockVaultUseCase.AssertExpectations(t) })

	return NewContractHandler(mockVaultUseCase, newTestLogger()), mockVaultUseCase
}

func withCaller(c *gin.Context, identity string) {
	ctx := authHTTP.WithCaller(c.Request.Context(), &authDomain.Caller{Identity: identity})
	c.Request = c.Request.WithContext(ctx)
}

func TestContractHandler_GetKeyHandler(t *testing.T) {
	t.Run("Success_ZeroesSecretAfterResponse", func(t *testing.T) {
		handler, mockUseCase := setupContractHandler(t)

		release := &vaultDomain.Release{
			KeyID:       "key-1",
			ServiceName: "weatherapi",
			Secret:      []byte("sk-live-123"),
			RateLimit:   10,
			Remaining:   9,
		}
		mockUseCase.On("Release", mock.Anything, "weatherapi", "0xabc").Return(release, nil).Once()

		c, w := createTestContext(http.MethodPost, "/contract/get-key", map[string]any{
			"contract_address": "0xabc",
			"service_name":     "weatherapi",
		})
		withCaller(c, "0xabc")
		handler.GetKeyHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.GetKeyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, dto.GetKeyResponse{
			APIKey:         "sk-live-123",
			ServiceName:    "weatherapi",
			RateLimit:      10,
			CallsRemaining: 9,
		}, response)
		assert.Equal(t, make([]byte, len("sk-live-123")), release.Secret)
	})

	t.Run("Success_BodyWithoutContractAddress", func(t *testing.T) {
		handler, mockUseCase := setupContractHandler(t)
		mockUseCase.On("Release", mock.Anything, "weatherapi", "0xabc").
			Return(&vaultDomain.Release{Secret: []byte("sk"), ServiceName: "weatherapi", RateLimit: 1}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/contract/get-key", map[string]any{"service_name": "weatherapi"})
		withCaller(c, "0xabc")
		handler.GetKeyHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_BodyAddressDiffersFromCaller", func(t *testing.T) {
		handler, _ := setupContractHandler(t)

		c, w := createTestContext(http.MethodPost, "/contract/get-key", map[string]any{
			"contract_address": "0xother",
			"service_name":     "weatherapi",
		})
		withCaller(c, "0xabc")
		handler.GetKeyHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error_NoCaller", func(t *testing.T) {
		handler, _ := setupContractHandler(t)

		c, w := createTestContext(http.MethodPost, "/contract/get-key", map[string]any{"service_name": "weatherapi"})
		handler.GetKeyHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_MissingServiceName", func(t *testing.T) {
		handler, _ := setupContractHandler(t)

		c, w := createTestContext(http.MethodPost, "/contract/get-key", map[string]any{})
		withCaller(c, "0xabc")
		handler.GetKeyHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	failures := []struct {
		name       string
		err        error
		statusCode int
		message    string
	}{
		{
			name:       "ServiceNotFound",
			err:        vaultDomain.ErrServiceNotFound,
			statusCode: http.StatusNotFound,
			message:    "no active key found for this service",
		},
		{
			name:       "CallerNotAuthorized",
			err:        vaultDomain.ErrCallerNotAuthorized,
			statusCode: http.StatusForbidden,
			message:    "contract not authorized to use this key",
		},
		{
			name: "RateLimited",
			err: vaultDomain.NewRateLimitError(vaultDomain.Admission{
				RateLimit:  10,
				RetryAfter: 90 * time.Second,
			}),
			statusCode: http.StatusTooManyRequests,
			message:    "rate limit exceeded (10 requests/hour)",
		},
		{
			name:       "Integrity",
			err:        vaultDomain.ErrVaultIntegrity,
			statusCode: http.StatusInternalServerError,
			message:    "An internal error occurred",
		},
	}

	for _, tt := range failures {
		t.Run("Error_"+tt.name, func(t *testing.T) {
			handler, mockUseCase := setupContractHandler(t)
			mockUseCase.On("Release", mock.Anything, "weatherapi", "0xabc").Return(nil, tt.err).Once()

			c, w := createTestContext(http.MethodPost, "/contract/get-key", map[string]any{"service_name": "weatherapi"})
			withCaller(c, "0xabc")
			handler.GetKeyHandler(c)

			assert.Equal(t, tt.statusCode, w.Code)
			var response httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.message, response.Message)

			if tt.statusCode == http.StatusTooManyRequests {
				assert.Equal(t, 10, response.RateLimit)
				assert.Equal(t, strconv.Itoa(90), w.Header().Get("Retry-After"))
			}
		})
	}
}
