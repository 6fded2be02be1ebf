package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
	serviceMocks "github.com/allisson/keyvault/internal/auth/service/mocks"
	usecaseMocks "github.com/allisson/keyvault/internal/auth/usecase/mocks"
	"github.com/allisson/keyvault/internal/httputil"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAdminRouter(
	adminTokenUseCase *usecaseMocks.MockAdminTokenUseCase,
	tokenService *serviceMocks.MockTokenService,
) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AdminAuthMiddleware(adminTokenUseCase, tokenService, newDiscardLogger()))
	router.GET("/admin/keys", func(c *gin.Context) {
		token, ok := GetAdminToken(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token_id": token.ID.String()})
	})
	return router
}

func TestAdminAuthMiddleware(t *testing.T) {
	tokenID := uuid.Must(uuid.NewV7())
	token := &authDomain.AdminToken{ID: tokenID, TokenHash: "token-hash"}

	t.Run("Success_BearerHeader", func(t *testing.T) {
		adminTokenUseCase := &usecaseMocks.MockAdminTokenUseCase{}
		tokenService := &serviceMocks.MockTokenService{}
		tokenService.On("HashToken", "plain-token").Return("token-hash").Once()
		adminTokenUseCase.On("Authenticate", mock.Anything, "token-hash").Return(token, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/keys", nil)
		req.Header.Set("Authorization", "bearer plain-token")
		newAdminRouter(adminTokenUseCase, tokenService).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), tokenID.String())
		adminTokenUseCase.AssertExpectations(t)
	})

	t.Run("Success_APITokenHeader", func(t *testing.T) {
		adminTokenUseCase := &usecaseMocks.MockAdminTokenUseCase{}
		tokenService := &serviceMocks.MockTokenService{}
		tokenService.On("HashToken", "plain-token").Return("token-hash").Once()
		adminTokenUseCase.On("Authenticate", mock.Anything, "token-hash").Return(token, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/keys", nil)
		req.Header.Set(AdminTokenHeader, "plain-token")
		newAdminRouter(adminTokenUseCase, tokenService).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	missingCases := []struct {
		name   string
		header string
		value  string
	}{
		{name: "NoHeader"},
		{name: "WrongScheme", header: "Authorization", value: "Basic dXNlcjpwYXNz"},
		{name: "EmptyBearer", header: "Authorization", value: "Bearer "},
		{name: "BlankAPIToken", header: AdminTokenHeader, value: "   "},
	}
	for _, tc := range missingCases {
		t.Run("Error_"+tc.name, func(t *testing.T) {
			adminTokenUseCase := &usecaseMocks.MockAdminTokenUseCase{}
			tokenService := &serviceMocks.MockTokenService{}

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin/keys", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			newAdminRouter(adminTokenUseCase, tokenService).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			adminTokenUseCase.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
		})
	}

	t.Run("Error_InvalidToken", func(t *testing.T) {
		adminTokenUseCase := &usecaseMocks.MockAdminTokenUseCase{}
		tokenService := &serviceMocks.MockTokenService{}
		tokenService.On("HashToken", "forged").Return("forged-hash").Once()
		adminTokenUseCase.On("Authenticate", mock.Anything, "forged-hash").
			Return(nil, authDomain.ErrInvalidAdminToken).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/keys", nil)
		req.Header.Set("Authorization", "Bearer forged")
		newAdminRouter(adminTokenUseCase, tokenService).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "unauthorized", response.Error)
		assert.NotContains(t, w.Body.String(), "forged")
	})
}

func TestCallerAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(authenticator *serviceMocks.MockCallerAuthenticator) *gin.Engine {
		router := gin.New()
		router.Use(CallerAuthMiddleware(authenticator, newDiscardLogger()))
		router.POST("/contract/get-key", func(c *gin.Context) {
			caller, ok := GetCaller(c.Request.Context())
			require.True(t, ok)
			c.JSON(http.StatusOK, gin.H{"caller": caller.Identity})
		})
		return router
	}

	t.Run("Success", func(t *testing.T) {
		authenticator := &serviceMocks.MockCallerAuthenticator{}
		authenticator.On("Authenticate", mock.Anything, "0xabc", "sig").
			Return(&authDomain.Caller{Identity: "0xabc"}, nil).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/contract/get-key", nil)
		req.Header.Set(CallerIdentityHeader, "0xabc")
		req.Header.Set(CallerSignatureHeader, "sig")
		newRouter(authenticator).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"caller":"0xabc"}`, w.Body.String())
	})

	t.Run("Error_MissingCredentials", func(t *testing.T) {
		authenticator := &serviceMocks.MockCallerAuthenticator{}
		authenticator.On("Authenticate", mock.Anything, "", "").
			Return(nil, authDomain.ErrMissingCallerCredentials).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/contract/get-key", nil)
		newRouter(authenticator).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	_, ok := GetAdminToken(ctx)
	assert.False(t, ok)
	_, ok = GetCaller(ctx)
	assert.False(t, ok)

	token := &authDomain.AdminToken{ID: uuid.Must(uuid.NewV7())}
	caller := &authDomain.Caller{Identity: "0xabc"}
	ctx = WithCaller(WithAdminToken(ctx, token), caller)

	gotToken, ok := GetAdminToken(ctx)
	assert.True(t, ok)
	assert.Equal(t, token, gotToken)
	gotCaller, ok := GetCaller(ctx)
	assert.True(t, ok)
	assert.Equal(t, caller, gotCaller)
}
