package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/keyvault/internal/auth/domain"
	usecaseMocks "github.com/allisson/keyvault/internal/auth/usecase/mocks"
)

func setupInitHandler(t *testing.T) (*InitHandler, *usecaseMocks.MockAdminTokenUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	adminTokenUseCase := &usecaseMocks.MockAdminTokenUseCase{}
	return NewInitHandler(adminTokenUseCase, newDiscardLogger()), adminTokenUseCase
}

func TestInitHandler_InitHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, adminTokenUseCase := setupInitHandler(t)
		adminTokenUseCase.On("Init", mock.Anything, &authDomain.InitAdminInput{BootstrapSecret: "bootstrap"}).
			Return(&authDomain.InitAdminOutput{PlainToken: "plain-token"}, nil).
			Once()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/admin/init", nil)
		c.Request.Header.Set(BootstrapSecretHeader, "bootstrap")

		handler.InitHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response InitAdminResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "plain-token", response.AdminToken)
		assert.NotEmpty(t, response.Message)
		assert.Nil(t, response.ExpiresAt)
		adminTokenUseCase.AssertExpectations(t)
	})

	t.Run("Error_AlreadyInitialized", func(t *testing.T) {
		handler, adminTokenUseCase := setupInitHandler(t)
		adminTokenUseCase.On("Init", mock.Anything, &authDomain.InitAdminInput{}).
			Return(nil, authDomain.ErrAdminAlreadyInitialized).
			Once()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/admin/init", nil)

		handler.InitHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_InvalidBootstrapSecret", func(t *testing.T) {
		handler, adminTokenUseCase := setupInitHandler(t)
		adminTokenUseCase.On("Init", mock.Anything, &authDomain.InitAdminInput{BootstrapSecret: "wrong"}).
			Return(nil, authDomain.ErrInvalidBootstrapSecret).
			Once()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/admin/init", nil)
		c.Request.Header.Set(BootstrapSecretHeader, "wrong")

		handler.InitHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotContains(t, w.Body.String(), "wrong")
	})
}
