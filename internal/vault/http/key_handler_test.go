package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/httputil"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
	"github.com/allisson/keyvault/internal/vault/http/dto"
	"github.com/allisson/keyvault/internal/vault/usecase/mocks"
)

func setupKeyHandler(t *testing.T) (*KeyHandler, *mocks.MockVaultUseCase) {
	t.Helper()

	mockVaultUseCase := &mocks.MockVaultUseCase{}
	t.Cleanup(func() { mockVaultUseCase.AssertExpectations(t) })

	return NewKeyHandler(mockVaultUseCase, 100, newTestLogger()), mockVaultUseCase
}

func TestKeyHandler_CreateHandler(t *testing.T) {
	t.Run("Success_DefaultRateLimit", func(t *testing.T) {
		handler, mockUseCase := setupKeyHandler(t)

		mockUseCase.On("Create", mock.Anything, &vaultDomain.CreateKeyInput{
			ServiceName:    "weatherapi",
			Secret:         []byte("sk-live-123"),
			AllowedCallers: []string{"0xabc"},
			RateLimit:      100,
		}).Return(&vaultDomain.KeyRecord{ID: "key-1", ServiceName: "weatherapi"}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/admin/keys", map[string]any{
			"service_name":      "weatherapi",
			"api_key":           "sk-live-123",
			"allowed_contracts": []string{"0xabc"},
		})
		handler.CreateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response dto.CreateKeyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "key-1", response.KeyID)
		assert.Equal(t, "API key stored securely", response.Message)
		assert.NotContains(t, w.Body.String(), "sk-live-123")
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		handler, _ := setupKeyHandler(t)

		c, w := createTestContext(http.MethodPost, "/admin/keys", "{not json")
		handler.CreateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_ValidationFailure", func(t *testing.T) {
		handler, _ := setupKeyHandler(t)

		c, w := createTestContext(http.MethodPost, "/admin/keys", map[string]any{
			"service_name": "weatherapi",
			"api_key":      "sk",
			"rate_limit":   0,
		})
		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "rate_limit")
	})
}

func TestKeyHandler_ListHandler(t *testing.T) {
	handler, mockUseCase := setupKeyHandler(t)

	mockUseCase.On("List", mock.Anything).Return([]*vaultDomain.KeyRecordSummary{
		{ID: "key-1", ServiceName: "weatherapi", RateLimit: 10, Active: true, TotalCalls: 2},
		{ID: "key-2", ServiceName: "mapsapi", RateLimit: 5},
	}, nil).Once()

	c, w := createTestContext(http.MethodGet, "/admin/keys", nil)
	handler.ListHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response dto.ListKeysResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Keys, 2)
	assert.Equal(t, "key-1", response.Keys[0].KeyID)
	assert.Equal(t, int64(2), response.Keys[0].TotalCalls)
}

func TestKeyHandler_UpdateHandler(t *testing.T) {
	t.Run("Success_Deactivate", func(t *testing.T) {
		handler, mockUseCase := setupKeyHandler(t)

		mockUseCase.On("Update", mock.Anything, "key-1", mock.MatchedBy(func(input *vaultDomain.UpdateKeyInput) bool {
			return input.Active != nil && !*input.Active && input.Secret == nil
		})).Return(&vaultDomain.KeyRecord{ID: "key-1"}, nil).Once()

		c, w := createTestContext(http.MethodPut, "/admin/keys/key-1", map[string]any{"active": false})
		c.Params = gin.Params{{Key: "id", Value: "key-1"}}
		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"key_id":"key-1","message":"Key updated successfully"}`, w.Body.String())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, mockUseCase := setupKeyHandler(t)

		mockUseCase.On("Update", mock.Anything, "missing", mock.Anything).
			Return(nil, vaultDomain.ErrKeyNotFound).
			Once()

		c, w := createTestContext(http.MethodPut, "/admin/keys/missing", map[string]any{"rate_limit": 5})
		c.Params = gin.Params{{Key: "id", Value: "missing"}}
		handler.UpdateHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "key not found", response.Message)
	})
}

func TestKeyHandler_DeleteHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupKeyHandler(t)
		mockUseCase.On("Delete", mock.Anything, "key-1").Return(nil).Once()

		c, w := createTestContext(http.MethodDelete, "/admin/keys/key-1", nil)
		c.Params = gin.Params{{Key: "id", Value: "key-1"}}
		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Key deleted successfully"}`, w.Body.String())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, mockUseCase := setupKeyHandler(t)
		mockUseCase.On("Delete", mock.Anything, "key-1").Return(vaultDomain.ErrKeyNotFound).Once()

		c, w := createTestContext(http.MethodDelete, "/admin/keys/key-1", nil)
		c.Params = gin.Params{{Key: "id", Value: "key-1"}}
		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestKeyHandler_RotateHandler(t *testing.T) {
	rotatedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	result := &vaultDomain.RotationResult{KeyID: "key-1", OldKeyPreview: "sk-live-...", RotatedAt: rotatedAt}

	t.Run("Success_JSONBody", func(t *testing.T) {
		handler, mockUseCase := setupKeyHandler(t)
		mockUseCase.On("Rotate", mock.Anything, "key-1", []byte("sk-new")).Return(result, nil).Once()

		c, w := createTestContext(http.MethodPost, "/admin/keys/key-1/rotate", map[string]any{"new_api_key": "sk-new"})
		c.Params = gin.Params{{Key: "id", Value: "key-1"}}
		handler.RotateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.RotateKeyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "sk-live-...", response.OldKeyPreview)
		assert.Equal(t, "Key rotated successfully", response.Message)
		assert.NotContains(t, w.Body.String(), "sk-new")
	})

	t.Run("Success_QueryParameter", func(t *testing.T) {
		handler, mockUseCase := setupKeyHandler(t)
		mockUseCase.On("Rotate", mock.Anything, "key-1", []byte("sk-new")).Return(result, nil).Once()

		c, w := createTestContext(http.MethodPost, "/admin/keys/key-1/rotate?new_api_key=sk-new", nil)
		c.Params = gin.Params{{Key: "id", Value: "key-1"}}
		handler.RotateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Success_QueryParameterWithChunkedEmptyBody", func(t *testing.T) {
		handler, mockUseCase := setupKeyHandler(t)
		mockUseCase.On("Rotate", mock.Anything, "key-1", []byte("sk-new")).Return(result, nil).Once()

		c, w := createTestContext(http.MethodPost, "/admin/keys/key-1/rotate?new_api_key=sk-new", "")
		c.Request.ContentLength = -1
		c.Request.TransferEncoding = []string{"chunked"}
		c.Params = gin.Params{{Key: "id", Value: "key-1"}}
		handler.RotateHandler(c)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("Error_MalformedBody", func(t *testing.T) {
		handler, _ := setupKeyHandler(t)

		c, w := createTestContext(http.MethodPost, "/admin/keys/key-1/rotate?new_api_key=sk-new", "{")
		c.Params = gin.Params{{Key: "id", Value: "key-1"}}
		handler.RotateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_MissingNewKey", func(t *testing.T) {
		handler, _ := setupKeyHandler(t)

		c, w := createTestContext(http.MethodPost, "/admin/keys/key-1/rotate", nil)
		c.Params = gin.Params{{Key: "id", Value: "key-1"}}
		handler.RotateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestKeyHandler_UsageHandler(t *testing.T) {
	handler, mockUseCase := setupKeyHandler(t)

	lastUsed := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mockUseCase.On("Usage", mock.Anything, "key-1").Return(&vaultDomain.UsageStats{
		KeyID:         "key-1",
		TotalCalls:    12,
		CallsLastHour: 3,
		LastUsed:      &lastUsed,
		RateLimitHits: 1,
		RateLimit:     10,
		Active:        true,
	}, nil).Once()

	c, w := createTestContext(http.MethodGet, "/admin/usage/key-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "key-1"}}
	handler.UsageHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response dto.UsageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(12), response.TotalCalls)
	assert.Equal(t, 3, response.CallsLastHour)
	assert.Equal(t, int64(1), response.RateLimitHits)
	assert.True(t, response.Active)
}

func TestKeyHandler_ExportImport(t *testing.T) {
	exportedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	snapshot := &vaultDomain.Snapshot{
		Keys: map[string]*vaultDomain.KeyRecord{
			"key-1": {ID: "key-1", ServiceName: "weatherapi", SealedSecret: []byte{1, 2, 3}, RateLimit: 10, Active: true},
		},
		Usage:      map[string]*vaultDomain.UsageCounter{"key-1": {TotalCalls: 4}},
		ExportedAt: exportedAt,
	}

	t.Run("Export", func(t *testing.T) {
		handler, mockUseCase := setupKeyHandler(t)
		mockUseCase.On("Export", mock.Anything).Return(snapshot, nil).Once()

		c, w := createTestContext(http.MethodGet, "/admin/export", nil)
		handler.ExportHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body, "keys")
		assert.Contains(t, body, "usage")
		assert.Contains(t, body, "exported_at")
	})

	t.Run("Import", func(t *testing.T) {
		handler, mockUseCase := setupKeyHandler(t)
		mockUseCase.On("Import", mock.Anything, mock.MatchedBy(func(s *vaultDomain.Snapshot) bool {
			record := s.Keys["key-1"]
			return record != nil && string(record.SealedSecret) == string([]byte{1, 2, 3}) &&
				s.Usage["key-1"].TotalCalls == 4
		})).Return(1, nil).Once()

		c, w := createTestContext(http.MethodPost, "/admin/import", snapshot)
		handler.ImportHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ImportResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 1, response.KeysImported)
		assert.NotEmpty(t, response.Warning)
	})

	t.Run("Import_InvalidSnapshot", func(t *testing.T) {
		handler, mockUseCase := setupKeyHandler(t)
		mockUseCase.On("Import", mock.Anything, mock.Anything).
			Return(0, apperrors.Wrap(vaultDomain.ErrInvalidSnapshot, "key \"x\" has no sealed_secret")).
			Once()

		c, w := createTestContext(http.MethodPost, "/admin/import", map[string]any{"keys": map[string]any{}})
		handler.ImportHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Import_MalformedJSON", func(t *testing.T) {
		handler, _ := setupKeyHandler(t)

		c, w := createTestContext(http.MethodPost, "/admin/import", "[")
		handler.ImportHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
