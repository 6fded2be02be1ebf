package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authService "github.com/allisson/keyvault/internal/auth/service"
	authMocks "github.com/allisson/keyvault/internal/auth/service/mocks"
)

func TestRunCreateBootstrapSecret(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		secretService := authService.NewSecretService()

		var out bytes.Buffer
		err := RunCreateBootstrapSecret(secretService, &out, "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "ADMIN_BOOTSTRAP_SECRET_HASH='$argon2id$")
		assert.Contains(t, out.String(), "# X-Bootstrap-Secret: ")
	})

	t.Run("json-round-trip", func(t *testing.T) {
		secretService := authService.NewSecretService()

		var out bytes.Buffer
		err := RunCreateBootstrapSecret(secretService, &out, "json")
		require.NoError(t, err)

		var output bootstrapSecretOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &output))
		assert.NotEmpty(t, output.BootstrapSecret)
		assert.True(t, secretService.CompareSecret(output.BootstrapSecret, output.BootstrapSecretHash))
	})

	t.Run("invalid-format", func(t *testing.T) {
		err := RunCreateBootstrapSecret(authService.NewSecretService(), &bytes.Buffer{}, "yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})

	t.Run("generate-error", func(t *testing.T) {
		secretService := &authMocks.MockSecretService{}
		secretService.On("GenerateSecret").Return("", "", errors.New("entropy exhausted")).Once()

		err := RunCreateBootstrapSecret(secretService, &bytes.Buffer{}, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to generate bootstrap secret")
		secretService.AssertExpectations(t)
	})
}
