package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

func TestMapKeyRecordToCreateResponse(t *testing.T) {
	record := &vaultDomain.KeyRecord{
		ID:           "key-1",
		ServiceName:  "weatherapi",
		SealedSecret: []byte("sealed"),
	}

	body, err := json.Marshal(MapKeyRecordToCreateResponse(record))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"key_id":"key-1","service_name":"weatherapi","message":"API key stored securely"}`,
		string(body),
	)
}

func TestMapSummariesToListResponse(t *testing.T) {
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	summaries := []*vaultDomain.KeyRecordSummary{
		{ID: "key-1", ServiceName: "weatherapi", RateLimit: 10, Active: true, CreatedAt: createdAt, TotalCalls: 3},
	}

	response := MapSummariesToListResponse(summaries)
	require.Len(t, response.Keys, 1)
	assert.Equal(t, "key-1", response.Keys[0].KeyID)
	assert.Equal(t, int64(3), response.Keys[0].TotalCalls)
	assert.Equal(t, []string{}, response.Keys[0].AllowedContracts)

	body, err := json.Marshal(response)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "sealed")

	empty, err := json.Marshal(MapSummariesToListResponse(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"keys":[]}`, string(empty))
}

func TestMapReleaseToResponse(t *testing.T) {
	release := &vaultDomain.Release{
		KeyID:       "key-1",
		ServiceName: "weatherapi",
		Secret:      []byte("sk-live"),
		RateLimit:   10,
		Remaining:   9,
	}

	response := MapReleaseToResponse(release)
	assert.Equal(t, GetKeyResponse{
		APIKey:         "sk-live",
		ServiceName:    "weatherapi",
		RateLimit:      10,
		CallsRemaining: 9,
	}, response)
}

func TestMapBackupsToListResponse(t *testing.T) {
	backup := &vaultDomain.Backup{
		ID:        uuid.Must(uuid.NewV7()),
		KeyCount:  2,
		Payload:   []byte(`{"keys":{}}`),
		CreatedAt: time.Now().UTC(),
	}

	response := MapBackupsToListResponse([]*vaultDomain.Backup{backup})
	require.Len(t, response.Data, 1)
	assert.Equal(t, backup.ID.String(), response.Data[0].ID)
	assert.Equal(t, 2, response.Data[0].KeyCount)

	body, err := json.Marshal(response)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "payload")
}

func TestNewImportResponse(t *testing.T) {
	response := NewImportResponse(4)
	assert.Equal(t, 4, response.KeysImported)
	assert.Equal(t, "Vault imported successfully", response.Message)
	assert.NotEmpty(t, response.Warning)
}
