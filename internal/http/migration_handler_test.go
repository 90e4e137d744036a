package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationHandler_RequiresAuthentication(t *testing.T) {
	client, _ := newTestServer(t)

	resp := client.do(http.MethodPost, "/migrate?farmId=any", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMigrationHandler_PostOnly(t *testing.T) {
	client, _ := newTestServer(t)
	client.signup("owner@example.com", "secret1")

	resp := client.do(http.MethodGet, "/migrate?farmId=any", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMigrationHandler_FarmIDRequired(t *testing.T) {
	client, _ := newTestServer(t)
	client.signup("owner@example.com", "secret1")

	resp := client.do(http.MethodPost, "/migrate", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMigrationHandler_MigratesLegacyKeys(t *testing.T) {
	client, store := newTestServer(t)
	client.signup("owner@example.com", "secret1")
	farmID := client.createFarm("Sunrise Farm")

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "dailyLog.json", json.RawMessage(`[{"eggs":5}]`)))
	require.NoError(t, store.Set(ctx, "settings.json", json.RawMessage(`{"batch":3}`)))

	var out struct {
		OK       bool     `json:"ok"`
		Migrated []string `json:"migrated"`
		Skipped  []string `json:"skipped"`
	}
	resp := client.do(http.MethodPost, "/migrate?farmId="+farmID, nil, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, out.OK)
	assert.ElementsMatch(t, []string{"dailyLog", "settings"}, out.Migrated)
	assert.Contains(t, out.Skipped, "weights")

	var data struct {
		Data json.RawMessage `json:"data"`
	}
	resp = client.do(http.MethodGet, farmDataPath(farmID, "dailyLog"), nil, &data)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"eggs":5}]`, string(data.Data))

	// a second run skips everything already in place
	resp = client.do(http.MethodPost, "/migrate?farmId="+farmID, nil, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, out.Migrated)
}
