package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI_SessionCookieCarriesAcrossCalls(t *testing.T) {
	var sawCookie bool
	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "cluckhub_session", Value: "token", Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/farmData/", func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie("cluckhub_session")
		sawCookie = err == nil
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"data":[{"eggs":4}]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	api, err := NewAPI(server.URL)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, api.Login(ctx, "farmer@example.com", "secret1"))

	doc, err := api.PullFarmData(ctx, "farm-1", "dailyLog")
	require.NoError(t, err)
	assert.True(t, sawCookie, "session cookie should ride along on data calls")
	assert.JSONEq(t, `[{"eggs":4}]`, string(doc))
}

func TestAPI_PushFarmDataSendsDocument(t *testing.T) {
	var gotPath string
	var gotBody json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	api, err := NewAPI(server.URL)
	require.NoError(t, err)

	doc := json.RawMessage(`[{"eggs":4}]`)
	require.NoError(t, api.PushFarmData(context.Background(), "farm-1", "dailyLog", doc))
	assert.Equal(t, "/farmData/farm-1/dailyLog", gotPath)
	assert.JSONEq(t, string(doc), string(gotBody))
}

func TestAPI_ErrorEnvelopeSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"viewers cannot write"}`))
	}))
	defer server.Close()

	api, err := NewAPI(server.URL)
	require.NoError(t, err)

	err = api.PushFarmData(context.Background(), "farm-1", "dailyLog", json.RawMessage(`[]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "viewers cannot write")
}

func TestAPI_UserDataKeyEscaped(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"data":null}`))
	}))
	defer server.Close()

	api, err := NewAPI(server.URL)
	require.NoError(t, err)

	_, err = api.PullUserData(context.Background(), "prefs/theme me")
	require.NoError(t, err)
	assert.Equal(t, "prefs/theme me", gotKey)
}
