package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cluckhub/cluckhub/internal/http/middleware"
	"github.com/cluckhub/cluckhub/internal/repository"
	"github.com/cluckhub/cluckhub/internal/service"
	"github.com/cluckhub/cluckhub/pkg/blob"
	"github.com/cluckhub/cluckhub/pkg/logger"
	"github.com/cluckhub/cluckhub/pkg/testkeys"
)

// testClient is an HTTP client with a cookie jar talking to a fully wired
// test server over the in-memory blob store.
type testClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newTestServer(t *testing.T) (*testClient, blob.Store) {
	t.Helper()

	store := blob.NewMemoryStore()
	log := logger.NewTestLogger(t)

	accountRepo := repository.NewBlobAccountRepository(store)
	farmRepo := repository.NewBlobFarmRepository(store)
	dataRepo := repository.NewBlobDataRepository(store)

	privateKey, publicKey, err := testkeys.GetTestKeysBytes()
	require.NoError(t, err)
	authSvc, err := service.NewAuthService(service.AuthServiceConfig{
		Repository: accountRepo,
		PrivateKey: privateKey,
		PublicKey:  publicKey,
		Logger:     log,
	})
	require.NoError(t, err)

	farmSvc := service.NewFarmService(farmRepo, log)
	farmDataSvc := service.NewFarmDataService(farmRepo, dataRepo, log)
	userDataSvc := service.NewUserDataService(dataRepo, log)
	profileSvc := service.NewProfileService(dataRepo, log)
	calendarSvc := service.NewCalendarService(farmRepo, dataRepo)
	migrationSvc := service.NewMigrationService(store, dataRepo, log)

	auth := middleware.NewAuth(authSvc)

	mux := http.NewServeMux()
	NewAuthHandler(authSvc, auth, false, log).RegisterRoutes(mux)
	NewFarmHandler(farmSvc, auth, log).RegisterRoutes(mux)
	NewFarmDataHandler(farmDataSvc, auth, log).RegisterRoutes(mux)
	NewUserDataHandler(userDataSvc, auth, log).RegisterRoutes(mux)
	NewProfileHandler(profileSvc, auth, log).RegisterRoutes(mux)
	NewICSHandler(calendarSvc, auth, log).RegisterRoutes(mux)
	NewMigrationHandler(migrationSvc, auth, log).RegisterRoutes(mux)

	server := httptest.NewServer(middleware.CORS(mux))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testClient{
		t:      t,
		base:   server.URL,
		client: &http.Client{Jar: jar},
	}, store
}

// newTestClientSameServer returns a second client with its own cookie jar
// pointed at the same server, for multi-account scenarios.
func newTestClientSameServer(t *testing.T, other *testClient) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:      t,
		base:   other.base,
		client: &http.Client{Jar: jar},
	}
}

// do issues a request and decodes the JSON response body when out is non-nil.
func (c *testClient) do(method, path string, body interface{}, out interface{}) *http.Response {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			encoded, err := json.Marshal(body)
			require.NoError(c.t, err)
			reader = bytes.NewBuffer(encoded)
		}
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)

	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(raw, out), "body: %s", raw)
	}
	return resp
}

// doRaw issues a request and returns the response plus its raw body.
func (c *testClient) doRaw(method, path string) (*http.Response, string) {
	c.t.Helper()

	req, err := http.NewRequest(method, c.base+path, nil)
	require.NoError(c.t, err)

	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, string(raw)
}

// signup registers an account and leaves its session cookie in the jar.
func (c *testClient) signup(email, password string) {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/auth?action=signup",
		map[string]string{"email": email, "password": password}, nil)
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
}

// login swaps the session to another existing account.
func (c *testClient) login(email, password string) {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/auth?action=login",
		map[string]string{"email": email, "password": password}, nil)
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
}

// createFarm creates a farm as the current session and returns its ID.
func (c *testClient) createFarm(name string) string {
	c.t.Helper()
	var out struct {
		Farm struct {
			ID string `json:"id"`
		} `json:"farm"`
	}
	resp := c.do(http.MethodPost, "/farms", map[string]string{"name": name}, &out)
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(c.t, out.Farm.ID)
	return out.Farm.ID
}

func (c *testClient) inviteMember(farmID, email, role string) {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/farms?action=invite",
		map[string]string{"farmId": farmID, "email": email, "role": role}, nil)
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
}

func farmDataPath(farmID, key string) string {
	return fmt.Sprintf("/farmData/%s/%s", farmID, key)
}
