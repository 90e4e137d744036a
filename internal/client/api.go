package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

// API is a minimal client for the Cluck Hub HTTP gateway. The cookie jar
// carries the session across calls, so one Login or Signup is enough for the
// lifetime of the client.
type API struct {
	baseURL string
	client  *http.Client
}

func NewAPI(baseURL string) (*API, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &API{
		baseURL: baseURL,
		client: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

type apiEnvelope struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

func (a *API) Signup(ctx context.Context, email, password string) error {
	return a.authAction(ctx, "signup", email, password)
}

func (a *API) Login(ctx context.Context, email, password string) error {
	return a.authAction(ctx, "login", email, password)
}

func (a *API) Logout(ctx context.Context) error {
	_, err := a.roundTrip(ctx, http.MethodPost, "/auth?action=logout", nil)
	return err
}

func (a *API) authAction(ctx context.Context, action, email, password string) error {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	_, err = a.roundTrip(ctx, http.MethodPost, "/auth?action="+action, body)
	return err
}

// PullFarmData reads one farm-scoped slice. A never-written slice comes back
// as the JSON null document.
func (a *API) PullFarmData(ctx context.Context, farmID, key string) (json.RawMessage, error) {
	env, err := a.roundTrip(ctx, http.MethodGet,
		fmt.Sprintf("/farmData/%s/%s", url.PathEscape(farmID), url.PathEscape(key)), nil)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (a *API) PushFarmData(ctx context.Context, farmID, key string, doc json.RawMessage) error {
	_, err := a.roundTrip(ctx, http.MethodPost,
		fmt.Sprintf("/farmData/%s/%s", url.PathEscape(farmID), url.PathEscape(key)), doc)
	return err
}

// PullUserData reads one account-scoped slice.
func (a *API) PullUserData(ctx context.Context, key string) (json.RawMessage, error) {
	env, err := a.roundTrip(ctx, http.MethodGet, "/data?key="+url.QueryEscape(key), nil)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (a *API) PushUserData(ctx context.Context, key string, doc json.RawMessage) error {
	_, err := a.roundTrip(ctx, http.MethodPost, "/data?key="+url.QueryEscape(key), doc)
	return err
}

func (a *API) roundTrip(ctx context.Context, method, path string, body []byte) (*apiEnvelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("gateway returned non-JSON response (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		if env.Error != "" {
			return nil, fmt.Errorf("gateway: %s (status %d)", env.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("gateway: unexpected status %d", resp.StatusCode)
	}
	return &env, nil
}

// FarmSlice binds the API to one farm-scoped composite key so SliceSync can
// stay ignorant of addressing.
func (a *API) FarmSlice(farmID, key string) Remote {
	return remoteFuncs{
		pull: func(ctx context.Context) (json.RawMessage, error) {
			return a.PullFarmData(ctx, farmID, key)
		},
		push: func(ctx context.Context, doc json.RawMessage) error {
			return a.PushFarmData(ctx, farmID, key, doc)
		},
	}
}

// UserSlice binds the API to one account-scoped key.
func (a *API) UserSlice(key string) Remote {
	return remoteFuncs{
		pull: func(ctx context.Context) (json.RawMessage, error) {
			return a.PullUserData(ctx, key)
		},
		push: func(ctx context.Context, doc json.RawMessage) error {
			return a.PushUserData(ctx, key, doc)
		},
	}
}

type remoteFuncs struct {
	pull func(ctx context.Context) (json.RawMessage, error)
	push func(ctx context.Context, doc json.RawMessage) error
}

func (r remoteFuncs) Pull(ctx context.Context) (json.RawMessage, error) { return r.pull(ctx) }
func (r remoteFuncs) Push(ctx context.Context, doc json.RawMessage) error {
	return r.push(ctx, doc)
}
