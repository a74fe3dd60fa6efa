package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/navgate/navgate/principal"
	"github.com/navgate/navgate/session"
)

// ErrFailed is the generic login failure. Bad credentials, an unreachable
// backend, and a malformed response all collapse into it: this layer does
// not distinguish them, and callers must not branch on the cause.
var ErrFailed = errors.New("login failed")

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type response struct {
	Token string               `json:"token"`
	User  *principal.Principal `json:"user"`
}

// Client exchanges credentials for a token and principal at the backend
// login endpoint and, on success, populates the session store. It is the
// only authenticated-transition writer besides logout.
type Client struct {
	httpClient *http.Client
	endpoint   string
	sessions   *session.Store
}

// NewClient creates a login client posting to endpoint. A nil httpClient
// falls back to [http.DefaultClient]; inject one with a timeout in
// production.
func NewClient(endpoint string, httpClient *http.Client, sessions *session.Store) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, endpoint: endpoint, sessions: sessions}
}

// Login posts the credentials and populates the session store from the
// response. On any failure the store is left untouched and [ErrFailed] is
// returned. A storage outage while persisting the fresh session does not
// fail the login; the session is live in memory either way.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(credentials{Username: username, Password: password})
	if err != nil {
		return ErrFailed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ErrFailed
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ErrFailed
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ErrFailed
	}
	if out.Token == "" || out.User == nil {
		return ErrFailed
	}

	_ = c.sessions.Login(ctx, out.Token, out.User)
	return nil
}
