package main

import (
	"crypto/rand"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/navgate/navgate/principal"
)

// stubBackend plays the remote login service: it checks demo credentials
// and answers with a signed JWT plus the principal record, the same shape
// the production backend returns. The core treats the token as opaque —
// signing here only makes the demo traffic look like the real thing.
type stubBackend struct {
	secret []byte
	users  map[string]demoUser
}

type demoUser struct {
	password  string
	principal principal.Principal
}

func newStubBackend() *stubBackend {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(err)
	}

	adminRole := principal.Role{
		ID:                 uuid.NewString(),
		Name:               "admin",
		AuthorizedSections: []string{"products", "users", "roles"},
	}
	userRole := principal.Role{
		ID:                 uuid.NewString(),
		Name:               "user",
		AuthorizedSections: []string{"products"},
	}

	return &stubBackend{
		secret: secret,
		users: map[string]demoUser{
			"alice": {
				password: "correct-horse",
				principal: principal.Principal{
					ID:       uuid.NewString(),
					Username: "alice",
					Name:     "Alice Admin",
					Email:    "alice@example.com",
					Roles:    []principal.Role{adminRole},
				},
			},
			"bob": {
				password: "correct-horse",
				principal: principal.Principal{
					ID:       uuid.NewString(),
					Username: "bob",
					Name:     "Bob User",
					Email:    "bob@example.com",
					Roles:    []principal.Role{userRole},
				},
			},
		},
	}
}

func (b *stubBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	user, ok := b.users[creds.Username]
	if !ok || user.password != creds.Password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	token, err := b.mintToken(user.principal)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"user":  user.principal,
	})
}

func (b *stubBackend) mintToken(p principal.Principal) (string, error) {
	claims := jwt.MapClaims{
		"sub": p.ID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(8 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}
