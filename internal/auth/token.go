// Package auth persists the bearer token between CLI invocations. It is the
// file-backed analog of the browser cookie the original client used: same
// one-day expiry, cleared on logout or on a rejected authentication check.
package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
)

// TokenTTL matches the cookie expiry of one day.
const TokenTTL = 24 * time.Hour

type storedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenStore reads and writes the token file.
type TokenStore struct {
	path string
	now  func() time.Time
}

// NewTokenStore creates a store backed by the given file path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path, now: time.Now}
}

// Save writes the token with a fresh one-day expiry.
func (s *TokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return eris.Wrap(err, "auth: create token dir")
	}
	data, err := json.Marshal(storedToken{
		Token:     token,
		ExpiresAt: s.now().Add(TokenTTL),
	})
	if err != nil {
		return eris.Wrap(err, "auth: marshal token")
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return eris.Wrap(err, "auth: write token file")
	}
	return nil
}

// Token returns the stored token, or "" when there is none or it expired.
// Implements valapi.TokenSource.
func (s *TokenStore) Token() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return ""
	}
	if st.ExpiresAt.Before(s.now()) {
		return ""
	}
	return st.Token
}

// Clear removes the token file. A missing file is not an error.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return eris.Wrap(err, "auth: remove token file")
	}
	return nil
}
