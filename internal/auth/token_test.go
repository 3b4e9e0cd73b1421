package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := NewTokenStore(path)

	require.NoError(t, store.Save("abc123"))
	assert.Equal(t, "abc123", store.Token())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestTokenStoreMissingFile(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
	assert.Empty(t, store.Token())
}

func TestTokenStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	assert.Empty(t, NewTokenStore(path).Token())
}

func TestTokenStoreExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewTokenStore(path)

	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save("abc123"))

	store.now = func() time.Time { return now.Add(TokenTTL - time.Minute) }
	assert.Equal(t, "abc123", store.Token())

	store.now = func() time.Time { return now.Add(TokenTTL + time.Minute) }
	assert.Empty(t, store.Token(), "token past its one-day expiry is ignored")
}

func TestTokenStoreSaveRefreshesExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewTokenStore(path)

	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save("old"))

	store.now = func() time.Time { return now.Add(23 * time.Hour) }
	require.NoError(t, store.Save("new"))

	store.now = func() time.Time { return now.Add(25 * time.Hour) }
	assert.Equal(t, "new", store.Token())
}

func TestTokenStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewTokenStore(path)

	require.NoError(t, store.Save("abc123"))
	require.NoError(t, store.Clear())
	assert.Empty(t, store.Token())

	// Clearing again with no file present succeeds.
	require.NoError(t, store.Clear())
}
