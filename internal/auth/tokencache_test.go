// ABOUTME: Tests for the on-disk credential cache.
// ABOUTME: Covers freshness checks, round-tripping, and missing-file behavior.

package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "credentials.json")

	creds := CachedCredentials{
		AccessToken: "tok-abc",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, SaveCachedToken(path, creds))

	token, err := LoadCachedToken(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
}

func TestCredentialCacheExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, SaveCachedToken(path, CachedCredentials{
		AccessToken: "tok-old",
		ExpiresAt:   time.Now().Add(-time.Minute),
	}))

	token, err := LoadCachedToken(path)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCredentialCacheNearExpirySkew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, SaveCachedToken(path, CachedCredentials{
		AccessToken: "tok-soon",
		ExpiresAt:   time.Now().Add(10 * time.Second),
	}))

	// Within the skew window the token is treated as already expired.
	token, err := LoadCachedToken(path)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCredentialCacheMissingFile(t *testing.T) {
	token, err := LoadCachedToken(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCredentialCachePathEnvOverride(t *testing.T) {
	t.Setenv("DOCEBO_MCP_CREDENTIALS", "/tmp/custom.json")
	path, err := CredentialCachePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.json", path)
}
