// ABOUTME: Local credential cache for interactive/CLI token acquisition.
// ABOUTME: Stores {access_token, expires_at} on disk and refreshes via OAuth2 grants.

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// CachedCredentials is the on-disk shape of the credential cache.
type CachedCredentials struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// expirySkew is subtracted from the recorded expiry so a token is never
// handed out moments before the platform would reject it.
const expirySkew = 30 * time.Second

// CredentialCachePath returns the default cache file location.
// Priority: DOCEBO_MCP_CREDENTIALS env var > ~/.docebo-mcp/credentials.json.
func CredentialCachePath() (string, error) {
	if p := os.Getenv("DOCEBO_MCP_CREDENTIALS"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".docebo-mcp", "credentials.json"), nil
}

// LoadCachedToken reads the credential cache and returns the access token if
// it is still fresh. A missing or expired cache returns an empty token, not
// an error: callers fall through to an interactive login.
func LoadCachedToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading credential cache: %w", err)
	}

	var creds CachedCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", fmt.Errorf("parsing credential cache: %w", err)
	}
	if creds.AccessToken == "" || time.Now().After(creds.ExpiresAt.Add(-expirySkew)) {
		return "", nil
	}
	return creds.AccessToken, nil
}

// SaveCachedToken writes the credential cache, creating its directory with
// owner-only permissions.
func SaveCachedToken(path string, creds CachedCredentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing credential cache: %w", err)
	}
	return nil
}

// LoginOptions configures an interactive token acquisition.
type LoginOptions struct {
	AuthServerURL string // platform base URL, e.g. https://acme.docebosaas.com
	ClientID      string
	ClientSecret  string
	Username      string // with Password, selects the resource-owner grant
	Password      string
}

// Login obtains an access token from the platform's token endpoint using the
// resource-owner password grant when a username is given, or the client
// credentials grant otherwise.
func Login(ctx context.Context, opts LoginOptions) (CachedCredentials, error) {
	if opts.AuthServerURL == "" {
		return CachedCredentials{}, fmt.Errorf("auth server URL is required")
	}
	tokenURL := opts.AuthServerURL + "/oauth2/token"

	var tok *oauth2.Token
	var err error
	if opts.Username != "" {
		conf := &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
		}
		tok, err = conf.PasswordCredentialsToken(ctx, opts.Username, opts.Password)
	} else {
		conf := &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     tokenURL,
		}
		tok, err = conf.Token(ctx)
	}
	if err != nil {
		return CachedCredentials{}, fmt.Errorf("token request: %w", err)
	}

	return CachedCredentials{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.Expiry,
	}, nil
}
