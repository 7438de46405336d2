// ABOUTME: OAuth discovery metadata handlers (RFC 9728 protected resource, RFC 8414 auth server).
// ABOUTME: Derives self and authorization-server URLs per request for multi-tenant deployments.

package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/riccardo-larosa/docebo-mcp-server/internal/tenant"
)

// Well-known discovery paths served by the guard.
const (
	ProtectedResourcePath   = "/.well-known/oauth-protected-resource"
	AuthorizationServerPath = "/.well-known/oauth-authorization-server"
	TokenProxyPath          = "/oauth/token"
)

// ProtectedResourceMetadata is the RFC 9728 discovery document.
type ProtectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	BearerMethodsSupported []string `json:"bearer_methods_supported"`
}

// AuthorizationServerMetadata is the RFC 8414-style discovery document.
type AuthorizationServerMetadata struct {
	Issuer                        string   `json:"issuer"`
	AuthorizationEndpoint         string   `json:"authorization_endpoint"`
	TokenEndpoint                 string   `json:"token_endpoint"`
	ResponseTypesSupported        []string `json:"response_types_supported"`
	GrantTypesSupported           []string `json:"grant_types_supported"`
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported"`
}

// Config holds guard configuration.
type Config struct {
	// PublicURL is the gateway's externally reachable URL. When empty the
	// self URL is derived from the request's Host and X-Forwarded-Proto.
	PublicURL string

	// AuthServerURL pins the advertised authorization server. When empty
	// the tenant-derived platform URL is advertised instead.
	AuthServerURL string

	// ClientID and ClientSecret enable the token proxy when both are set.
	ClientID     string
	ClientSecret string

	Resolver *tenant.Resolver
	Logger   *slog.Logger
}

// Guard implements the protected-resource side of the OAuth flow. It holds
// no per-request state; everything is derived from static configuration and
// the tenant resolver.
type Guard struct {
	publicURL     string
	authServerURL string
	clientID      string
	clientSecret  string
	resolver      *tenant.Resolver
	logger        *slog.Logger
	client        *http.Client
}

// NewGuard creates a Guard from the given configuration.
func NewGuard(cfg Config) *Guard {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		publicURL:     strings.TrimRight(cfg.PublicURL, "/"),
		authServerURL: strings.TrimRight(cfg.AuthServerURL, "/"),
		clientID:      cfg.ClientID,
		clientSecret:  cfg.ClientSecret,
		resolver:      cfg.Resolver,
		logger:        logger,
		client:        &http.Client{Timeout: outboundTimeout},
	}
}

// TokenProxyEnabled reports whether this guard holds confidential client
// credentials and proxies token exchanges.
func (g *Guard) TokenProxyEnabled() bool {
	return g.clientID != "" && g.clientSecret != ""
}

// SelfURL returns this gateway's own base URL for the given request: the
// configured public URL, or one derived from Host plus X-Forwarded-Proto.
func (g *Guard) SelfURL(r *http.Request) string {
	if g.publicURL != "" {
		return g.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// ResourceMetadataURL returns the absolute URL of the protected-resource
// discovery document, used in WWW-Authenticate challenges.
func (g *Guard) ResourceMetadataURL(r *http.Request) string {
	return g.SelfURL(r) + ProtectedResourcePath
}

// authServerBase picks the authorization server for this request: the static
// override in single-tenant deployments, otherwise the tenant-derived
// platform URL.
func (g *Guard) authServerBase(r *http.Request) (string, error) {
	if g.authServerURL != "" {
		return g.authServerURL, nil
	}
	tc, err := g.resolver.Resolve(r.Host)
	if err != nil {
		return "", err
	}
	return tc.BaseURL, nil
}

// HandleProtectedResourceMetadata serves the RFC 9728 discovery document.
func (g *Guard) HandleProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	authServer, err := g.authServerBase(r)
	if err != nil {
		http.Error(w, "Bad Request: unknown tenant", http.StatusBadRequest)
		return
	}

	writeJSON(w, g.logger, ProtectedResourceMetadata{
		Resource:               g.SelfURL(r),
		AuthorizationServers:   []string{authServer},
		BearerMethodsSupported: []string{"header"},
	})
}

// HandleAuthorizationServerMetadata serves RFC 8414-style metadata. When the
// token proxy is enabled the advertised token endpoint is the gateway's own
// /oauth/token path so public clients exchange codes through the proxy.
func (g *Guard) HandleAuthorizationServerMetadata(w http.ResponseWriter, r *http.Request) {
	authServer, err := g.authServerBase(r)
	if err != nil {
		http.Error(w, "Bad Request: unknown tenant", http.StatusBadRequest)
		return
	}

	tokenEndpoint := authServer + "/oauth2/token"
	if g.TokenProxyEnabled() {
		tokenEndpoint = g.SelfURL(r) + TokenProxyPath
	}

	writeJSON(w, g.logger, AuthorizationServerMetadata{
		Issuer:                        authServer,
		AuthorizationEndpoint:         authServer + "/oauth2/authorize",
		TokenEndpoint:                 tokenEndpoint,
		ResponseTypesSupported:        []string{"code"},
		GrantTypesSupported:           []string{"authorization_code", "refresh_token"},
		CodeChallengeMethodsSupported: []string{"S256"},
	})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode discovery metadata", "error", err)
	}
}
