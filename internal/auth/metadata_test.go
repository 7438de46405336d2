// ABOUTME: Tests for OAuth discovery metadata handlers.
// ABOUTME: Covers self-URL derivation, tenant-derived auth servers, and token-proxy advertisement.

package auth

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riccardo-larosa/docebo-mcp-server/internal/tenant"
)

func TestProtectedResourceMetadataMultiTenant(t *testing.T) {
	g := NewGuard(Config{Resolver: tenant.NewResolver(tenant.Config{})})

	req := httptest.NewRequest("GET", ProtectedResourcePath, nil)
	req.Host = "acme.mcp.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()

	g.HandleProtectedResourceMetadata(rr, req)

	require.Equal(t, 200, rr.Code)
	var meta ProtectedResourceMetadata
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&meta))
	assert.Equal(t, "https://acme.mcp.example.com", meta.Resource)
	assert.Equal(t, []string{"https://acme.docebosaas.com"}, meta.AuthorizationServers)
	assert.Equal(t, []string{"header"}, meta.BearerMethodsSupported)
}

func TestProtectedResourceMetadataStatic(t *testing.T) {
	g := NewGuard(Config{
		PublicURL:     "https://mcp.example.com",
		AuthServerURL: "https://mycompany.docebosaas.com",
		Resolver:      tenant.NewResolver(tenant.Config{}),
	})

	req := httptest.NewRequest("GET", ProtectedResourcePath, nil)
	req.Host = "whatever.internal"
	rr := httptest.NewRecorder()

	g.HandleProtectedResourceMetadata(rr, req)

	require.Equal(t, 200, rr.Code)
	var meta ProtectedResourceMetadata
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&meta))
	assert.Equal(t, "https://mcp.example.com", meta.Resource)
	assert.Equal(t, []string{"https://mycompany.docebosaas.com"}, meta.AuthorizationServers)
}

func TestProtectedResourceMetadataUnknownTenant(t *testing.T) {
	g := NewGuard(Config{Resolver: tenant.NewResolver(tenant.Config{})})

	req := httptest.NewRequest("GET", ProtectedResourcePath, nil)
	req.Host = "localhost:3000"
	rr := httptest.NewRecorder()

	g.HandleProtectedResourceMetadata(rr, req)
	assert.Equal(t, 400, rr.Code)
}

func TestAuthorizationServerMetadata(t *testing.T) {
	t.Run("without token proxy", func(t *testing.T) {
		g := NewGuard(Config{
			AuthServerURL: "https://mycompany.docebosaas.com",
			Resolver:      tenant.NewResolver(tenant.Config{}),
		})

		req := httptest.NewRequest("GET", AuthorizationServerPath, nil)
		req.Host = "mcp.example.com"
		rr := httptest.NewRecorder()

		g.HandleAuthorizationServerMetadata(rr, req)

		require.Equal(t, 200, rr.Code)
		var meta AuthorizationServerMetadata
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&meta))
		assert.Equal(t, "https://mycompany.docebosaas.com", meta.Issuer)
		assert.Equal(t, "https://mycompany.docebosaas.com/oauth2/authorize", meta.AuthorizationEndpoint)
		assert.Equal(t, "https://mycompany.docebosaas.com/oauth2/token", meta.TokenEndpoint)
	})

	t.Run("with token proxy", func(t *testing.T) {
		g := NewGuard(Config{
			PublicURL:     "https://mcp.example.com",
			AuthServerURL: "https://mycompany.docebosaas.com",
			ClientID:      "abc",
			ClientSecret:  "shh",
			Resolver:      tenant.NewResolver(tenant.Config{}),
		})

		req := httptest.NewRequest("GET", AuthorizationServerPath, nil)
		req.Host = "mcp.example.com"
		rr := httptest.NewRecorder()

		g.HandleAuthorizationServerMetadata(rr, req)

		require.Equal(t, 200, rr.Code)
		var meta AuthorizationServerMetadata
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&meta))
		assert.Equal(t, "https://mcp.example.com/oauth/token", meta.TokenEndpoint)
	})
}

func TestSelfURLDerivation(t *testing.T) {
	g := NewGuard(Config{Resolver: tenant.NewResolver(tenant.Config{})})

	req := httptest.NewRequest("GET", "/mcp", nil)
	req.Host = "acme.mcp.example.com"
	assert.Equal(t, "http://acme.mcp.example.com", g.SelfURL(req))

	req.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://acme.mcp.example.com", g.SelfURL(req))
}
