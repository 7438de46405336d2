// ABOUTME: Tests for the bearer middleware and identity propagation.
// ABOUTME: Validates the RFC 9728 challenge header and context attachment.

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riccardo-larosa/docebo-mcp-server/internal/tenant"
)

func newTestGuard() *Guard {
	return NewGuard(Config{
		PublicURL: "https://mcp.example.com",
		Resolver:  tenant.NewResolver(tenant.Config{Override: "https://mycompany.docebosaas.com"}),
	})
}

func TestRequireBearerChallenges(t *testing.T) {
	g := newTestGuard()
	handler := g.RequireBearer()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic Zm9vOmJhcg=="},
		{"empty token", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/mcp", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), `"error"`)
			challenge := rr.Header().Get("WWW-Authenticate")
			assert.Contains(t, challenge, "Bearer ")
			assert.Contains(t, challenge,
				`resource_metadata="https://mcp.example.com/.well-known/oauth-protected-resource"`)
		})
	}
}

func TestRequireBearerAttachesIdentity(t *testing.T) {
	g := newTestGuard()

	var got Identity
	handler := g.RequireBearer()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/mcp", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	tc, err := tenant.NewResolver(tenant.Config{Override: "https://mycompany.docebosaas.com"}).Resolve(req.Host)
	require.NoError(t, err)
	req = req.WithContext(tenant.WithContext(req.Context(), tc))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "tok-123", got.Token)
	assert.Equal(t, "https://mycompany.docebosaas.com", got.APIBaseURL)
}

func TestOptionalBearer(t *testing.T) {
	var got Identity
	handler := OptionalBearer()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous passes through", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/mcp", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, got.Token)
	})

	t.Run("token captured when present", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/mcp", nil)
		req.Header.Set("Authorization", "Bearer tok-456")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "tok-456", got.Token)
	})
}
