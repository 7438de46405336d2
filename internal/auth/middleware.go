// ABOUTME: Bearer-token middleware guarding the MCP protocol endpoint.
// ABOUTME: Issues RFC 9728 WWW-Authenticate challenges and attaches caller identity to context.

package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riccardo-larosa/docebo-mcp-server/internal/tenant"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// RequireBearer creates middleware that demands a bearer token on the
// wrapped endpoint. Requests without one receive a 401 carrying the RFC 9728
// challenge that points clients at the protected-resource metadata. The
// token itself is never validated here; the platform API rejects bad tokens.
func (g *Guard) RequireBearer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				w.Header().Set("WWW-Authenticate",
					fmt.Sprintf("Bearer resource_metadata=%q", g.ResourceMetadataURL(r)))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprintf(w, `{"error":%q}`, errMsg)
				return
			}

			id := Identity{Token: token}
			if tc, ok := tenant.FromContext(r.Context()); ok {
				id.APIBaseURL = tc.BaseURL
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalBearer creates middleware that attaches an Identity when a bearer
// token is present but lets unauthenticated requests through. Used when the
// gateway runs without OAuth configured.
func OptionalBearer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := Identity{}
			if token, errMsg := extractBearerToken(r.Header.Get("Authorization")); errMsg == "" {
				id.Token = token
			}
			if tc, ok := tenant.FromContext(r.Context()); ok {
				id.APIBaseURL = tc.BaseURL
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
