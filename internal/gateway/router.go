// ABOUTME: Route table and middleware chain: health, OAuth discovery, token proxy, /mcp.
// ABOUTME: Tenant resolution runs before auth so challenges can name the right server.

package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/riccardo-larosa/docebo-mcp-server/internal/auth"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/tenant"
)

// buildRouter assembles the full route table. OAuth routes only exist when
// OAuth is configured; without it the MCP endpoint accepts anonymous callers
// and forwards whatever bearer token they present.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(g.logger))

	r.Get("/health", g.handleHealth)

	if g.config.OAuthEnabled() {
		r.Get(auth.ProtectedResourcePath, g.guard.HandleProtectedResourceMetadata)
		r.Get(auth.AuthorizationServerPath, g.guard.HandleAuthorizationServerMetadata)
		if g.config.TokenProxyEnabled() {
			r.Post(auth.TokenProxyPath, g.guard.HandleTokenProxy)
		}
	}

	bearer := auth.OptionalBearer()
	if g.config.OAuthEnabled() {
		bearer = g.guard.RequireBearer()
	}

	r.Route("/mcp", func(r chi.Router) {
		r.Use(g.tenantMiddleware)
		r.Use(bearer)
		r.Handle("/", g.mcpServer)
	})

	return r
}

// tenantMiddleware resolves the Host header to a platform base URL and
// attaches the result to the request context. An unresolvable host gets a
// 400 before any session or token handling happens.
func (g *Gateway) tenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, err := g.resolver.Resolve(r.Host)
		if err != nil {
			g.logger.Warn("tenant resolution failed", "host", r.Host)
			http.Error(w, "Bad Request: cannot resolve tenant from host", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(tenant.WithContext(r.Context(), tc)))
	})
}

// requestLogger logs one line per request at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", "error", err)
	}
}
