// ABOUTME: Gateway orchestrator wiring tenant resolution, OAuth guard, and MCP transport.
// ABOUTME: Owns the HTTP server lifecycle: listen, serve, graceful shutdown on context cancel.

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/riccardo-larosa/docebo-mcp-server/internal/auth"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/config"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/executor"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/mcp"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/tenant"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/tools"
)

const shutdownTimeout = 5 * time.Second

// Gateway assembles the gateway's components around one HTTP server.
type Gateway struct {
	config     *config.Config
	logger     *slog.Logger
	version    string
	resolver   *tenant.Resolver
	guard      *auth.Guard
	mcpServer  *mcp.Server
	httpServer *http.Server
}

// New creates a Gateway from the given configuration. The version string is
// reported on /health and advertised in the MCP initialize handshake.
func New(cfg *config.Config, version string, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	resolver := tenant.NewResolver(tenant.Config{
		Override:       cfg.Docebo.APIBaseURL,
		PlatformDomain: cfg.Docebo.PlatformDomain,
	})

	registry := tools.NewRegistry(logger.With("component", "registry"))
	if err := registry.RegisterAll(tools.Catalog()); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	engine, err := executor.New(executor.Config{
		Registry: registry,
		Logger:   logger.With("component", "executor"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating executor: %w", err)
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Registry:      registry,
		Executor:      engine,
		Logger:        logger.With("component", "mcp"),
		ServerName:    "docebo-mcp-server",
		ServerVersion: version,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	guard := auth.NewGuard(auth.Config{
		PublicURL:     cfg.Server.PublicURL,
		AuthServerURL: cfg.OAuth.AuthServerURL,
		ClientID:      cfg.OAuth.ClientID,
		ClientSecret:  cfg.OAuth.ClientSecret,
		Resolver:      resolver,
		Logger:        logger.With("component", "auth"),
	})

	gw := &Gateway{
		config:    cfg,
		logger:    logger.With("component", "gateway"),
		version:   version,
		resolver:  resolver,
		guard:     guard,
		mcpServer: mcpServer,
	}

	gw.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           gw.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// Handler exposes the assembled router, for tests and embedding.
func (g *Gateway) Handler() http.Handler { return g.httpServer.Handler }

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails. Returns nil on graceful shutdown.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", g.httpServer.Addr, err)
	}

	g.logger.Info("gateway listening",
		"addr", ln.Addr().String(),
		"oauth", g.config.OAuthEnabled(),
		"token_proxy", g.config.TokenProxyEnabled(),
	)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		g.logger.Info("shutting down gateway")
		// The run context is already canceled; shutdown needs its own.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return g.httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// handleHealth reports liveness plus enough identity to tell deployments
// apart.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, g.logger, map[string]any{
		"status":          "ok",
		"server":          "docebo-mcp-server",
		"version":         g.version,
		"active_sessions": g.mcpServer.ActiveSessions(),
	})
}
