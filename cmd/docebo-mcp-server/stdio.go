// ABOUTME: The stdio subcommand: runs the MCP protocol over stdin/stdout.
// ABOUTME: Single-tenant by necessity; the token comes from the env or the credential cache.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/riccardo-larosa/docebo-mcp-server/internal/auth"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/config"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/executor"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/mcp"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/tenant"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/tools"
)

// maxStdioLine bounds a single JSON-RPC message on the stdio transport.
const maxStdioLine = 1 << 20

// runStdio speaks line-delimited JSON-RPC on stdin/stdout. Logs go to
// stderr; stdout belongs to the protocol.
func runStdio(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Docebo.APIBaseURL == "" {
		return fmt.Errorf("stdio mode needs docebo.api_base_url (or DOCEBO_API_BASE_URL): there is no Host header to derive a tenant from")
	}

	logger := setupLogger(cfg.Logging, os.Stderr)

	registry := tools.NewRegistry(logger.With("component", "registry"))
	if err := registry.RegisterAll(tools.Catalog()); err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}
	engine, err := executor.New(executor.Config{
		Registry: registry,
		Logger:   logger.With("component", "executor"),
	})
	if err != nil {
		return fmt.Errorf("creating executor: %w", err)
	}

	rc := tools.RequestContext{
		Identity: auth.Identity{
			Token:      resolveStdioToken(logger),
			APIBaseURL: cfg.Docebo.APIBaseURL,
		},
		Tenant: tenant.Context{
			BaseURL: cfg.Docebo.APIBaseURL,
			Mode:    tenant.ModeSingleTenant,
		},
	}

	proto := mcp.NewEngine(mcp.EngineConfig{
		Registry:      registry,
		Executor:      engine,
		Logger:        logger.With("component", "mcp"),
		ServerName:    "docebo-mcp-server",
		ServerVersion: version,
	})

	// Closing stdin on cancel unblocks the scanner below.
	go func() {
		<-ctx.Done()
		os.Stdin.Close()
	}()

	logger.Info("stdio transport ready", "api_base_url", cfg.Docebo.APIBaseURL)

	encoder := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), maxStdioLine)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req mcp.JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			logger.Warn("dropping malformed message", "error", err)
			continue
		}

		resp := proto.Handle(ctx, req, rc)
		if resp == nil {
			continue // notification
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return nil
}

// resolveStdioToken finds a bearer token for the stdio session: the
// DOCEBO_API_TOKEN env var wins, then the login credential cache. An empty
// token is allowed; calls against protected endpoints will fail upstream.
func resolveStdioToken(logger *slog.Logger) string {
	if tok := os.Getenv("DOCEBO_API_TOKEN"); tok != "" {
		return tok
	}

	path, err := auth.CredentialCachePath()
	if err != nil {
		return ""
	}
	tok, err := auth.LoadCachedToken(path)
	if err != nil {
		logger.Warn("unable to read credential cache", "error", err)
		return ""
	}
	if tok == "" {
		logger.Warn("no API token found; run the login subcommand or set DOCEBO_API_TOKEN")
	}
	return tok
}
