// ABOUTME: HTTP handler turning stateless requests into stateful MCP sessions.
// ABOUTME: Routes by Mcp-Session-Id, creates sessions on initialize, rejects everything else with -32000.

package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/riccardo-larosa/docebo-mcp-server/internal/auth"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/tenant"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/tools"
)

// SessionHeader carries the session id on requests and initialize responses.
const SessionHeader = "Mcp-Session-Id"

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// badSessionMessage is the gateway's rejection for requests that are neither
// routable to an active session nor a session-creating initialize.
const badSessionMessage = "Bad Request: invalid session ID or method"

// Config holds configuration for the MCP server.
type Config struct {
	Registry      *tools.Registry
	Executor      Executor
	Logger        *slog.Logger
	ServerName    string
	ServerVersion string
}

// Server owns every session and implements the /mcp endpoint. Sessions are
// created here, routed here, and destroyed here; no other component holds a
// long-lived session reference.
type Server struct {
	registry      *tools.Registry
	executor      Executor
	logger        *slog.Logger
	serverName    string
	serverVersion string
	sessions      *sessionStore
}

// NewServer creates a new MCP server with the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Executor == nil {
		return nil, errors.New("executor is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := cfg.ServerName
	if name == "" {
		name = "docebo-mcp-server"
	}
	version := cfg.ServerVersion
	if version == "" {
		version = "dev"
	}

	return &Server{
		registry:      cfg.Registry,
		executor:      cfg.Executor,
		logger:        logger,
		serverName:    name,
		serverVersion: version,
		sessions:      newSessionStore(),
	}, nil
}

// ActiveSessions returns the number of active sessions, for health
// reporting and tests.
func (s *Server) ActiveSessions() int { return s.sessions.count() }

// ServeHTTP dispatches by method per the Streamable HTTP transport: POST
// carries protocol traffic, GET is reserved for server-initiated streaming
// and deliberately unimplemented, DELETE terminates a session.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "POST, DELETE")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handlePost processes JSON-RPC messages sent via HTTP POST.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionHeader)

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("panic during MCP dispatch",
				"session_id", sessionID, "panic", rec)
			s.writeResponses(w, http.StatusInternalServerError,
				[]JSONRPCResponse{errorResponse(nil, JSONRPCInternalError, "Internal server error")}, false)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.writeResponses(w, http.StatusBadRequest,
			[]JSONRPCResponse{errorResponse(nil, JSONRPCParseError, "failed to read request body")}, false)
		return
	}
	if len(body) > MaxRequestBodySize {
		s.writeResponses(w, http.StatusBadRequest,
			[]JSONRPCResponse{errorResponse(nil, JSONRPCInvalidRequest, "request body too large")}, false)
		return
	}

	msgs, batch, err := parseMessages(body)
	if err != nil {
		s.writeResponses(w, http.StatusBadRequest,
			[]JSONRPCResponse{errorResponse(nil, JSONRPCParseError, "invalid JSON")}, false)
		return
	}

	rc := requestContextFrom(r)

	if sessionID != "" {
		sess, ok := s.sessions.get(sessionID)
		if !ok {
			// Closed or never-issued id: the client must re-initialize.
			s.writeResponses(w, http.StatusBadRequest,
				[]JSONRPCResponse{errorResponse(nil, JSONRPCBadSession, badSessionMessage)}, false)
			return
		}
		responses := s.dispatch(r, sess.Engine, msgs, rc)
		s.writeResponses(w, http.StatusOK, responses, batch)
		return
	}

	// No session id: only an initialize-shaped body may create a session.
	if !containsInitialize(msgs) {
		s.writeResponses(w, http.StatusBadRequest,
			[]JSONRPCResponse{errorResponse(nil, JSONRPCBadSession, badSessionMessage)}, false)
		return
	}

	transport := newTransport()
	engine := NewEngine(EngineConfig{
		Registry:      s.registry,
		Executor:      s.executor,
		Logger:        s.logger,
		ServerName:    s.serverName,
		ServerVersion: s.serverVersion,
	})

	responses := s.dispatch(r, engine, msgs, rc)

	// Register only once the handshake actually succeeded and the
	// transport has an id to advertise.
	if engine.Initialized() {
		sess := &Session{
			ID:        transport.SessionID(),
			Engine:    engine,
			Transport: transport,
			CreatedAt: time.Now(),
		}
		transport.OnClose(s.onSessionClosed)
		s.sessions.register(sess)
		w.Header().Set(SessionHeader, sess.ID)
		s.logger.Info("MCP session created", "session_id", sess.ID, "tenant", rc.Tenant.BaseURL)
	}

	s.writeResponses(w, http.StatusOK, responses, batch)
}

// handleDelete terminates a session via its transport.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		http.Error(w, "Bad Request: missing "+SessionHeader, http.StatusBadRequest)
		return
	}

	sess, ok := s.sessions.get(sessionID)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	sess.Transport.Close()
	w.WriteHeader(http.StatusNoContent)
}

// onSessionClosed is the transport cleanup callback. Removal is idempotent:
// a double close finds nothing left to delete.
func (s *Server) onSessionClosed(sessionID string) {
	s.sessions.remove(sessionID)
	s.logger.Info("MCP session terminated", "session_id", sessionID)
}

// dispatch runs each message through the engine, dropping notification
// non-responses.
func (s *Server) dispatch(r *http.Request, engine *Engine, msgs []JSONRPCRequest, rc tools.RequestContext) []JSONRPCResponse {
	responses := make([]JSONRPCResponse, 0, len(msgs))
	for _, msg := range msgs {
		if resp := engine.Handle(r.Context(), msg, rc); resp != nil {
			responses = append(responses, *resp)
		}
	}
	return responses
}

// writeResponses writes the JSON-RPC responses. An all-notification batch
// has nothing to say and is acknowledged with 202.
func (s *Server) writeResponses(w http.ResponseWriter, status int, responses []JSONRPCResponse, batch bool) {
	if len(responses) == 0 {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var err error
	if batch {
		err = json.NewEncoder(w).Encode(responses)
	} else {
		err = json.NewEncoder(w).Encode(responses[0])
	}
	if err != nil {
		s.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}

// parseMessages decodes a single request object or a batch.
func parseMessages(body []byte) ([]JSONRPCRequest, bool, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var msgs []JSONRPCRequest
		if err := json.Unmarshal(body, &msgs); err != nil {
			return nil, true, err
		}
		return msgs, true, nil
	}

	var msg JSONRPCRequest
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, false, err
	}
	return []JSONRPCRequest{msg}, false, nil
}

// containsInitialize reports whether any message is an initialize call. A
// session-creating request is identified structurally, not by a header.
func containsInitialize(msgs []JSONRPCRequest) bool {
	for _, msg := range msgs {
		if msg.Method == "initialize" {
			return true
		}
	}
	return false
}

// requestContextFrom folds the middleware-attached identity and tenant
// resolution into the explicit per-request context handed to the engine.
func requestContextFrom(r *http.Request) tools.RequestContext {
	rc := tools.RequestContext{
		Identity: auth.IdentityFromContext(r.Context()),
	}
	if tc, ok := tenant.FromContext(r.Context()); ok {
		rc.Tenant = tc
	} else if rc.Identity.APIBaseURL != "" {
		rc.Tenant = tenant.Context{BaseURL: rc.Identity.APIBaseURL, Mode: tenant.ModeSingleTenant}
	}
	return rc
}
