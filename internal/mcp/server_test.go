// ABOUTME: Tests for the MCP session transport: creation, routing, teardown, and error codes.
// ABOUTME: Uses a fake executor so no outbound HTTP is involved.

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/riccardo-larosa/docebo-mcp-server/internal/tools"
)

// fakeExecutor records invocations and returns a canned result.
type fakeExecutor struct {
	mu    sync.Mutex
	calls []string
	fn    func(toolName string, rc tools.RequestContext) tools.Result
}

func (f *fakeExecutor) Execute(_ context.Context, toolName string, _ json.RawMessage, rc tools.RequestContext) tools.Result {
	f.mu.Lock()
	f.calls = append(f.calls, toolName)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(toolName, rc)
	}
	return tools.TextResult("ok:" + toolName)
}

func newTestServer(t *testing.T, exec Executor) *Server {
	t.Helper()
	registry := tools.NewRegistry(slog.Default())
	if err := registry.RegisterAll(tools.Catalog()); err != nil {
		t.Fatalf("registering catalog: %v", err)
	}
	if exec == nil {
		exec = &fakeExecutor{}
	}
	server, err := NewServer(Config{
		Registry:      registry,
		Executor:      exec,
		Logger:        slog.Default(),
		ServerName:    "docebo-mcp-server",
		ServerVersion: "test",
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	return server
}

func postJSON(t *testing.T, server *Server, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) JSONRPCResponse {
	t.Helper()
	var resp JSONRPCResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v (body: %s)", err, rr.Body.String())
	}
	return resp
}

const initializeBody = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`

func initSession(t *testing.T, server *Server) string {
	t.Helper()
	rr := postJSON(t, server, "", initializeBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("initialize returned %d: %s", rr.Code, rr.Body.String())
	}
	id := rr.Header().Get(SessionHeader)
	if id == "" {
		t.Fatal("initialize response missing session id header")
	}
	return id
}

func TestInitializeCreatesSession(t *testing.T) {
	server := newTestServer(t, nil)

	rr := postJSON(t, server, "", initializeBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get(SessionHeader) == "" {
		t.Error("expected session id header on initialize response")
	}

	resp := decodeResponse(t, rr)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result shape: %T", resp.Result)
	}
	if result["protocolVersion"] != "2025-03-26" {
		t.Errorf("expected negotiated version 2025-03-26, got %v", result["protocolVersion"])
	}
	if server.ActiveSessions() != 1 {
		t.Errorf("expected 1 active session, got %d", server.ActiveSessions())
	}
}

func TestConcurrentInitializesProduceDistinctSessions(t *testing.T) {
	server := newTestServer(t, nil)

	const n = 20
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := postJSON(t, server, "", initializeBody)
			ids <- rr.Header().Get(SessionHeader)
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		if id == "" {
			t.Fatal("empty session id")
		}
		if seen[id] {
			t.Fatalf("duplicate session id %s", id)
		}
		seen[id] = true
	}
	if server.ActiveSessions() != n {
		t.Errorf("expected %d active sessions, got %d", n, server.ActiveSessions())
	}
}

func TestReinitializeOnActiveSessionRejected(t *testing.T) {
	server := newTestServer(t, nil)
	sessionID := initSession(t, server)

	// Concurrent re-initializes on one registered session: every one must
	// be rejected without mutating the engine or minting a new session.
	const n = 8
	results := make(chan *httptest.ResponseRecorder, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- postJSON(t, server, sessionID, initializeBody)
		}()
	}
	wg.Wait()
	close(results)

	for rr := range results {
		resp := decodeResponse(t, rr)
		if resp.Error == nil || resp.Error.Code != JSONRPCInvalidRequest {
			t.Fatalf("expected -32600 for initialize on an active session, got %+v", resp.Error)
		}
		if rr.Header().Get(SessionHeader) != "" {
			t.Error("re-initialize must not issue a session id")
		}
	}
	if server.ActiveSessions() != 1 {
		t.Errorf("expected 1 active session, got %d", server.ActiveSessions())
	}

	// The session still works afterwards with its original version.
	rr := postJSON(t, server, sessionID, `{"jsonrpc":"2.0","id":9,"method":"ping"}`)
	if rr.Code != http.StatusOK {
		t.Errorf("expected session to survive, got %d", rr.Code)
	}
}

func TestSessionRouting(t *testing.T) {
	exec := &fakeExecutor{fn: func(name string, _ tools.RequestContext) tools.Result {
		return tools.TextResult("ran " + name)
	}}
	server := newTestServer(t, exec)
	sessionID := initSession(t, server)

	rr := postJSON(t, server, sessionID,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"list_courses","arguments":{}}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if len(exec.calls) != 1 || exec.calls[0] != "list_courses" {
		t.Errorf("expected one list_courses call, got %v", exec.calls)
	}
}

func TestMissingSessionWithoutInitialize(t *testing.T) {
	server := newTestServer(t, nil)

	rr := postJSON(t, server, "",
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if resp.Error == nil || resp.Error.Code != JSONRPCBadSession {
		t.Fatalf("expected -32000 error, got %+v", resp.Error)
	}
	if resp.Error.Message != "Bad Request: invalid session ID or method" {
		t.Errorf("unexpected message %q", resp.Error.Message)
	}
}

func TestUnknownSessionID(t *testing.T) {
	server := newTestServer(t, nil)

	rr := postJSON(t, server, "never-issued",
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if resp.Error == nil || resp.Error.Code != JSONRPCBadSession {
		t.Fatalf("expected -32000 error, got %+v", resp.Error)
	}
}

func TestSessionTeardown(t *testing.T) {
	server := newTestServer(t, nil)
	sessionID := initSession(t, server)

	del := httptest.NewRequest(http.MethodDelete, "/mcp", nil)
	del.Header.Set(SessionHeader, sessionID)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, del)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	// The id is gone for good; later traffic is rejected, not dispatched.
	rr2 := postJSON(t, server, sessionID,
		`{"jsonrpc":"2.0","id":5,"method":"tools/list"}`)
	resp := decodeResponse(t, rr2)
	if resp.Error == nil || resp.Error.Code != JSONRPCBadSession {
		t.Fatalf("expected -32000 after teardown, got %+v", resp.Error)
	}

	// Deleting again is 404, never a panic or map corruption.
	rr3 := httptest.NewRecorder()
	server.ServeHTTP(rr3, del)
	if rr3.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rr3.Code)
	}
}

func TestDoubleTransportClose(t *testing.T) {
	server := newTestServer(t, nil)
	sessionID := initSession(t, server)

	sess, ok := server.sessions.get(sessionID)
	if !ok {
		t.Fatal("session not found")
	}
	sess.Transport.Close()
	sess.Transport.Close() // must be a no-op

	if server.ActiveSessions() != 0 {
		t.Errorf("expected 0 active sessions, got %d", server.ActiveSessions())
	}
}

func TestGetRejected(t *testing.T) {
	server := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestNotificationAccepted(t *testing.T) {
	server := newTestServer(t, nil)
	sessionID := initSession(t, server)

	rr := postJSON(t, server, sessionID,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rr.Code)
	}
}

func TestBatchInitialize(t *testing.T) {
	server := newTestServer(t, nil)

	body := `[` + initializeBody + `,{"jsonrpc":"2.0","method":"notifications/initialized"}]`
	rr := postJSON(t, server, "", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get(SessionHeader) == "" {
		t.Error("expected session id header on batch initialize")
	}

	var resps []JSONRPCResponse
	if err := json.NewDecoder(rr.Body).Decode(&resps); err != nil {
		t.Fatalf("decoding batch response: %v", err)
	}
	if len(resps) != 1 {
		t.Fatalf("expected 1 response (notification dropped), got %d", len(resps))
	}
}

func TestToolsList(t *testing.T) {
	server := newTestServer(t, nil)
	sessionID := initSession(t, server)

	rr := postJSON(t, server, sessionID, `{"jsonrpc":"2.0","id":3,"method":"tools/list"}`)
	resp := decodeResponse(t, rr)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}

	raw, _ := json.Marshal(resp.Result)
	var result ListToolsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if len(result.Tools) == 0 {
		t.Fatal("expected tools in listing")
	}
	found := false
	for _, info := range result.Tools {
		if info.Name == "list_courses" {
			found = true
			if info.Annotations == nil || !info.Annotations.ReadOnly {
				t.Error("list_courses should carry the read-only annotation")
			}
		}
	}
	if !found {
		t.Error("list_courses missing from tools/list")
	}
}

func TestUnknownMethod(t *testing.T) {
	server := newTestServer(t, nil)
	sessionID := initSession(t, server)

	rr := postJSON(t, server, sessionID, `{"jsonrpc":"2.0","id":9,"method":"resources/list"}`)
	resp := decodeResponse(t, rr)
	if resp.Error == nil || resp.Error.Code != JSONRPCMethodNotFound {
		t.Fatalf("expected -32601, got %+v", resp.Error)
	}
}

func TestMalformedJSON(t *testing.T) {
	server := newTestServer(t, nil)
	rr := postJSON(t, server, "", `{not json`)
	resp := decodeResponse(t, rr)
	if resp.Error == nil || resp.Error.Code != JSONRPCParseError {
		t.Fatalf("expected -32700, got %+v", resp.Error)
	}
}

func TestPanicDuringDispatch(t *testing.T) {
	exec := &fakeExecutor{fn: func(string, tools.RequestContext) tools.Result {
		panic("boom")
	}}
	server := newTestServer(t, exec)
	sessionID := initSession(t, server)

	rr := postJSON(t, server, sessionID,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"list_courses"}}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if resp.Error == nil || resp.Error.Code != JSONRPCInternalError {
		t.Fatalf("expected -32603, got %+v", resp.Error)
	}

	// The process survived; the session still works.
	rr2 := postJSON(t, server, sessionID, `{"jsonrpc":"2.0","id":5,"method":"ping"}`)
	if rr2.Code != http.StatusOK {
		t.Errorf("expected session to survive panic, got %d", rr2.Code)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	server := newTestServer(t, nil)

	a := initSession(t, server)
	b := initSession(t, server)
	if a == b {
		t.Fatal("sessions share an id")
	}

	sessA, _ := server.sessions.get(a)
	sessB, _ := server.sessions.get(b)
	if sessA.Engine == sessB.Engine {
		t.Error("sessions share an engine instance")
	}
	if sessA.Transport == sessB.Transport {
		t.Error("sessions share a transport instance")
	}
}

func TestUnsupportedProtocolVersionFallsBack(t *testing.T) {
	server := newTestServer(t, nil)

	body := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":%q}}`, "1999-01-01")
	rr := postJSON(t, server, "", body)
	resp := decodeResponse(t, rr)
	result := resp.Result.(map[string]any)
	if result["protocolVersion"] != latestProtocolVersion {
		t.Errorf("expected fallback to %s, got %v", latestProtocolVersion, result["protocolVersion"])
	}
}
