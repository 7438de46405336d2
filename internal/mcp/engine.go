// ABOUTME: Per-session protocol engine: initialize handshake, tools/list, tools/call dispatch.
// ABOUTME: One engine instance exists per session and never outlives its transport.

package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/riccardo-larosa/docebo-mcp-server/internal/tools"
)

// Supported MCP protocol versions.
var supportedProtocolVersions = map[string]bool{
	"2024-11-05": true,
	"2025-03-26": true,
	"2025-06-18": true,
}

// latestProtocolVersion is advertised when the client requests an
// unsupported version.
const latestProtocolVersion = "2025-06-18"

// Executor is the tool execution contract the engine dispatches to.
type Executor interface {
	Execute(ctx context.Context, toolName string, rawArgs json.RawMessage, rc tools.RequestContext) tools.Result
}

// ToolInfo is a tool entry in the tools/list result.
type ToolInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema json.RawMessage    `json:"inputSchema"`
	Annotations *tools.Annotations `json:"annotations,omitempty"`
}

// ListToolsResult is the result for tools/list.
type ListToolsResult struct {
	Tools []ToolInfo `json:"tools"`
}

// CallToolParams are the params for tools/call.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// initializeParams is the subset of the initialize request we act on.
type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
}

// Engine processes the JSON-RPC methods of one session. It holds the
// session's negotiated protocol version and nothing else: identity and
// tenant arrive per call inside the RequestContext. The version fields are
// written exactly once, during the initialize handshake that creates the
// session; a second initialize is rejected, so concurrent requests on one
// registered session only ever read them and need no lock.
type Engine struct {
	registry      *tools.Registry
	executor      Executor
	logger        *slog.Logger
	serverName    string
	serverVersion string

	protocolVersion string
	initialized     bool
}

// EngineConfig holds engine construction parameters.
type EngineConfig struct {
	Registry      *tools.Registry
	Executor      Executor
	Logger        *slog.Logger
	ServerName    string
	ServerVersion string
}

// NewEngine creates a protocol engine for one session.
func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry:      cfg.Registry,
		executor:      cfg.Executor,
		logger:        logger,
		serverName:    cfg.ServerName,
		serverVersion: cfg.ServerVersion,
	}
}

// Initialized reports whether this engine has completed the initialize
// handshake.
func (e *Engine) Initialized() bool { return e.initialized }

// Handle processes one JSON-RPC request and returns the response, or nil
// for notifications.
func (e *Engine) Handle(ctx context.Context, req JSONRPCRequest, rc tools.RequestContext) *JSONRPCResponse {
	if req.JSONRPC != "2.0" {
		resp := errorResponse(req.ID, JSONRPCInvalidRequest, "invalid JSON-RPC version")
		return &resp
	}

	if req.IsNotification() {
		if !strings.HasPrefix(req.Method, "notifications/") {
			e.logger.Warn("received notification for non-notification method", "method", req.Method)
		}
		return nil
	}

	var resp JSONRPCResponse
	switch req.Method {
	case "initialize":
		resp = e.handleInitialize(req)
	case "ping":
		resp = resultResponse(req.ID, map[string]any{})
	case "tools/list":
		resp = e.handleToolsList(req)
	case "tools/call":
		resp = e.handleToolsCall(ctx, req, rc)
	default:
		resp = errorResponse(req.ID, JSONRPCMethodNotFound, "method not found")
	}
	return &resp
}

func (e *Engine) handleInitialize(req JSONRPCRequest) JSONRPCResponse {
	// A session is created by its initialize; a second one on the same
	// session is a protocol error and must not touch the version fields.
	if e.initialized {
		return errorResponse(req.ID, JSONRPCInvalidRequest, "session already initialized")
	}

	var params initializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, JSONRPCInvalidParams, "invalid initialize params")
		}
	}

	version := params.ProtocolVersion
	if !supportedProtocolVersions[version] {
		version = latestProtocolVersion
	}
	e.protocolVersion = version
	e.initialized = true

	return resultResponse(req.ID, map[string]any{
		"protocolVersion": version,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    e.serverName,
			"version": e.serverVersion,
		},
	})
}

func (e *Engine) handleToolsList(req JSONRPCRequest) JSONRPCResponse {
	all := e.registry.List()
	result := ListToolsResult{Tools: make([]ToolInfo, len(all))}
	for i, tool := range all {
		def := tool.Def()
		info := ToolInfo{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}
		if def.Annotations != (tools.Annotations{}) {
			a := def.Annotations
			info.Annotations = &a
		}
		result.Tools[i] = info
	}

	e.logger.Debug("tools/list", "count", len(result.Tools))
	return resultResponse(req.ID, result)
}

func (e *Engine) handleToolsCall(ctx context.Context, req JSONRPCRequest, rc tools.RequestContext) JSONRPCResponse {
	var params CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, JSONRPCInvalidParams, "invalid params")
		}
	}
	if params.Name == "" {
		return errorResponse(req.ID, JSONRPCInvalidParams, "tool name is required")
	}

	e.logger.Debug("tools/call", "tool_name", params.Name, "tenant", rc.Tenant.BaseURL)

	result := e.executor.Execute(ctx, params.Name, params.Arguments, rc)

	e.logger.Debug("tools/call complete", "tool_name", params.Name, "is_error", result.IsError)
	return resultResponse(req.ID, result)
}
