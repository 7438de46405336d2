// ABOUTME: Tool definition types: parameter bindings, annotations, and the two tool variants.
// ABOUTME: Defines the invocation context and result shapes shared by engine and executor.

package tools

import (
	"context"
	"encoding/json"

	"github.com/riccardo-larosa/docebo-mcp-server/internal/auth"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/tenant"
)

// ParamLocation says where a bound parameter is placed on the outbound call.
type ParamLocation string

const (
	InPath   ParamLocation = "path"
	InQuery  ParamLocation = "query"
	InHeader ParamLocation = "header"
	InBody   ParamLocation = "body"
)

// Param binds one validated argument to a location on the HTTP request.
type Param struct {
	Name string
	In   ParamLocation
}

// Annotations are behavioral hints surfaced to MCP clients.
type Annotations struct {
	ReadOnly    bool `json:"readOnlyHint,omitempty"`
	Destructive bool `json:"destructiveHint,omitempty"`
	Idempotent  bool `json:"idempotentHint,omitempty"`
	OpenWorld   bool `json:"openWorldHint,omitempty"`
}

// Definition describes one callable operation. For HTTP tools the method,
// path template, and bindings drive the generic execution engine; for code
// tools only the name, description, and schema apply.
type Definition struct {
	Name        string
	Description string
	InputSchema json.RawMessage

	Method          string
	PathTemplate    string
	Params          []Param
	BodyContentType string

	// Security names the declared security requirement ("oauth2" for every
	// Docebo endpoint). The engine forwards whatever token the caller
	// presented; the platform API enforces it.
	Security string

	Annotations Annotations
}

// RequestContext carries the caller identity and tenant resolution for one
// request. It is constructed once at the HTTP boundary and passed explicitly
// through the protocol engine into tool execution.
type RequestContext struct {
	Identity auth.Identity
	Tenant   tenant.Context
}

// Content is one typed part of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Result is the outcome of a tool invocation. Input and upstream failures
// set IsError with a descriptive message; they are normal outcomes, not
// protocol errors.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// TextResult builds a single-part text result.
func TextResult(text string) Result {
	return Result{Content: []Content{{Type: "text", Text: text}}}
}

// ErrorResult builds a single-part error result.
func ErrorResult(text string) Result {
	return Result{Content: []Content{{Type: "text", Text: text}}, IsError: true}
}

// Handler is the process step of a code tool. Arguments arrive already
// validated against the tool's schema. A returned error is formatted into an
// error Result by the engine, matching the HTTP tool failure shape.
type Handler func(ctx context.Context, args map[string]any, rc RequestContext) (string, error)

// Tool is the closed union of the two tool variants.
type Tool interface {
	Def() Definition
	sealed()
}

// HTTPTool is a declarative endpoint description executed by the generic
// engine.
type HTTPTool struct {
	Definition
}

// CodeTool supplies its own process step instead of an endpoint description.
type CodeTool struct {
	Definition
	Handler Handler
}

func (t HTTPTool) Def() Definition { return t.Definition }
func (HTTPTool) sealed()           {}

func (t CodeTool) Def() Definition { return t.Definition }
func (CodeTool) sealed()           {}
