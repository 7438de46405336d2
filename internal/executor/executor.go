// ABOUTME: Generic tool execution engine: validate arguments, bind to HTTP, call, normalize.
// ABOUTME: Dispatches once on the tool variant; code tools share the validation/format envelope.

package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/riccardo-larosa/docebo-mcp-server/internal/tools"
)

const (
	// callTimeout bounds every outbound API call. There is no overall
	// deadline spanning multiple calls.
	callTimeout = 30 * time.Second

	// maxResponseChars is the ceiling applied to every result text.
	maxResponseChars = 50000

	// maxBodyRead caps how much of an upstream response is read at all.
	maxBodyRead = 4 << 20

	// maxErrorExcerpt bounds the body excerpt included in diagnostics.
	maxErrorExcerpt = 500
)

// summarizeArg is a reserved argument name: GET tools accept it to request
// a condensed listing instead of raw JSON. It is stripped before schema
// validation and never bound to the outbound request.
const summarizeArg = "summarize"

// Engine executes tools against the resolved tenant's API.
type Engine struct {
	registry *tools.Registry
	client   *http.Client
	logger   *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	Registry *tools.Registry
	Logger   *slog.Logger

	// Client overrides the outbound HTTP client; used in tests. The
	// default client carries the fixed call timeout.
	Client *http.Client
}

// New creates an execution engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: callTimeout}
	}
	return &Engine{registry: cfg.Registry, client: client, logger: logger}, nil
}

// Execute runs the named tool with the given raw arguments. Unknown tools,
// invalid arguments, and upstream failures all come back as error results,
// never as Go errors: the caller retries with corrected input.
func (e *Engine) Execute(ctx context.Context, toolName string, rawArgs json.RawMessage, rc tools.RequestContext) tools.Result {
	tool, err := e.registry.Get(toolName)
	if err != nil {
		return tools.ErrorResult(fmt.Sprintf("Tool not found: %q. Call tools/list for the available tools.", toolName))
	}

	args, summarize, errResult := e.parseArgs(rawArgs)
	if errResult != nil {
		return *errResult
	}

	def := tool.Def()
	if msg := validateArgs(def, args); msg != "" {
		return tools.ErrorResult(msg)
	}

	// The variant switch happens exactly once, here.
	switch t := tool.(type) {
	case tools.CodeTool:
		return e.runCodeTool(ctx, t, args, rc)
	case tools.HTTPTool:
		return e.runHTTPTool(ctx, t, args, summarize, rc)
	default:
		return tools.ErrorResult(fmt.Sprintf("Internal error: unknown tool variant for %q.", toolName))
	}
}

// parseArgs decodes raw arguments and splits off the reserved summarize flag.
func (e *Engine) parseArgs(rawArgs json.RawMessage) (map[string]any, bool, *tools.Result) {
	args := map[string]any{}
	if len(rawArgs) > 0 && string(rawArgs) != "null" {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			r := tools.ErrorResult("Invalid arguments: expected a JSON object.")
			return nil, false, &r
		}
	}

	summarize := false
	if v, ok := args[summarizeArg]; ok {
		b, isBool := v.(bool)
		if !isBool {
			r := tools.ErrorResult("Invalid arguments: summarize must be a boolean.")
			return nil, false, &r
		}
		summarize = b
		delete(args, summarizeArg)
	}
	return args, summarize, nil
}

// validateArgs checks args against the tool schema and returns an empty
// string on success, or a message enumerating every violation.
func validateArgs(def tools.Definition, args map[string]any) string {
	if len(def.InputSchema) == 0 {
		return ""
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(def.InputSchema),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return fmt.Sprintf("Internal error: schema for tool %q is unusable: %v", def.Name, err)
	}
	if result.Valid() {
		return ""
	}

	lines := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", verr.Field(), verr.Type(), verr.Description()))
	}
	sort.Strings(lines)
	return fmt.Sprintf("Invalid arguments for tool %q:\n%s", def.Name, strings.Join(lines, "\n"))
}

// runCodeTool executes a hand-written tool inside the shared envelope.
func (e *Engine) runCodeTool(ctx context.Context, t tools.CodeTool, args map[string]any, rc tools.RequestContext) tools.Result {
	out, err := t.Handler(ctx, args, rc)
	if err != nil {
		e.logger.Warn("code tool failed", "tool_name", t.Name, "error", err)
		return tools.ErrorResult(fmt.Sprintf("Tool execution failed: %v", err))
	}
	return tools.TextResult(truncate(out))
}

// runHTTPTool binds arguments to the declarative description and issues the
// outbound call.
func (e *Engine) runHTTPTool(ctx context.Context, t tools.HTTPTool, args map[string]any, summarize bool, rc tools.RequestContext) tools.Result {
	def := t.Definition

	path := def.PathTemplate
	query := url.Values{}
	headers := map[string]string{}
	var body any
	hasBody := false

	for _, p := range def.Params {
		v, ok := args[p.Name]
		if !ok || v == nil {
			continue
		}
		switch p.In {
		case tools.InPath:
			path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(stringify(v)))
		case tools.InQuery:
			query.Set(p.Name, stringify(v))
		case tools.InHeader:
			headers[strings.ToLower(p.Name)] = stringify(v)
		case tools.InBody:
			body = v
			hasBody = true
		}
	}

	// A leftover placeholder means the registry and the arguments disagree:
	// an internal fault, not a user error.
	if leftover := placeholderPattern.FindString(path); leftover != "" {
		e.logger.Error("unresolved path parameter",
			"tool_name", def.Name, "placeholder", leftover, "path", path)
		return tools.ErrorResult(fmt.Sprintf(
			"Internal error: unresolved path parameter %s for tool %q.", leftover, def.Name))
	}

	callURL := joinURL(rc.Tenant.BaseURL, path)
	if len(query) > 0 {
		callURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if hasBody && def.BodyContentType != "" {
		payload, err := json.Marshal(body)
		if err != nil {
			return tools.ErrorResult(fmt.Sprintf("Internal error: encoding request body: %v", err))
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, def.Method, callURL, reqBody)
	if err != nil {
		return tools.ErrorResult(fmt.Sprintf("Internal error: building request: %v", err))
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", def.BodyContentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if rc.Identity.Token != "" {
		req.Header.Set("Authorization", "Bearer "+rc.Identity.Token)
	} else if def.Security != "" {
		// Deliberate policy: proceed without credentials and let the
		// platform reject the call, but make the gap visible.
		e.logger.Warn("tool declares a security requirement but no bearer token was presented",
			"tool_name", def.Name, "security", def.Security)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warn("API call failed", "tool_name", def.Name, "error", err)
		return tools.ErrorResult(fmt.Sprintf("Network error calling %s: %v", def.Name, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyRead))
	if err != nil {
		return tools.ErrorResult(fmt.Sprintf("Network error reading response for %s: %v", def.Name, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return tools.ErrorResult(upstreamDiagnostic(resp.StatusCode, respBody))
	}

	text := formatResponse(def.Method, resp, respBody, summarize)
	return tools.TextResult(truncate(text))
}

// stringify renders a decoded JSON value for use in a URL, query string, or
// header. Whole numbers print without an exponent or trailing zeros.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		out, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(out)
	}
}

// joinURL joins a base URL and a path with exactly one separating slash.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
