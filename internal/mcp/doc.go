// Package mcp implements the Model Context Protocol gateway endpoint.
//
// # Overview
//
// MCP (Model Context Protocol) is a JSON-RPC 2.0 based standard by which AI
// clients discover and call named tools. This package turns stateless HTTP
// requests into stateful protocol sessions per the Streamable HTTP
// transport:
//
//   - POST /mcp - JSON-RPC traffic (initialize, tools/list, tools/call)
//   - GET /mcp - reserved for server-initiated streaming; always 405
//   - DELETE /mcp - explicit session termination
//
// # Sessions
//
// A session is created only by an initialize request carrying no
// Mcp-Session-Id header. The response carries a freshly generated id; every
// subsequent request must present it. Each session owns exactly one
// protocol engine and one transport, destroyed together when the transport
// closes. Session ids are never reused; a request against a closed or
// unknown session is rejected with the gateway's -32000 error.
//
// # Request context
//
// The caller's identity (from the bearer middleware) and the tenant
// resolution (from the tenant middleware) are folded into an explicit
// RequestContext per request and handed to the engine; nothing is read from
// globals, so every tool call knows which platform and which caller it acts
// for.
//
// # Error handling
//
// Malformed bodies, unknown methods, and invalid sessions produce JSON-RPC
// error objects. A panic during dispatch is caught at the handler, logged
// with the session id, and converted to a -32603 internal error; it never
// crashes the process.
package mcp
