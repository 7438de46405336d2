// Package gateway assembles the HTTP surface of the Docebo MCP gateway:
// tenant resolution, the OAuth resource guard, and the MCP session transport
// behind one router, plus the server lifecycle around them.
//
// Route layout:
//
//	GET  /health                                    liveness and version
//	GET  /.well-known/oauth-protected-resource      RFC 9728 discovery (OAuth mode)
//	GET  /.well-known/oauth-authorization-server    RFC 8414-style discovery (OAuth mode)
//	POST /oauth/token                               token exchange proxy (confidential mode)
//	POST /mcp                                       MCP protocol traffic
//	DELETE /mcp                                     session termination
//
// The /mcp chain runs tenant resolution first, then bearer handling, so an
// unknown tenant is rejected before any token is inspected and auth
// challenges can point at the tenant's own authorization server.
package gateway
