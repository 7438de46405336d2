// Package auth implements the OAuth 2.0 resource-server side of the gateway.
//
// # Overview
//
// The gateway never validates tokens itself. It advertises where tokens come
// from, demands that one is presented, and forwards it opaquely to the Docebo
// API, which is the final arbiter. Three pieces cooperate:
//
//   - Discovery handlers publish RFC 9728 protected-resource metadata and
//     RFC 8414-style authorization-server metadata so a generic MCP client
//     can find the authorization server on its own.
//   - The bearer middleware guards the MCP endpoint. Requests without a
//     usable Authorization header receive a 401 whose WWW-Authenticate
//     challenge points at the protected-resource metadata URL.
//   - The token proxy lets public (secret-less) clients complete an
//     authorization-code exchange by injecting the gateway's confidential
//     client credentials into the upstream token request.
//
// # Identity propagation
//
// The middleware attaches an Identity to the request context via
// WithIdentity. Handlers retrieve it with IdentityFromContext and thread it
// explicitly into tool execution; the raw token is never logged or stored.
//
// # Deployment modes
//
// When OAuth is not configured none of these routes are mounted and the MCP
// endpoint is open. That is a deliberate deployment mode for trusted
// networks, not a fallback inside this package.
package auth
