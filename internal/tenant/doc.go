// Package tenant resolves which Docebo platform instance an incoming
// request belongs to.
//
// # Overview
//
// The gateway can run in two modes:
//
//   - Single-tenant: a static API base URL is configured and every request
//     targets that one platform, regardless of the Host header.
//   - Multi-tenant: the platform is derived from the request's Host header.
//     A host like "acme.mcp.example.com" names the tenant "acme", which maps
//     to the platform base URL "https://acme.docebosaas.com".
//
// Resolution happens fresh on every request; nothing is cached because
// consecutive requests may belong to different tenants.
//
// # Usage
//
//	resolver := tenant.NewResolver(tenant.Config{Override: cfg.APIBaseURL})
//	tc, err := resolver.Resolve(r.Host)
//	if err != nil {
//		// respond 400 - the request cannot be routed to a platform
//	}
package tenant
