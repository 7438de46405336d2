// Package config loads and validates gateway configuration.
//
// Configuration comes from a YAML file with ${VAR_NAME} environment variable
// expansion, overlaid with a small set of flat environment variables so the
// gateway can run in containers without a config file at all:
//
//	DOCEBO_API_BASE_URL    static platform base URL (single-tenant mode)
//	MCP_SERVER_PUBLIC_URL  public URL of this server (static OAuth metadata)
//	DOCEBO_AUTH_BASE_URL   authorization server override
//	DOCEBO_CLIENT_ID       confidential client id (enables the token proxy)
//	DOCEBO_CLIENT_SECRET   confidential client secret
//	PORT                   listen port
//
// When no OAuth-related option is set the gateway serves the MCP endpoint
// without authentication and mounts none of the discovery routes.
package config
