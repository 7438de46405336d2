// ABOUTME: Resolves the Docebo platform base URL for a request from Host header or static config.
// ABOUTME: Implements subdomain slug extraction with DNS-label validation for multi-tenant mode.

package tenant

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
)

// DefaultPlatformDomain is the domain Docebo platforms live under. A tenant
// slug "acme" maps to "https://acme.docebosaas.com".
const DefaultPlatformDomain = "docebosaas.com"

// ErrNotResolved indicates the Host header could not be mapped to a platform.
// Callers should respond with HTTP 400; there is no retry or fallback.
var ErrNotResolved = errors.New("tenant not resolved")

// Mode indicates how the platform base URL was determined.
type Mode string

const (
	// ModeSingleTenant means a static base URL override is configured.
	ModeSingleTenant Mode = "single-tenant"
	// ModeMultiTenant means the base URL was derived from the Host header.
	ModeMultiTenant Mode = "multi-tenant"
)

// Context carries the per-request tenant resolution outcome. It is derived
// fresh for every request and never stored.
type Context struct {
	BaseURL string
	Mode    Mode
}

// slugPattern matches a valid tenant slug: lowercase alphanumeric and
// hyphens, 1-63 characters, no leading or trailing hyphen (DNS label rules).
var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// Config holds resolver configuration.
type Config struct {
	// Override is a static platform base URL. When set the resolver always
	// returns it and subdomain derivation is disabled.
	Override string

	// PlatformDomain is the domain slugs are substituted into. Defaults to
	// DefaultPlatformDomain.
	PlatformDomain string
}

// Resolver maps a request's Host header to a Docebo platform base URL.
type Resolver struct {
	override       string
	platformDomain string
}

// NewResolver creates a Resolver from the given configuration.
func NewResolver(cfg Config) *Resolver {
	domain := cfg.PlatformDomain
	if domain == "" {
		domain = DefaultPlatformDomain
	}
	return &Resolver{
		override:       strings.TrimRight(cfg.Override, "/"),
		platformDomain: domain,
	}
}

// Resolve determines the platform base URL for the given Host header value.
// A configured override takes unconditional precedence. Otherwise the first
// label of the host is treated as a tenant slug, requiring a host of at
// least four dot-separated labels (e.g. "acme.mcp.example.com").
func (r *Resolver) Resolve(hostHeader string) (Context, error) {
	if r.override != "" {
		return Context{BaseURL: r.override, Mode: ModeSingleTenant}, nil
	}

	slug, err := extractSlug(hostHeader)
	if err != nil {
		return Context{}, err
	}

	return Context{
		BaseURL: fmt.Sprintf("https://%s.%s", slug, r.platformDomain),
		Mode:    ModeMultiTenant,
	}, nil
}

// extractSlug pulls the tenant slug out of a Host header value. The header
// casing is preserved: uppercase slugs are rejected, not folded.
func extractSlug(hostHeader string) (string, error) {
	if hostHeader == "" {
		return "", fmt.Errorf("%w: empty host", ErrNotResolved)
	}

	host := hostHeader
	if h, _, err := net.SplitHostPort(hostHeader); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")

	if strings.EqualFold(host, "localhost") || net.ParseIP(host) != nil {
		return "", fmt.Errorf("%w: host %q has no tenant subdomain", ErrNotResolved, host)
	}

	// Require tenant + at least three more labels, e.g. tenant.mcp.domain.tld.
	labels := strings.Split(host, ".")
	if len(labels) < 4 {
		return "", fmt.Errorf("%w: host %q has too few labels", ErrNotResolved, host)
	}

	slug := labels[0]
	if !slugPattern.MatchString(slug) {
		return "", fmt.Errorf("%w: invalid tenant slug %q", ErrNotResolved, slug)
	}
	return slug, nil
}
