// ABOUTME: Configuration loading and parsing for the Docebo MCP gateway.
// ABOUTME: Supports YAML files with environment variable expansion plus flat env overrides.

package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the complete gateway configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Docebo  DoceboConfig  `yaml:"docebo"`
	OAuth   OAuthConfig   `yaml:"oauth"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds listen address configuration.
type ServerConfig struct {
	Port int `yaml:"port"`

	// PublicURL is the externally reachable URL of this gateway. When set,
	// OAuth discovery metadata uses it verbatim instead of deriving the
	// self URL from the Host and X-Forwarded-Proto headers.
	PublicURL string `yaml:"public_url"`
}

// DoceboConfig holds platform routing configuration.
type DoceboConfig struct {
	// APIBaseURL pins every request to one platform (single-tenant mode)
	// and disables subdomain tenant derivation.
	APIBaseURL string `yaml:"api_base_url"`

	// PlatformDomain is the domain tenant slugs map into in multi-tenant
	// mode. Defaults to docebosaas.com.
	PlatformDomain string `yaml:"platform_domain"`
}

// OAuthConfig holds resource-server and token-proxy configuration.
type OAuthConfig struct {
	// AuthServerURL overrides the authorization server advertised in
	// discovery metadata. Without it, multi-tenant deployments advertise
	// the tenant-derived platform URL.
	AuthServerURL string `yaml:"auth_server_url"`

	// ClientID and ClientSecret, when both set, enable the /oauth/token
	// proxy that injects these confidential credentials into token
	// requests from public clients.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded, then
// flat environment overrides are applied. A missing file is not an error:
// the configuration is built from environment variables alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case os.IsNotExist(err):
		// Env-only configuration.
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnvOverrides overlays the recognized flat environment variables on
// top of the file-derived configuration.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DOCEBO_API_BASE_URL"); v != "" {
		cfg.Docebo.APIBaseURL = v
	}
	if v := os.Getenv("MCP_SERVER_PUBLIC_URL"); v != "" {
		cfg.Server.PublicURL = v
	}
	if v := os.Getenv("DOCEBO_AUTH_BASE_URL"); v != "" {
		cfg.OAuth.AuthServerURL = v
	}
	if v := os.Getenv("DOCEBO_CLIENT_ID"); v != "" {
		cfg.OAuth.ClientID = v
	}
	if v := os.Getenv("DOCEBO_CLIENT_SECRET"); v != "" {
		cfg.OAuth.ClientSecret = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// OAuthEnabled reports whether the OAuth resource-guard routes should be
// mounted. Running without OAuth is a deliberate deployment mode: the MCP
// endpoint is then open and no discovery routes exist.
func (c *Config) OAuthEnabled() bool {
	return c.OAuth.AuthServerURL != "" || c.Server.PublicURL != "" || c.OAuth.ClientID != ""
}

// TokenProxyEnabled reports whether this gateway holds confidential client
// credentials and should expose the /oauth/token exchange proxy.
func (c *Config) TokenProxyEnabled() bool {
	return c.OAuth.ClientID != "" && c.OAuth.ClientSecret != ""
}

// Validate checks that all configured fields are usable.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	for name, value := range map[string]string{
		"docebo.api_base_url":   c.Docebo.APIBaseURL,
		"server.public_url":     c.Server.PublicURL,
		"oauth.auth_server_url": c.OAuth.AuthServerURL,
	} {
		if value == "" {
			continue
		}
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s %q is not an absolute URL", name, value)
		}
	}
	if c.OAuth.ClientSecret != "" && c.OAuth.ClientID == "" {
		return fmt.Errorf("oauth.client_secret is set but oauth.client_id is empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}
