// ABOUTME: The login subcommand: obtains an API token and caches it locally.
// ABOUTME: Used by the stdio transport, which has no browser-based OAuth flow.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/riccardo-larosa/docebo-mcp-server/internal/auth"
	"github.com/riccardo-larosa/docebo-mcp-server/internal/config"
)

func runLogin(ctx context.Context) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "platform username (omit to use the client credentials grant)")
	password := fs.String("password", "", "platform password")
	if err := fs.Parse(os.Args[2:]); err != nil {
		return err
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	authServer := cfg.OAuth.AuthServerURL
	if authServer == "" {
		authServer = cfg.Docebo.APIBaseURL
	}
	if authServer == "" {
		return fmt.Errorf("no auth server configured: set oauth.auth_server_url or docebo.api_base_url")
	}
	if cfg.OAuth.ClientID == "" {
		return fmt.Errorf("oauth.client_id is required for login")
	}

	creds, err := auth.Login(ctx, auth.LoginOptions{
		AuthServerURL: authServer,
		ClientID:      cfg.OAuth.ClientID,
		ClientSecret:  cfg.OAuth.ClientSecret,
		Username:      *username,
		Password:      *password,
	})
	if err != nil {
		return err
	}

	cachePath, err := auth.CredentialCachePath()
	if err != nil {
		return err
	}
	if err := auth.SaveCachedToken(cachePath, creds); err != nil {
		return err
	}

	color.New(color.FgGreen).Print("✓ ")
	fmt.Printf("token cached at %s", cachePath)
	if !creds.ExpiresAt.IsZero() {
		fmt.Printf(" (expires %s)", creds.ExpiresAt.Format(time.RFC3339))
	}
	fmt.Println()
	return nil
}
