// Package gauth builds authenticated Google API clients from either a
// service account key or OAuth2 refresh-token credentials.
package gauth

import (
	"errors"
	"os"
)

// Authentication errors.
var (
	ErrNoAuth       = errors.New("no authentication method configured")
	ErrMultipleAuth = errors.New("multiple authentication methods configured; use either OAuth2 or service account")
)

// Config holds Google API credentials.
type Config struct {
	ClientID           string `mapstructure:"client_id"`
	ClientSecret       string `mapstructure:"client_secret"`
	RefreshToken       string `mapstructure:"refresh_token"`
	ServiceAccountPath string `mapstructure:"service_account_path"`
}

// LoadFromEnv fills unset fields from GOOGLE_* environment variables.
func (c *Config) LoadFromEnv() {
	setIfEmpty(&c.ClientID, "GOOGLE_CLIENT_ID")
	setIfEmpty(&c.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setIfEmpty(&c.RefreshToken, "GOOGLE_REFRESH_TOKEN")
	setIfEmpty(&c.ServiceAccountPath, "GOOGLE_APPLICATION_CREDENTIALS")
}

func setIfEmpty(field *string, env string) {
	if *field == "" {
		*field = os.Getenv(env)
	}
}

// HasOAuth reports whether a complete set of OAuth2 credentials is present.
func (c Config) HasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Validate checks that exactly one authentication method is configured.
func (c Config) Validate() error {
	hasServiceAccount := c.ServiceAccountPath != ""

	if !c.HasOAuth() && !hasServiceAccount {
		return ErrNoAuth
	}
	if c.HasOAuth() && hasServiceAccount {
		return ErrMultipleAuth
	}
	return nil
}
