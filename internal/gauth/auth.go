package gauth

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// TokenSource returns a token source for the configured credentials.
func TokenSource(ctx context.Context, cfg Config, scopes ...string) (oauth2.TokenSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(cfg.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, scopes...)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		return jwtConfig.TokenSource(ctx), nil
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       scopes,
	}
	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
		TokenType:    "Bearer",
	}
	return oauthConfig.TokenSource(ctx, token), nil
}

// ClientOption returns an option that authenticates API requests.
func ClientOption(ctx context.Context, cfg Config, scopes ...string) (option.ClientOption, error) {
	ts, err := TokenSource(ctx, cfg, scopes...)
	if err != nil {
		return nil, err
	}
	return option.WithHTTPClient(oauth2.NewClient(ctx, ts)), nil
}
