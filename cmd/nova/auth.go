package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/nova/internal/cli"
	"github.com/Veraticus/nova/internal/config"
	"github.com/Veraticus/nova/internal/gauth"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authGoogleCmd())

	return cmd
}

func authGoogleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "google",
		Short: "Authenticate with Google Calendar and Sheets",
		Long: `Authenticate with Google using OAuth2.

This command will:
1. Open your browser to authenticate with Google
2. Save a token with read-only Calendar and Sheets access

Later commands pick the refresh token up from the token file.`,
		RunE: runAuthGoogle,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().String("callback", gauth.DefaultCallbackAddr, "Address of the local redirect server")

	return cmd
}

func runAuthGoogle(cmd *cobra.Command, _ []string) error {
	clientID := viper.GetString("google.client_id")
	clientSecret := viper.GetString("google.client_secret")

	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}

	if clientID == "" {
		clientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("%w: OAuth2 credentials not found. Set google.client_id and google.client_secret in config or use --client-id and --client-secret", errUsage)
	}

	callback, _ := cmd.Flags().GetString("callback")
	tokenFile := config.TokenPath(viper.GetViper())
	slog.Info("Starting Google authentication", "token_file", tokenFile)

	_, err := gauth.Authenticate(cmd.Context(), gauth.OAuth2Config{
		Logger:       slog.Default(),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
		CallbackAddr: callback,
		Scopes:       []string{calendar.CalendarReadonlyScope, sheets.SpreadsheetsReadonlyScope},
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google authentication complete"))
	fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Token saved to " + tokenFile))
	return nil
}
