package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/retail-insights/internal/cli"
	"github.com/Veraticus/retail-insights/internal/common"
	"github.com/Veraticus/retail-insights/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
		Long:  `Authenticate with external services like Google Sheets.`,
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Open your browser to authenticate with Google
2. Save the token next to your config file
3. Update your config file with the refresh token

Run it once before enabling sheets publishing.`,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().String("listen", "", "OAuth2 callback address (default localhost:8080)")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	creds, err := resolveSheetsCredentials(cmd)
	if err != nil {
		return err
	}
	if creds.TokenFile, err = defaultTokenFile(); err != nil {
		return err
	}
	creds.ListenAddr, _ = cmd.Flags().GetString("listen")

	slog.Info("Starting Google Sheets authentication", "token_file", creds.TokenFile)

	token, err := sheets.AuthenticateOAuth2Interactive(ctx, creds)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	viper.Set("sheets.client_id", creds.ClientID)
	viper.Set("sheets.client_secret", creds.ClientSecret)
	viper.Set("sheets.refresh_token", token.RefreshToken)
	viper.Set("sheets.token_file", creds.TokenFile)

	if err := saveConfig(); err != nil {
		slog.Warn("Could not save refresh token to config file", "error", err)
		fmt.Fprintf(cmd.OutOrStdout(), "Add this to your config.yaml:\nsheets:\n  refresh_token: %q\n", token.RefreshToken)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets authorized. Set sheets.enabled: true to publish results."))
	return nil
}

// resolveSheetsCredentials picks the client id and secret from flags, then config, then the environment.
func resolveSheetsCredentials(cmd *cobra.Command) (sheets.OAuth2Config, error) {
	pick := func(flag, key, env string) string {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			return v
		}
		if v := viper.GetString(key); v != "" {
			return v
		}
		return os.Getenv(env)
	}

	creds := sheets.OAuth2Config{
		ClientID:     pick("client-id", "sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID"),
		ClientSecret: pick("client-secret", "sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET"),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return creds, common.NewUserError(
			"OAuth2 credentials not found. Set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret",
			common.ErrMissingConfig)
	}
	return creds, nil
}

func defaultTokenFile() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "retail", "sheets-token.json"), nil
}

func saveConfig() error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configFile = filepath.Join(home, ".config", "retail", "config.yaml")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configFile), 0750); err != nil {
		return err
	}

	return viper.WriteConfigAs(configFile)
}
