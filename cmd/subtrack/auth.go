package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/subtrack/internal/cli"
	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/config"
	"github.com/Veraticus/subtrack/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize access to Google Sheets",
		Long: `Authorize subtrack to write reports to Google Sheets.

This command will:
1. Start a local callback server
2. Open the Google consent page in your browser
3. Save the resulting token for "subtrack export sheets"

Requires sheets.client_id and sheets.client_secret (or the
GOOGLE_SHEETS_CLIENT_ID and GOOGLE_SHEETS_CLIENT_SECRET variables).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clientID := viper.GetString("sheets.client_id")
			clientSecret := viper.GetString("sheets.client_secret")
			if clientID == "" || clientSecret == "" {
				return common.NewUserError("set sheets.client_id and sheets.client_secret first", common.ErrMissingConfig)
			}

			addr, _ := cmd.Flags().GetString("callback")
			tokenFile := config.SheetsTokenPath()

			token, err := sheets.GetOrCreateToken(cmd.Context(), sheets.OAuth2Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenFile:    tokenFile,
				CallbackAddr: addr,
			})
			if err != nil {
				return fmt.Errorf("google sheets authorization failed: %w", err)
			}
			if token.RefreshToken == "" {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Google returned no refresh token; revoke access and try again"))
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets authorized, token saved to "+tokenFile))
			return nil
		},
	}

	cmd.Flags().String("callback", sheets.DefaultCallbackAddr, "local address for the OAuth2 callback")

	return cmd
}
