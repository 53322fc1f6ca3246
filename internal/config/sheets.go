package config

import (
	"os"

	"github.com/Veraticus/subtrack/internal/sheets"
	"github.com/spf13/viper"
)

// DefaultSheetsTokenPath is where "auth sheets" stores its OAuth2 token.
const DefaultSheetsTokenPath = "$HOME/.config/subtrack/sheets-token.json"

// SheetsTokenPath returns the expanded OAuth2 token location.
func SheetsTokenPath() string {
	if path := viper.GetString("sheets.token_file"); path != "" {
		return ExpandPath(path)
	}
	return ExpandPath(DefaultSheetsTokenPath)
}

// LoadSheetsConfig loads Google Sheets configuration. Values from viper
// (config file or SUBTRACK_ env vars) win over GOOGLE_SHEETS_* variables,
// which win over defaults.
func LoadSheetsConfig() (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	pick := func(key, env string) string {
		if v := viper.GetString(key); v != "" {
			return v
		}
		return os.Getenv(env)
	}

	cfg.ServiceAccountPath = ExpandPath(pick("sheets.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	cfg.ClientID = pick("sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID")
	cfg.ClientSecret = pick("sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET")
	cfg.RefreshToken = pick("sheets.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN")
	cfg.SpreadsheetID = pick("sheets.spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID")
	if name := pick("sheets.spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME"); name != "" {
		cfg.SpreadsheetName = name
	}
	if tz := viper.GetString("sheets.timezone"); tz != "" {
		cfg.TimeZone = tz
	}

	// A token saved by "auth sheets" stands in for a configured refresh token.
	if cfg.RefreshToken == "" && cfg.ClientID != "" {
		if token, err := sheets.LoadToken(SheetsTokenPath()); err == nil {
			cfg.RefreshToken = token.RefreshToken
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
