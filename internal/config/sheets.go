package config

import (
	"os"

	"github.com/Veraticus/trash-scanner/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads the Google Sheets feedback export configuration from
// Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or TRASHSCAN_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig() (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	cfg.ServiceAccountPath = ExpandPath(FirstNonEmpty(
		viper.GetString("sheets.service_account_path"),
		os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"),
	))
	cfg.ClientID = FirstNonEmpty(viper.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
	cfg.ClientSecret = FirstNonEmpty(viper.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
	cfg.RefreshToken = FirstNonEmpty(viper.GetString("sheets.refresh_token"), os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN"))
	cfg.SpreadsheetID = FirstNonEmpty(viper.GetString("sheets.spreadsheet_id"), os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"))

	if name := FirstNonEmpty(viper.GetString("sheets.spreadsheet_name"), os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME")); name != "" {
		cfg.SpreadsheetName = name
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
