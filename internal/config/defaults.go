package config

import (
	"fmt"

	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyDatabasePath             = "database.path"
	KeyLogLevel                 = "logging.level"
	KeyLogFormat                = "logging.format"
	KeyDaysAhead                = "notifications.days_ahead"
	KeyShowRenewed              = "notifications.show_renewed"
	KeyShowPriceChanges         = "notifications.show_price_changes"
	KeyDuplicateStrategy        = "duplicates.strategy"
	KeyDefaultCurrency          = "defaults.currency"
	KeyImportMinOccurrences     = "import.min_occurrences"
	KeyUpcomingDays             = "upcoming.days"
	DefaultDatabasePath         = "$HOME/.local/share/subtrack/subtrack.db"
	DefaultCurrency             = "USD"
	DefaultImportMinOccurrences = 3
	DefaultUpcomingDays         = 7
)

// SetDefaults registers default values on the global viper instance.
func SetDefaults() {
	defaults := model.DefaultNotificationSettings()

	viper.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyLogFormat, "console")
	viper.SetDefault(KeyDaysAhead, defaults.DaysAhead)
	viper.SetDefault(KeyShowRenewed, defaults.ShowRenewed)
	viper.SetDefault(KeyShowPriceChanges, defaults.ShowPriceChanges)
	viper.SetDefault(KeyDuplicateStrategy, "greedy")
	viper.SetDefault(KeyDefaultCurrency, DefaultCurrency)
	viper.SetDefault(KeyImportMinOccurrences, DefaultImportMinOccurrences)
	viper.SetDefault(KeyUpcomingDays, DefaultUpcomingDays)
}

// DatabasePath returns the expanded database location.
func DatabasePath() string {
	path := viper.GetString(KeyDatabasePath)
	if path == "" {
		path = DefaultDatabasePath
	}
	return ExpandPath(path)
}

// NotificationSettings reads the configured notification settings. These
// are the fallback used until settings are saved to the database.
func NotificationSettings() (model.NotificationSettings, error) {
	settings := model.NotificationSettings{
		DaysAhead:        viper.GetInt(KeyDaysAhead),
		ShowRenewed:      viper.GetBool(KeyShowRenewed),
		ShowPriceChanges: viper.GetBool(KeyShowPriceChanges),
	}
	if settings.DaysAhead < 0 {
		return settings, fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyDaysAhead)
	}
	return settings, nil
}
