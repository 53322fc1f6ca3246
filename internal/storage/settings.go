package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/model"
)

const notificationSettingsKey = "notification_settings"

type storedNotificationSettings struct {
	DaysAhead        int  `json:"days_ahead"`
	ShowRenewed      bool `json:"show_renewed"`
	ShowPriceChanges bool `json:"show_price_changes"`
}

// GetNotificationSettings returns the saved settings. found is false when
// nothing has been saved yet.
func (s *SQLiteStorage) GetNotificationSettings(ctx context.Context) (model.NotificationSettings, bool, error) {
	if err := validateContext(ctx); err != nil {
		return model.NotificationSettings{}, false, err
	}

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, notificationSettingsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultNotificationSettings(), false, nil
	}
	if err != nil {
		return model.NotificationSettings{}, false, fmt.Errorf("failed to load notification settings: %w", err)
	}

	var stored storedNotificationSettings
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return model.NotificationSettings{}, false, fmt.Errorf("%w: notification settings: %w", common.ErrDatabaseCorrupted, err)
	}

	return model.NotificationSettings(stored), true, nil
}

// SaveNotificationSettings replaces the saved settings.
func (s *SQLiteStorage) SaveNotificationSettings(ctx context.Context, settings model.NotificationSettings) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSettings(settings); err != nil {
		return err
	}

	raw, err := json.Marshal(storedNotificationSettings(settings))
	if err != nil {
		return fmt.Errorf("failed to encode notification settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, notificationSettingsKey, string(raw), s.timestamp())
	if err != nil {
		return fmt.Errorf("failed to save notification settings: %w", err)
	}
	return nil
}
