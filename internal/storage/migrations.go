package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS subscriptions (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				website TEXT NOT NULL DEFAULT '',
				amount REAL NOT NULL CHECK (amount >= 0),
				currency TEXT NOT NULL,
				category TEXT NOT NULL,
				billing_frequency TEXT NOT NULL,
				status TEXT NOT NULL,
				next_billing_date DATETIME NOT NULL,
				last_billing_date DATETIME,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_subscriptions_next ON subscriptions(next_billing_date)`,
			`CREATE INDEX idx_subscriptions_status ON subscriptions(status)`,

			`CREATE TABLE IF NOT EXISTS budgets (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				amount REAL NOT NULL CHECK (amount >= 0),
				period TEXT NOT NULL,
				category TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
		),
	},
	{
		Version:     2,
		Description: "Persist dismissals and notification settings",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS dismissed_duplicates (
				group_key TEXT PRIMARY KEY,
				dismissed_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS dismissed_notifications (
				notification_id TEXT PRIMARY KEY,
				dismissed_at DATETIME NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
		),
	},
	{
		Version:     3,
		Description: "Track subscription price history",
		Up: execAll(
			`CREATE TABLE IF NOT EXISTS price_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				subscription_id TEXT NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
				old_amount REAL NOT NULL,
				new_amount REAL NOT NULL,
				changed_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_price_history_subscription ON price_history(subscription_id, changed_at)`,
		),
	},
}

func execAll(queries ...string) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		for _, query := range queries {
			if _, err := tx.Exec(query); err != nil {
				return fmt.Errorf("failed to execute query: %w", err)
			}
		}
		return nil
	}
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every pending migration, each in its own transaction.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		err := s.withTx(ctx, func(tx *sql.Tx) error {
			if upErr := migration.Up(tx); upErr != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
			}
			if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
				return fmt.Errorf("failed to update schema version: %w", execErr)
			}
			return nil
		})
		if err != nil {
			return err
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
