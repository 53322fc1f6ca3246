package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/subtrack/internal/model"
)

// DismissDuplicateGroup hides a duplicate group by its key. Dismissing the
// same key twice is a no-op.
func (s *SQLiteStorage) DismissDuplicateGroup(ctx context.Context, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO dismissed_duplicates (group_key, dismissed_at) VALUES (?, ?)`,
		key, s.timestamp())
	if err != nil {
		return fmt.Errorf("failed to dismiss duplicate group: %w", err)
	}
	return nil
}

// DismissedDuplicateKeys returns every dismissed duplicate group key.
func (s *SQLiteStorage) DismissedDuplicateKeys(ctx context.Context) (model.KeySet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return loadKeySet(ctx, s.db, `SELECT group_key FROM dismissed_duplicates`)
}

// DismissNotifications hides the given notification ids.
func (s *SQLiteStorage) DismissNotifications(ctx context.Context, ids ...string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateIDs(ids); err != nil {
		return err
	}

	now := s.timestamp()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO dismissed_notifications (notification_id, dismissed_at) VALUES (?, ?)`,
				id, now); err != nil {
				return fmt.Errorf("failed to dismiss notification %s: %w", id, err)
			}
		}
		return nil
	})
}

// DismissedNotificationIDs returns every dismissed notification id.
func (s *SQLiteStorage) DismissedNotificationIDs(ctx context.Context) (model.KeySet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return loadKeySet(ctx, s.db, `SELECT notification_id FROM dismissed_notifications`)
}

func loadKeySet(ctx context.Context, q queryable, query string) (model.KeySet, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load dismissals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := model.NewKeySet()
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan dismissal: %w", err)
		}
		keys.Add(key)
	}
	return keys, rows.Err()
}
