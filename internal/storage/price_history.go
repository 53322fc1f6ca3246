package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/subtrack/internal/model"
)

func recordPriceChange(ctx context.Context, q queryable, subscriptionID string, oldAmount, newAmount float64, at time.Time) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO price_history (subscription_id, old_amount, new_amount, changed_at)
		VALUES (?, ?, ?, ?)
	`, subscriptionID, oldAmount, newAmount, at)
	if err != nil {
		return fmt.Errorf("failed to record price change: %w", err)
	}
	return nil
}

// PriceHistory returns every recorded price change of a subscription,
// oldest first.
func (s *SQLiteStorage) PriceHistory(ctx context.Context, subscriptionID string) ([]model.PriceChange, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(subscriptionID, "subscriptionID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT subscription_id, old_amount, new_amount, changed_at
		FROM price_history
		WHERE subscription_id = ?
		ORDER BY changed_at, id
	`, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var changes []model.PriceChange
	for rows.Next() {
		var c model.PriceChange
		if err := rows.Scan(&c.SubscriptionID, &c.OldAmount, &c.NewAmount, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price change: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// LatestPriceChanges returns the most recent price change of every
// subscription that has one, keyed by subscription id.
func (s *SQLiteStorage) LatestPriceChanges(ctx context.Context) (map[string]model.PriceChange, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT subscription_id, old_amount, new_amount, changed_at
		FROM price_history
		ORDER BY subscription_id, changed_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load price changes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	latest := make(map[string]model.PriceChange)
	for rows.Next() {
		var c model.PriceChange
		if err := rows.Scan(&c.SubscriptionID, &c.OldAmount, &c.NewAmount, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price change: %w", err)
		}
		// Rows arrive oldest first, so the last one written wins.
		latest[c.SubscriptionID] = c
	}
	return latest, rows.Err()
}
