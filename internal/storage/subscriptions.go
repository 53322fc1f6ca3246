package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/subtrack/internal/billing"
	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/service"
	"github.com/google/uuid"
)

const subscriptionColumns = `id, name, description, website, amount, currency, category,
	billing_frequency, status, next_billing_date, last_billing_date, created_at, updated_at`

// CreateSubscription stores a new subscription. An ID is generated when
// sub.ID is empty and the audit timestamps are set on sub.
func (s *SQLiteStorage) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := s.timestamp()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sub.ID, sub.Name, sub.Description, sub.Website, sub.Amount, sub.Currency,
		string(sub.Category), string(sub.BillingFrequency), string(sub.Status),
		sub.NextBillingDate, nullableTime(sub.LastBillingDate), sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: subscription %s", common.ErrDuplicateEntry, sub.ID)
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// GetSubscription returns the subscription with the given id.
func (s *SQLiteStorage) GetSubscription(ctx context.Context, id string) (*model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getSubscription(ctx, s.db, id)
}

func getSubscription(ctx context.Context, q queryable, id string) (*model.Subscription, error) {
	row := q.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: subscription %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// ListSubscriptions returns subscriptions matching filter ordered by next
// billing date, then name.
func (s *SQLiteStorage) ListSubscriptions(ctx context.Context, filter service.SubscriptionFilter) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions`
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(filter.Category))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY next_billing_date, name, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// UpdateSubscription replaces the stored fields of sub. A change of amount
// is recorded in the price history.
func (s *SQLiteStorage) UpdateSubscription(ctx context.Context, sub *model.Subscription) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}
	if err := validateString(sub.ID, "id"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getSubscription(ctx, tx, sub.ID)
		if err != nil {
			return err
		}

		now := s.timestamp()
		if existing.Amount != sub.Amount {
			if err := recordPriceChange(ctx, tx, sub.ID, existing.Amount, sub.Amount, now); err != nil {
				return err
			}
		}

		sub.CreatedAt = existing.CreatedAt
		sub.UpdatedAt = now

		_, err = tx.ExecContext(ctx, `
			UPDATE subscriptions SET
				name = ?, description = ?, website = ?, amount = ?, currency = ?,
				category = ?, billing_frequency = ?, status = ?,
				next_billing_date = ?, last_billing_date = ?, updated_at = ?
			WHERE id = ?
		`,
			sub.Name, sub.Description, sub.Website, sub.Amount, sub.Currency,
			string(sub.Category), string(sub.BillingFrequency), string(sub.Status),
			sub.NextBillingDate, nullableTime(sub.LastBillingDate), sub.UpdatedAt,
			sub.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}
		return nil
	})
}

// DeleteSubscription removes a subscription and its price history.
func (s *SQLiteStorage) DeleteSubscription(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return deleteSubscription(ctx, tx, id)
	})
}

func deleteSubscription(ctx context.Context, q queryable, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: subscription %s", common.ErrNotFound, id)
	}
	return nil
}

// SetStatus changes the status of every listed subscription. Either all of
// them change or, when one is missing, none do.
func (s *SQLiteStorage) SetStatus(ctx context.Context, status model.Status, ids ...string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidSubscription, status)
	}
	if err := validateIDs(ids); err != nil {
		return err
	}

	now := s.timestamp()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			result, err := tx.ExecContext(ctx,
				`UPDATE subscriptions SET status = ?, updated_at = ? WHERE id = ?`,
				string(status), now, id)
			if err != nil {
				return fmt.Errorf("failed to set status: %w", err)
			}
			if affected, _ := result.RowsAffected(); affected == 0 {
				return fmt.Errorf("%w: subscription %s", common.ErrNotFound, id)
			}
		}
		return nil
	})
}

// MarkCharged records that the pending charge happened: the current next
// billing date becomes the last billing date and the next one moves forward
// by one billing period.
func (s *SQLiteStorage) MarkCharged(ctx context.Context, id string) (*model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var updated *model.Subscription
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		sub, err := getSubscription(ctx, tx, id)
		if err != nil {
			return err
		}

		charged := sub.NextBillingDate
		sub.LastBillingDate = &charged
		sub.NextBillingDate = billing.AdvanceDate(charged, sub.BillingFrequency)
		sub.UpdatedAt = s.timestamp()

		_, err = tx.ExecContext(ctx, `
			UPDATE subscriptions SET next_billing_date = ?, last_billing_date = ?, updated_at = ?
			WHERE id = ?
		`, sub.NextBillingDate, charged, sub.UpdatedAt, id)
		if err != nil {
			return fmt.Errorf("failed to mark charged: %w", err)
		}

		updated = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MergeSubscriptions resolves a duplicate group by keeping keepID and
// deleting every id in removeIDs.
func (s *SQLiteStorage) MergeSubscriptions(ctx context.Context, keepID string, removeIDs ...string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(keepID, "keepID"); err != nil {
		return err
	}
	if err := validateIDs(removeIDs); err != nil {
		return err
	}
	for _, id := range removeIDs {
		if id == keepID {
			return fmt.Errorf("%w: cannot merge subscription %s into itself", common.ErrInvalidInput, id)
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getSubscription(ctx, tx, keepID); err != nil {
			return err
		}
		for _, id := range removeIDs {
			if err := deleteSubscription(ctx, tx, id); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE subscriptions SET updated_at = ? WHERE id = ?`, s.timestamp(), keepID); err != nil {
			return fmt.Errorf("failed to touch kept subscription: %w", err)
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (*model.Subscription, error) {
	var (
		sub                         model.Subscription
		category, frequency, status string
		lastBilling                 sql.NullTime
	)

	err := row.Scan(
		&sub.ID,
		&sub.Name,
		&sub.Description,
		&sub.Website,
		&sub.Amount,
		&sub.Currency,
		&category,
		&frequency,
		&status,
		&sub.NextBillingDate,
		&lastBilling,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.Category = model.Category(category)
	sub.BillingFrequency = model.BillingFrequency(frequency)
	sub.Status = model.Status(status)
	if lastBilling.Valid {
		t := lastBilling.Time
		sub.LastBillingDate = &t
	}

	return &sub, nil
}

func nullableTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
