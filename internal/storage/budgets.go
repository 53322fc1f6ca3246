package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/google/uuid"
)

// CreateBudget stores a new budget.
func (s *SQLiteStorage) CreateBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}

	if budget.ID == "" {
		budget.ID = uuid.NewString()
	}
	now := s.timestamp()
	budget.CreatedAt = now
	budget.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, name, amount, period, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, budget.ID, budget.Name, budget.Amount, string(budget.Period), string(budget.Category), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: budget %s", common.ErrDuplicateEntry, budget.ID)
		}
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// ListBudgets returns every budget in creation order.
func (s *SQLiteStorage) ListBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, amount, period, category, created_at, updated_at
		FROM budgets
		ORDER BY created_at, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		var (
			b                model.Budget
			period, category string
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Amount, &period, &category, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.Period = model.BudgetPeriod(period)
		b.Category = model.Category(category)
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// DeleteBudget removes a budget.
func (s *SQLiteStorage) DeleteBudget(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete budget: %w", err)
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return fmt.Errorf("%w: budget %s", common.ErrNotFound, id)
		}
		return nil
	})
}
