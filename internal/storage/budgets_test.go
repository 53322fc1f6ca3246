package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_Budgets(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	overall := &model.Budget{Name: "Everything", Amount: 100, Period: model.BudgetMonthly}
	fun := &model.Budget{Name: "Fun", Amount: 240, Period: model.BudgetYearly, Category: model.CategoryEntertainment}
	require.NoError(t, store.CreateBudget(ctx, overall))
	require.NoError(t, store.CreateBudget(ctx, fun))
	assert.NotEmpty(t, overall.ID)

	budgets, err := store.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 2)
	assert.Equal(t, "Everything", budgets[0].Name)
	assert.Equal(t, model.Category(""), budgets[0].Category)
	assert.Equal(t, model.BudgetYearly, budgets[1].Period)
	assert.Equal(t, model.CategoryEntertainment, budgets[1].Category)

	require.NoError(t, store.DeleteBudget(ctx, overall.ID))
	assert.ErrorIs(t, store.DeleteBudget(ctx, overall.ID), common.ErrNotFound)

	budgets, err = store.ListBudgets(ctx)
	require.NoError(t, err)
	assert.Len(t, budgets, 1)
}

func TestSQLiteStorage_CreateBudget_Rejects(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		budget *model.Budget
		name   string
	}{
		{name: "nil", budget: nil},
		{name: "missing name", budget: &model.Budget{Amount: 1, Period: model.BudgetMonthly}},
		{name: "negative amount", budget: &model.Budget{Name: "x", Amount: -5, Period: model.BudgetMonthly}},
		{name: "unknown period", budget: &model.Budget{Name: "x", Amount: 5, Period: "weekly"}},
		{name: "unknown category", budget: &model.Budget{Name: "x", Amount: 5, Period: model.BudgetMonthly, Category: "snacks"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, store.CreateBudget(ctx, tt.budget), common.ErrInvalidInput)
		})
	}
}
