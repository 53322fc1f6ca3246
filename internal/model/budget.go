package model

import (
	"fmt"
	"strings"
	"time"
)

// BudgetPeriod is the period a budget limit applies to.
type BudgetPeriod string

const (
	BudgetMonthly BudgetPeriod = "monthly"
	BudgetYearly  BudgetPeriod = "yearly"
)

// ParseBudgetPeriod converts user input into a BudgetPeriod.
func ParseBudgetPeriod(s string) (BudgetPeriod, error) {
	p := BudgetPeriod(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case BudgetMonthly, BudgetYearly:
		return p, nil
	}
	return "", fmt.Errorf("%w: budget period %q", ErrUnknownEnum, s)
}

// Budget is a spending limit, optionally scoped to a single category.
type Budget struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Name      string
	Period    BudgetPeriod
	Category  Category // Empty means all categories
	Amount    float64
}

// BudgetStatus is the evaluated state of a budget against current spend.
type BudgetStatus struct {
	Budget       Budget
	Spending     float64 // Monthly-equivalent spend in scope
	MonthlyLimit float64
	Percentage   float64
	OverBudget   bool
	NearLimit    bool
}
