package billing

import "github.com/Veraticus/subtrack/internal/model"

// Budget thresholds, in percent of the monthly limit.
const (
	NearLimitPercent = 80.0
	OverLimitPercent = 100.0
)

// EvaluateBudget measures active subscription spend against a budget. Only
// active subscriptions count, restricted to the budget's category when one
// is set. Yearly budgets are spread evenly over twelve months.
func EvaluateBudget(b model.Budget, subs []model.Subscription) model.BudgetStatus {
	var spending float64
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		if b.Category != "" && s.Category != b.Category {
			continue
		}
		spending += BudgetMonthlyEquivalent(s.Amount, s.BillingFrequency)
	}

	limit := b.Amount
	if b.Period == model.BudgetYearly {
		limit = b.Amount / 12
	}

	status := model.BudgetStatus{
		Budget:       b,
		Spending:     spending,
		MonthlyLimit: limit,
	}

	if limit <= 0 {
		// A zero limit is exceeded by any spend at all.
		status.OverBudget = spending > 0
		return status
	}

	status.Percentage = spending / limit * 100
	status.OverBudget = status.Percentage > OverLimitPercent
	status.NearLimit = status.Percentage > NearLimitPercent && status.Percentage <= OverLimitPercent

	return status
}

// EvaluateBudgets evaluates each budget in order.
func EvaluateBudgets(budgets []model.Budget, subs []model.Subscription) []model.BudgetStatus {
	statuses := make([]model.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		statuses = append(statuses, EvaluateBudget(b, subs))
	}
	return statuses
}
