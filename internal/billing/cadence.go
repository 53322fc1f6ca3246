package billing

import "github.com/Veraticus/subtrack/internal/model"

// Weekly-to-monthly multipliers. Spend totals use WeeksPerMonth while budget
// percentages use BudgetWeeksPerMonth; the two are kept apart on purpose.
const (
	WeeksPerMonth       = 4.0
	BudgetWeeksPerMonth = 4.33
)

// MonthlyEquivalent expresses amount, billed at freq, as an average monthly
// cost. Weekly charges count as four per month.
func MonthlyEquivalent(amount float64, freq model.BillingFrequency) float64 {
	return monthly(amount, freq, WeeksPerMonth)
}

// BudgetMonthlyEquivalent is MonthlyEquivalent for budget calculations,
// where a month holds 4.33 weeks.
func BudgetMonthlyEquivalent(amount float64, freq model.BillingFrequency) float64 {
	return monthly(amount, freq, BudgetWeeksPerMonth)
}

func monthly(amount float64, freq model.BillingFrequency, weeks float64) float64 {
	switch freq {
	case model.FrequencyYearly:
		return amount / 12
	case model.FrequencyQuarterly:
		return amount / 3
	case model.FrequencyWeekly:
		return amount * weeks
	default:
		return amount
	}
}
