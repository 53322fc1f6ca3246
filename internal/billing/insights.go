package billing

import (
	"fmt"
	"math"

	"github.com/Veraticus/subtrack/internal/model"
)

// SuggestionKind classifies a savings suggestion.
type SuggestionKind string

const (
	SuggestionReduce   SuggestionKind = "reduce"
	SuggestionOptimize SuggestionKind = "optimize"
)

// Heuristics used by SavingsSuggestions.
const (
	entertainmentMinCount    = 2    // more than this many entertainment subscriptions
	entertainmentMinMonthly  = 50.0 // and more than this per month
	entertainmentCutFraction = 0.3
	yearlySwitchMinAmount    = 10.0
	yearlySwitchDiscount     = 0.15
)

// Suggestion is an actionable way to spend less.
type Suggestion struct {
	Kind          SuggestionKind
	Message       string
	AnnualSavings float64
}

// SavingsSuggestions inspects the subscriptions for common savings
// opportunities. Savings are rounded to whole currency units per year.
func SavingsSuggestions(subs []model.Subscription) []Suggestion {
	var suggestions []Suggestion

	var entertainment []model.Subscription
	for _, s := range subs {
		if s.Category == model.CategoryEntertainment {
			entertainment = append(entertainment, s)
		}
	}
	if len(entertainment) > entertainmentMinCount {
		total := AggregateMonthlySpend(entertainment)
		if total > entertainmentMinMonthly {
			suggestions = append(suggestions, Suggestion{
				Kind:          SuggestionReduce,
				Message:       fmt.Sprintf("Consider reducing entertainment subscriptions. You're spending %.2f/month.", total),
				AnnualSavings: math.Round(total * 12 * entertainmentCutFraction),
			})
		}
	}

	var monthlyBilled []model.Subscription
	for _, s := range subs {
		if s.BillingFrequency == model.FrequencyMonthly && s.Amount > yearlySwitchMinAmount {
			monthlyBilled = append(monthlyBilled, s)
		}
	}
	if len(monthlyBilled) > 0 {
		var sum float64
		for _, s := range monthlyBilled {
			sum += s.Amount
		}
		plural := ""
		if len(monthlyBilled) > 1 {
			plural = "s"
		}
		suggestions = append(suggestions, Suggestion{
			Kind:          SuggestionOptimize,
			Message:       fmt.Sprintf("Switch to yearly billing for %d subscription%s to save ~15%%", len(monthlyBilled), plural),
			AnnualSavings: math.Round(sum * 12 * yearlySwitchDiscount),
		})
	}

	return suggestions
}
