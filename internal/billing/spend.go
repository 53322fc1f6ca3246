package billing

import (
	"sort"

	"github.com/Veraticus/subtrack/internal/model"
)

// AggregateMonthlySpend sums the monthly equivalent of every subscription,
// whatever its status.
func AggregateMonthlySpend(subs []model.Subscription) float64 {
	var total float64
	for _, s := range subs {
		total += MonthlyEquivalent(s.Amount, s.BillingFrequency)
	}
	return total
}

// ActiveMonthlySpend sums the monthly equivalent of active subscriptions only.
func ActiveMonthlySpend(subs []model.Subscription) float64 {
	return AggregateMonthlySpend(FilterActive(subs))
}

// FilterActive returns the active subscriptions in their original order.
func FilterActive(subs []model.Subscription) []model.Subscription {
	active := make([]model.Subscription, 0, len(subs))
	for _, s := range subs {
		if s.IsActive() {
			active = append(active, s)
		}
	}
	return active
}

// CategorySpend is the monthly spend attributed to one category.
type CategorySpend struct {
	Category model.Category
	Monthly  float64
	Count    int
}

// SpendByCategory groups monthly-equivalent spend by category, largest first.
func SpendByCategory(subs []model.Subscription) []CategorySpend {
	byCat := make(map[model.Category]*CategorySpend)
	for _, s := range subs {
		cs, ok := byCat[s.Category]
		if !ok {
			cs = &CategorySpend{Category: s.Category}
			byCat[s.Category] = cs
		}
		cs.Monthly += MonthlyEquivalent(s.Amount, s.BillingFrequency)
		cs.Count++
	}

	result := make([]CategorySpend, 0, len(byCat))
	for _, cs := range byCat {
		result = append(result, *cs)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Monthly != result[j].Monthly {
			return result[i].Monthly > result[j].Monthly
		}
		return result[i].Category < result[j].Category
	})

	return result
}

// MostExpensive returns the subscription with the largest monthly
// equivalent. Ties go to the earlier subscription.
func MostExpensive(subs []model.Subscription) (model.Subscription, bool) {
	if len(subs) == 0 {
		return model.Subscription{}, false
	}

	best := subs[0]
	bestMonthly := MonthlyEquivalent(best.Amount, best.BillingFrequency)
	for _, s := range subs[1:] {
		if m := MonthlyEquivalent(s.Amount, s.BillingFrequency); m > bestMonthly {
			best, bestMonthly = s, m
		}
	}

	return best, true
}
