package billing

import (
	"testing"
	"time"

	"github.com/Veraticus/subtrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sub(id string, amount float64, freq model.BillingFrequency, next time.Time) model.Subscription {
	return model.Subscription{
		ID:               id,
		Name:             id,
		Amount:           amount,
		BillingFrequency: freq,
		NextBillingDate:  next,
		Category:         model.CategoryOther,
		Status:           model.StatusActive,
		Currency:         "USD",
	}
}

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		name   string
		freq   model.BillingFrequency
		amount float64
		want   float64
	}{
		{name: "yearly", amount: 120, freq: model.FrequencyYearly, want: 10},
		{name: "quarterly", amount: 30, freq: model.FrequencyQuarterly, want: 10},
		{name: "weekly", amount: 5, freq: model.FrequencyWeekly, want: 20},
		{name: "monthly", amount: 15.99, freq: model.FrequencyMonthly, want: 15.99},
		{name: "unknown passes through", amount: 7, freq: "fortnightly", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MonthlyEquivalent(tt.amount, tt.freq), 1e-9)
		})
	}
}

func TestBudgetMonthlyEquivalent(t *testing.T) {
	assert.InDelta(t, 43.3, BudgetMonthlyEquivalent(10, model.FrequencyWeekly), 1e-9)
	assert.InDelta(t, 10, BudgetMonthlyEquivalent(120, model.FrequencyYearly), 1e-9)
	assert.InDelta(t, 10, BudgetMonthlyEquivalent(30, model.FrequencyQuarterly), 1e-9)
	assert.InDelta(t, 40, MonthlyEquivalent(10, model.FrequencyWeekly), 1e-9, "spend totals keep four weeks")
}

func TestDaysBetween(t *testing.T) {
	today := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(date(2024, 6, 10), today))
	assert.Equal(t, 1, DaysBetween(time.Date(2024, 6, 11, 1, 0, 0, 0, time.UTC), today))
	assert.Equal(t, -5, DaysBetween(date(2024, 6, 5), today))
	assert.Equal(t, 365, DaysBetween(date(2025, 6, 10), today))

	zone := time.FixedZone("UTC-7", -7*3600)
	assert.Equal(t, 2, DaysBetween(time.Date(2024, 6, 12, 23, 30, 0, 0, zone), today), "calendar date of the input is used")
}

func TestAdvanceDate(t *testing.T) {
	tests := []struct {
		from time.Time
		want time.Time
		name string
		freq model.BillingFrequency
	}{
		{name: "weekly", from: date(2024, 6, 10), freq: model.FrequencyWeekly, want: date(2024, 6, 17)},
		{name: "monthly end of month clamps", from: date(2024, 1, 31), freq: model.FrequencyMonthly, want: date(2024, 2, 29)},
		{name: "monthly mid month", from: date(2024, 6, 15), freq: model.FrequencyMonthly, want: date(2024, 7, 15)},
		{name: "quarterly clamps", from: date(2023, 11, 30), freq: model.FrequencyQuarterly, want: date(2024, 2, 29)},
		{name: "yearly leap day", from: date(2024, 2, 29), freq: model.FrequencyYearly, want: date(2025, 2, 28)},
		{name: "monthly across year", from: date(2024, 12, 5), freq: model.FrequencyMonthly, want: date(2025, 1, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdvanceDate(tt.from, tt.freq))
		})
	}
}

func TestOccurrence_NoDrift(t *testing.T) {
	anchor := date(2024, 1, 31)
	assert.Equal(t, date(2024, 2, 29), occurrence(anchor, model.FrequencyMonthly, 1))
	assert.Equal(t, date(2024, 3, 31), occurrence(anchor, model.FrequencyMonthly, 2))
	assert.Equal(t, date(2024, 4, 30), occurrence(anchor, model.FrequencyMonthly, 3))
}

func TestNextChargeOnOrAfter(t *testing.T) {
	today := date(2024, 6, 10)

	got, ok := NextChargeOnOrAfter(sub("overdue", 10, model.FrequencyMonthly, date(2024, 5, 15)), today)
	require.True(t, ok)
	assert.Equal(t, date(2024, 6, 15), got)

	got, ok = NextChargeOnOrAfter(sub("future", 10, model.FrequencyMonthly, date(2024, 6, 20)), today)
	require.True(t, ok)
	assert.Equal(t, date(2024, 6, 20), got)

	got, ok = NextChargeOnOrAfter(sub("weekly", 10, model.FrequencyWeekly, date(2024, 6, 3)), today)
	require.True(t, ok)
	assert.Equal(t, today, got)

	_, ok = NextChargeOnOrAfter(sub("nodate", 10, model.FrequencyMonthly, time.Time{}), today)
	assert.False(t, ok)
}

func TestUpcomingWithinDays(t *testing.T) {
	today := date(2024, 6, 10)
	subs := []model.Subscription{
		sub("today", 1, model.FrequencyMonthly, date(2024, 6, 10)),
		sub("edge", 1, model.FrequencyMonthly, date(2024, 6, 17)),
		sub("beyond", 1, model.FrequencyMonthly, date(2024, 6, 18)),
		sub("past", 1, model.FrequencyMonthly, date(2024, 6, 9)),
		sub("nodate", 1, model.FrequencyMonthly, time.Time{}),
	}

	got := UpcomingWithinDays(subs, today, 7)
	require.Len(t, got, 2)
	assert.Equal(t, "today", got[0].ID)
	assert.Equal(t, "edge", got[1].ID)

	assert.Empty(t, UpcomingWithinDays(nil, today, 7))
}

func TestChargesBetween(t *testing.T) {
	weekly := sub("Weekly Box", 5, model.FrequencyWeekly, date(2024, 6, 3))
	monthly := sub("Music", 20, model.FrequencyMonthly, date(2024, 6, 15))
	paused := sub("Paused", 99, model.FrequencyMonthly, date(2024, 6, 12))
	paused.Status = model.StatusPaused
	yearly := sub("Domain", 12, model.FrequencyYearly, date(2025, 1, 1))

	charges := ChargesBetween([]model.Subscription{monthly, weekly, paused, yearly}, date(2024, 6, 1), date(2024, 6, 30))
	require.Len(t, charges, 5)

	wantDates := []time.Time{date(2024, 6, 3), date(2024, 6, 10), date(2024, 6, 15), date(2024, 6, 17), date(2024, 6, 24)}
	for i, c := range charges {
		assert.Equal(t, wantDates[i], c.Date)
	}
	assert.Equal(t, "Music", charges[2].Subscription.Name)
	assert.InDelta(t, 40, ProjectedTotal(charges), 1e-9)

	assert.Empty(t, ChargesBetween([]model.Subscription{weekly}, date(2024, 6, 30), date(2024, 6, 1)))
}

func TestAggregateMonthlySpend(t *testing.T) {
	active := sub("active", 10, model.FrequencyMonthly, date(2024, 6, 1))
	paused := sub("paused", 120, model.FrequencyYearly, date(2024, 6, 1))
	paused.Status = model.StatusPaused
	cancelled := sub("cancelled", 5, model.FrequencyWeekly, date(2024, 6, 1))
	cancelled.Status = model.StatusCancelled
	subs := []model.Subscription{active, paused, cancelled}

	assert.InDelta(t, 40, AggregateMonthlySpend(subs), 1e-9)
	assert.InDelta(t, 10, ActiveMonthlySpend(subs), 1e-9)
	assert.InDelta(t, 0, AggregateMonthlySpend(nil), 1e-9)
}

func TestSpendByCategory(t *testing.T) {
	a := sub("a", 10, model.FrequencyMonthly, date(2024, 6, 1))
	a.Category = model.CategoryEntertainment
	b := sub("b", 15, model.FrequencyQuarterly, date(2024, 6, 1))
	b.Category = model.CategoryEntertainment
	c := sub("c", 20, model.FrequencyMonthly, date(2024, 6, 1))
	c.Category = model.CategoryMusic

	got := SpendByCategory([]model.Subscription{a, b, c})
	require.Len(t, got, 2)
	assert.Equal(t, model.CategoryMusic, got[0].Category)
	assert.InDelta(t, 20, got[0].Monthly, 1e-9)
	assert.Equal(t, model.CategoryEntertainment, got[1].Category)
	assert.InDelta(t, 15, got[1].Monthly, 1e-9)
	assert.Equal(t, 2, got[1].Count)
}

func TestMostExpensive(t *testing.T) {
	_, ok := MostExpensive(nil)
	assert.False(t, ok)

	yearly := sub("yearly", 240, model.FrequencyYearly, date(2024, 6, 1))
	monthly := sub("monthly", 20, model.FrequencyMonthly, date(2024, 6, 1))
	weekly := sub("weekly", 4, model.FrequencyWeekly, date(2024, 6, 1))

	got, ok := MostExpensive([]model.Subscription{weekly, yearly, monthly})
	require.True(t, ok)
	assert.Equal(t, "yearly", got.ID, "ties keep the earlier subscription")
}

func TestEvaluateBudget(t *testing.T) {
	streaming := sub("streaming", 50, model.FrequencyMonthly, date(2024, 6, 1))
	streaming.Category = model.CategoryEntertainment
	cinema := sub("cinema", 10, model.FrequencyWeekly, date(2024, 6, 1))
	cinema.Category = model.CategoryEntertainment
	paused := sub("paused", 100, model.FrequencyMonthly, date(2024, 6, 1))
	paused.Category = model.CategoryEntertainment
	paused.Status = model.StatusPaused
	music := sub("music", 30, model.FrequencyMonthly, date(2024, 6, 1))
	music.Category = model.CategoryMusic
	subs := []model.Subscription{streaming, cinema, paused, music}

	tests := []struct {
		name           string
		budget         model.Budget
		wantSpending   float64
		wantLimit      float64
		wantPercentage float64
		wantOver       bool
		wantNear       bool
	}{
		{
			name:           "all categories over budget",
			budget:         model.Budget{Amount: 100, Period: model.BudgetMonthly},
			wantSpending:   123.3,
			wantLimit:      100,
			wantPercentage: 123.3,
			wantOver:       true,
		},
		{
			name:           "category near limit",
			budget:         model.Budget{Amount: 100, Period: model.BudgetMonthly, Category: model.CategoryEntertainment},
			wantSpending:   93.3,
			wantLimit:      100,
			wantPercentage: 93.3,
			wantNear:       true,
		},
		{
			name:           "yearly budget spread over months",
			budget:         model.Budget{Amount: 1200, Period: model.BudgetYearly, Category: model.CategoryMusic},
			wantSpending:   30,
			wantLimit:      100,
			wantPercentage: 30,
		},
		{
			name:           "exactly at limit is near, not over",
			budget:         model.Budget{Amount: 30, Period: model.BudgetMonthly, Category: model.CategoryMusic},
			wantSpending:   30,
			wantLimit:      30,
			wantPercentage: 100,
			wantNear:       true,
		},
		{
			name:         "zero limit",
			budget:       model.Budget{Amount: 0, Period: model.BudgetMonthly, Category: model.CategoryMusic},
			wantSpending: 30,
			wantOver:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateBudget(tt.budget, subs)
			assert.InDelta(t, tt.wantSpending, got.Spending, 1e-9)
			assert.InDelta(t, tt.wantLimit, got.MonthlyLimit, 1e-9)
			assert.InDelta(t, tt.wantPercentage, got.Percentage, 1e-9)
			assert.Equal(t, tt.wantOver, got.OverBudget)
			assert.Equal(t, tt.wantNear, got.NearLimit)
		})
	}

	statuses := EvaluateBudgets([]model.Budget{{Amount: 100}, {Amount: 1000}}, subs)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].OverBudget)
	assert.False(t, statuses[1].OverBudget)
}

func TestSavingsSuggestions(t *testing.T) {
	var subs []model.Subscription
	for _, id := range []string{"a", "b", "c"} {
		s := sub(id, 20, model.FrequencyMonthly, date(2024, 6, 1))
		s.Category = model.CategoryEntertainment
		subs = append(subs, s)
	}

	got := SavingsSuggestions(subs)
	require.Len(t, got, 2)

	assert.Equal(t, SuggestionReduce, got[0].Kind)
	assert.InDelta(t, 216, got[0].AnnualSavings, 1e-9)
	assert.Contains(t, got[0].Message, "60.00/month")

	assert.Equal(t, SuggestionOptimize, got[1].Kind)
	assert.InDelta(t, 108, got[1].AnnualSavings, 1e-9)
	assert.Equal(t, "Switch to yearly billing for 3 subscriptions to save ~15%", got[1].Message)
}

func TestSavingsSuggestions_None(t *testing.T) {
	small := sub("small", 5, model.FrequencyMonthly, date(2024, 6, 1))
	small.Category = model.CategoryEntertainment
	yearly := sub("yearly", 100, model.FrequencyYearly, date(2024, 6, 1))

	assert.Empty(t, SavingsSuggestions([]model.Subscription{small, yearly}))
}
