package main

import (
	"time"

	"github.com/Veraticus/subtrack/internal/billing"
	"github.com/Veraticus/subtrack/internal/service"
)

// buildReport derives the exported report from a snapshot.
func buildReport(snap *service.Snapshot, upcomingDays int, generatedAt time.Time) *service.Report {
	report := &service.Report{
		GeneratedAt:   generatedAt,
		Subscriptions: snap.Subscriptions,
		Budgets:       billing.EvaluateBudgets(snap.Budgets, snap.Subscriptions),
		Upcoming:      billing.UpcomingWithinDays(snap.Subscriptions, snap.Today, upcomingDays),
		ActiveMonthly: billing.ActiveMonthlySpend(snap.Subscriptions),
		TotalMonthly:  billing.AggregateMonthlySpend(snap.Subscriptions),
	}

	for _, cs := range billing.SpendByCategory(billing.FilterActive(snap.Subscriptions)) {
		report.Categories = append(report.Categories, service.CategoryLine{
			Category: cs.Category,
			Monthly:  cs.Monthly,
			Count:    cs.Count,
		})
	}

	return report
}
