package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/subtrack/internal/billing"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/service"
	"github.com/Veraticus/subtrack/internal/sheets"
	"github.com/Veraticus/subtrack/internal/testutil"
)

func reportSnapshot() *service.Snapshot {
	return &service.Snapshot{
		Today: testutil.Today,
		Subscriptions: []model.Subscription{
			testutil.NewSubscription("Netflix").ID("a").Amount(10).DueIn(2).Build(),
			testutil.NewSubscription("Hulu").ID("b").Amount(20).DueIn(3).Status(model.StatusPaused).Build(),
			testutil.NewSubscription("Office").ID("c").Amount(120).DueIn(30).
				Frequency(model.FrequencyYearly).Category(model.CategoryProductivity).Build(),
		},
		Budgets: []model.Budget{{ID: "budget", Name: "All", Amount: 15, Period: model.BudgetMonthly}},
	}
}

func TestBuildReport(t *testing.T) {
	generated := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	report := buildReport(reportSnapshot(), 7, generated)

	assert.Equal(t, generated, report.GeneratedAt)
	assert.Len(t, report.Subscriptions, 3)
	assert.InDelta(t, 20, report.ActiveMonthly, 1e-9)
	assert.InDelta(t, 40, report.TotalMonthly, 1e-9)
	assert.ElementsMatch(t, []service.CategoryLine{
		{Category: model.CategoryEntertainment, Monthly: 10, Count: 1},
		{Category: model.CategoryProductivity, Monthly: 10, Count: 1},
	}, report.Categories)

	require.Len(t, report.Upcoming, 2)
	assert.Equal(t, "a", report.Upcoming[0].ID)
	assert.Equal(t, "b", report.Upcoming[1].ID, "upcoming charges are listed whatever their status")

	require.Len(t, report.Budgets, 1)
	assert.True(t, report.Budgets[0].OverBudget)
}

func TestExportReport(t *testing.T) {
	resetConfig(t)
	writer := sheets.NewMockWriter()
	var out bytes.Buffer

	require.NoError(t, exportReport(context.Background(), &out, writer, reportSnapshot()))
	assert.Equal(t, 1, writer.CallCount())
	require.NotNil(t, writer.LastReport)
	assert.Len(t, writer.LastReport.Subscriptions, 3)
	assert.Contains(t, out.String(), "Exported 3 subscriptions")

	writer.WriteFunc = func(context.Context, *service.Report) error { return errors.New("quota exceeded") }
	err := exportReport(context.Background(), &out, writer, reportSnapshot())
	assert.EqualError(t, err, "quota exceeded")
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	report := buildReport(reportSnapshot(), 7, testutil.Today)

	require.NoError(t, jsonWriter{w: &buf}.Write(context.Background(), report))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.InDelta(t, 20, decoded["ActiveMonthly"], 1e-9)
	assert.Len(t, decoded["Subscriptions"], 3)
}

func TestRenderUpcoming(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderUpcoming(&buf, reportSnapshot().Subscriptions, testutil.Today, 7))

	out := buf.String()
	assert.Contains(t, out, "Due in the next 7 days")
	assert.Contains(t, out, "Netflix")
	assert.Contains(t, out, "in 2 days")
	assert.Contains(t, out, "Hulu")
	assert.NotContains(t, out, "Office")
	assert.Contains(t, out, "Total active: 10.00 USD", "paused subscriptions are shown but not totaled")

	buf.Reset()
	require.NoError(t, renderUpcoming(&buf, nil, testutil.Today, 7))
	assert.Contains(t, buf.String(), "Nothing due")
}

func TestRenderCalendar(t *testing.T) {
	subs := []model.Subscription{
		testutil.NewSubscription("Meal kit").Amount(5).Frequency(model.FrequencyWeekly).
			Next(testutil.Date(time.June, 3)).Category(model.CategoryFood).Build(),
		testutil.NewSubscription("Netflix").Amount(15.49).Next(testutil.Date(time.June, 15)).Build(),
		testutil.NewSubscription("Paused").Amount(99).Next(testutil.Date(time.June, 5)).Status(model.StatusPaused).Build(),
	}
	from := testutil.Date(time.June, 1)
	to := testutil.Date(time.June, 30)

	var buf bytes.Buffer
	require.NoError(t, renderCalendar(&buf, billing.ChargesBetween(subs, from, to), from, to))

	out := buf.String()
	assert.Contains(t, out, "Charges Jun 1, 2024 to Jun 30, 2024")
	assert.Contains(t, out, "Mon Jun 3")
	assert.Contains(t, out, "Mon Jun 24")
	assert.Contains(t, out, "5 charges")
	assert.Contains(t, out, "35.49")
	assert.NotContains(t, out, "Paused")
}

func TestRenderSpend(t *testing.T) {
	snap := reportSnapshot()
	for _, name := range []string{"Disney", "Max", "Peacock"} {
		snap.Subscriptions = append(snap.Subscriptions, testutil.NewSubscription(name).Amount(18).Build())
	}

	var buf bytes.Buffer
	require.NoError(t, renderSpend(&buf, snap))

	out := buf.String()
	assert.Contains(t, out, "Active monthly:")
	assert.Contains(t, out, "74.00")
	assert.Contains(t, out, "Most expensive:   Disney")
	assert.Contains(t, out, "entertainment")
	assert.Contains(t, out, "over")
	assert.Contains(t, out, "Consider reducing entertainment subscriptions")
	assert.Contains(t, out, "Switch to yearly billing")
}

func TestRenderNotifications(t *testing.T) {
	snap := reportSnapshot()
	snap.Settings = model.DefaultNotificationSettings()
	snap.Subscriptions = append(snap.Subscriptions,
		testutil.NewSubscription("Late").ID("late").Next(testutil.Date(time.June, 8)).Build())

	var buf bytes.Buffer
	require.NoError(t, renderNotifications(&buf, buildNotifications(snap)))

	out := buf.String()
	assert.Contains(t, out, "Late payment was due 2 days ago")
	assert.Contains(t, out, "overdue-late")
	assert.Contains(t, out, "upcoming-2-a")

	snap.Dismissed = model.NewKeySet("overdue-late", "upcoming-2-a", "upcoming-3-b")
	buf.Reset()
	require.NoError(t, renderNotifications(&buf, buildNotifications(snap)))
	assert.Contains(t, buf.String(), "All caught up")
}

func TestRenderDuplicates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderDuplicates(&buf, nil))
	assert.Contains(t, buf.String(), "No duplicates found")

	groups := []model.DuplicateGroup{{
		Key:           "a-b",
		Reason:        "Similar names, Same amount",
		Similarity:    0.8,
		Subscriptions: testutil.StreamingDuplicates()[:2],
	}}
	buf.Reset()
	require.NoError(t, renderDuplicates(&buf, groups))
	assert.Contains(t, buf.String(), "Similar names, Same amount")
	assert.Contains(t, buf.String(), "(a-b)")
	assert.Contains(t, buf.String(), "15.49 USD")
}
