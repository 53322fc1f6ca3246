package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/subtrack/internal/billing"
	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/config"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/testutil"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	config.SetDefaults()
	t.Cleanup(viper.Reset)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "2024-13-01", "06/10/2024", "2023-02-29"} {
		_, err := parseDate(bad)
		assert.ErrorIs(t, err, common.ErrInvalidDate, bad)
	}
}

func TestCurrentDay(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*3600)
	now := time.Date(2024, 6, 10, 23, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), currentDay(now))
}

func TestTodayFromFlags(t *testing.T) {
	cmd := &cobra.Command{}
	addTodayFlag(cmd)

	today, err := todayFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, currentDay(time.Now()), today)

	require.NoError(t, cmd.Flags().Set("today", "2024-06-10"))
	today, err = todayFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, testutil.Today, today)

	require.NoError(t, cmd.Flags().Set("today", "tomorrow"))
	_, err = todayFromFlags(cmd)
	assert.Error(t, err)
}

func TestResolveSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t,
		testutil.NewSubscription("Netflix").Build(),
		testutil.NewSubscription("Gym").Build(),
		testutil.NewSubscription("gym").Build(),
	)
	ctx := context.Background()
	netflix := db.Subscriptions[0]

	sub, err := resolveSubscription(ctx, db.Storage, netflix.ID)
	require.NoError(t, err)
	assert.Equal(t, "Netflix", sub.Name)

	sub, err = resolveSubscription(ctx, db.Storage, "NETFLIX")
	require.NoError(t, err)
	assert.Equal(t, netflix.ID, sub.ID)

	sub, err = resolveSubscription(ctx, db.Storage, shortID(netflix.ID))
	require.NoError(t, err)
	assert.Equal(t, netflix.ID, sub.ID)

	_, err = resolveSubscription(ctx, db.Storage, "gym")
	var userErr *common.UserError
	require.True(t, errors.As(err, &userErr))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Contains(t, userErr.UserMessage, "matches 2 subscriptions")

	_, err = resolveSubscription(ctx, db.Storage, "Hulu")
	assert.ErrorIs(t, err, common.ErrNotFound)

	ids, err := resolveIDs(ctx, db.Storage, []string{"netflix", db.Subscriptions[1].ID})
	require.NoError(t, err)
	assert.Equal(t, []string{netflix.ID, db.Subscriptions[1].ID}, ids)
}

func TestLoadSnapshot(t *testing.T) {
	resetConfig(t)
	db := testutil.SetupTestDB(t, testutil.StreamingDuplicates()...)
	ctx := context.Background()

	snap, err := loadSnapshot(ctx, db.Storage, testutil.Today)
	require.NoError(t, err)
	assert.Equal(t, testutil.Today, snap.Today)
	assert.Len(t, snap.Subscriptions, 3)
	assert.Equal(t, model.DefaultNotificationSettings(), snap.Settings, "config supplies settings until some are saved")
	assert.Empty(t, snap.Dismissed)
	assert.Empty(t, snap.Budgets)

	saved := model.NotificationSettings{DaysAhead: 10}
	require.NoError(t, db.Storage.SaveNotificationSettings(ctx, saved))
	require.NoError(t, db.Storage.DismissNotifications(ctx, "today-x"))
	require.NoError(t, db.Storage.CreateBudget(ctx, &model.Budget{Name: "All", Amount: 50, Period: model.BudgetMonthly}))

	snap, err = loadSnapshot(ctx, db.Storage, testutil.Today)
	require.NoError(t, err)
	assert.Equal(t, saved, snap.Settings)
	assert.True(t, snap.Dismissed.Has("today-x"))
	assert.Len(t, snap.Budgets, 1)
}

func TestApplySubscriptionFlags(t *testing.T) {
	resetConfig(t)

	t.Run("all flags with defaults", func(t *testing.T) {
		cmd := &cobra.Command{}
		addSubscriptionFlags(cmd)
		require.NoError(t, cmd.Flags().Set("amount", "15.49"))
		require.NoError(t, cmd.Flags().Set("category", "Music"))

		sub := model.Subscription{Name: "Spotify"}
		require.NoError(t, applySubscriptionFlags(cmd, &sub, testutil.Today, true))

		assert.InDelta(t, 15.49, sub.Amount, 1e-9)
		assert.Equal(t, config.DefaultCurrency, sub.Currency)
		assert.Equal(t, model.CategoryMusic, sub.Category)
		assert.Equal(t, model.FrequencyMonthly, sub.BillingFrequency)
		assert.Equal(t, model.StatusActive, sub.Status)
		assert.Equal(t, billing.AdvanceDate(testutil.Today, model.FrequencyMonthly), sub.NextBillingDate)
		assert.Nil(t, sub.LastBillingDate)
	})

	t.Run("only changed flags", func(t *testing.T) {
		cmd := &cobra.Command{}
		addSubscriptionFlags(cmd)
		require.NoError(t, cmd.Flags().Set("amount", "17.99"))
		require.NoError(t, cmd.Flags().Set("last", "2024-06-01"))

		sub := testutil.NewSubscription("Netflix").Category(model.CategoryEntertainment).Build()
		next := sub.NextBillingDate
		require.NoError(t, applySubscriptionFlags(cmd, &sub, testutil.Today, false))

		assert.InDelta(t, 17.99, sub.Amount, 1e-9)
		assert.Equal(t, model.CategoryEntertainment, sub.Category)
		assert.Equal(t, next, sub.NextBillingDate)
		require.NotNil(t, sub.LastBillingDate)
		assert.Equal(t, testutil.Date(time.June, 1), *sub.LastBillingDate)
	})

	t.Run("invalid values", func(t *testing.T) {
		for flag, value := range map[string]string{
			"category":  "streaming",
			"frequency": "daily",
			"status":    "gone",
			"next":      "soon",
		} {
			cmd := &cobra.Command{}
			addSubscriptionFlags(cmd)
			require.NoError(t, cmd.Flags().Set(flag, value))

			sub := model.Subscription{}
			assert.Error(t, applySubscriptionFlags(cmd, &sub, testutil.Today, false), flag)
		}
	})
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"jan.qfx", "feb.qfx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	files, err := expandFiles([]string{filepath.Join(dir, "*.qfx"), filepath.Join(dir, "jan.qfx")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "jan.qfx"), filepath.Join(dir, "feb.qfx")}, files)

	_, err = expandFiles([]string{filepath.Join(dir, "*.ofx")})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestChargeKey(t *testing.T) {
	withID := model.Charge{ID: "FIT1", AccountID: "acct", Payee: "NETFLIX", Amount: 15.49}
	assert.Equal(t, "acct|FIT1", chargeKey(withID))

	withoutID := model.Charge{AccountID: "acct", Date: testutil.Today, Payee: "NETFLIX", Amount: 15.49}
	assert.Equal(t, "acct|2024-06-10|NETFLIX|15.49", chargeKey(withoutID))
}
