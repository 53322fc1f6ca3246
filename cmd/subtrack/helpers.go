package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/config"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/service"
	"github.com/Veraticus/subtrack/internal/storage"
)

// dateLayout is the input format of every date flag.
const dateLayout = "2006-01-02"

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// withStorage runs fn against an open database and closes it afterwards.
func withStorage(cmd *cobra.Command, fn func(ctx context.Context, store service.Storage) error) error {
	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(ctx, store)
}

// parseDate reads a YYYY-MM-DD date as midnight UTC.
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected YYYY-MM-DD", common.ErrInvalidDate, s)
	}
	return t, nil
}

// currentDay is today's local calendar date as midnight UTC, matching how
// dates are stored.
func currentDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func addTodayFlag(cmd *cobra.Command) {
	cmd.Flags().String("today", "", "evaluate as of this date (YYYY-MM-DD) instead of the current date")
}

// todayFromFlags returns the --today override or the current date.
func todayFromFlags(cmd *cobra.Command) (time.Time, error) {
	value, _ := cmd.Flags().GetString("today")
	if value == "" {
		return currentDay(time.Now()), nil
	}
	return parseDate(value)
}

// loadSnapshot reads everything the report commands need. Settings saved in
// the database win over the configuration file.
func loadSnapshot(ctx context.Context, store service.Storage, today time.Time) (*service.Snapshot, error) {
	subs, err := store.ListSubscriptions(ctx, service.SubscriptionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	budgets, err := store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	settings, found, err := store.GetNotificationSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification settings: %w", err)
	}
	if !found {
		if settings, err = config.NotificationSettings(); err != nil {
			return nil, err
		}
	}

	dismissed, err := store.DismissedNotificationIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dismissed notifications: %w", err)
	}

	dismissedDups, err := store.DismissedDuplicateKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dismissed duplicates: %w", err)
	}

	prices, err := store.LatestPriceChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}

	return &service.Snapshot{
		Today:         today,
		Settings:      settings,
		Dismissed:     dismissed,
		DismissedDups: dismissedDups,
		PriceChanges:  prices,
		Subscriptions: subs,
		Budgets:       budgets,
	}, nil
}

// minIDPrefix is the shortest id prefix accepted as a reference.
const minIDPrefix = 4

// resolveSubscription finds a subscription by id, then by case-insensitive
// exact name, then by id prefix.
func resolveSubscription(ctx context.Context, store service.Storage, ref string) (*model.Subscription, error) {
	sub, err := store.GetSubscription(ctx, ref)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	subs, err := store.ListSubscriptions(ctx, service.SubscriptionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	ref = strings.TrimSpace(ref)
	var matches []model.Subscription
	for _, s := range subs {
		if strings.EqualFold(s.Name, ref) {
			matches = append(matches, s)
		}
	}
	// Fall back to the shortened ids shown in tables.
	if len(matches) == 0 && len(ref) >= minIDPrefix {
		for _, s := range subs {
			if strings.HasPrefix(s.ID, ref) {
				matches = append(matches, s)
			}
		}
	}

	switch len(matches) {
	case 0:
		return nil, common.NewUserError(fmt.Sprintf("no subscription matches %q", ref), common.ErrNotFound)
	case 1:
		return &matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, common.NewUserError(
			fmt.Sprintf("%q matches %d subscriptions, use an id: %s", ref, len(matches), strings.Join(ids, ", ")),
			common.ErrInvalidInput,
		)
	}
}

// resolveIDs maps every reference to a subscription id.
func resolveIDs(ctx context.Context, store service.Storage, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		sub, err := resolveSubscription(ctx, store, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, sub.ID)
	}
	return ids, nil
}
