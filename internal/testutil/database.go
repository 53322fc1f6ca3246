// Package testutil provides test fixtures and database helpers for subtrack.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/service"
	"github.com/Veraticus/subtrack/internal/storage"
)

// TestDB is a migrated in-memory database seeded for a single test.
type TestDB struct {
	Storage       *storage.SQLiteStorage
	t             *testing.T
	Subscriptions []model.Subscription
}

// SetupTestDB creates a migrated in-memory database holding subs. Seeded
// subscriptions get their generated ids back in TestDB.Subscriptions, in
// the order given. The database is closed when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewSubscription("Netflix").Amount(15.49).Build(),
//		testutil.NewSubscription("Gym").Category(model.CategoryFitness).Build(),
//	)
func SetupTestDB(t *testing.T, subs ...model.Subscription) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{Storage: store, t: t}
	for _, sub := range subs {
		db.MustCreate(sub)
	}
	return db
}

// MustCreate stores sub or fails the test, returning the stored copy.
func (db *TestDB) MustCreate(sub model.Subscription) model.Subscription {
	db.t.Helper()

	if err := db.Storage.CreateSubscription(context.Background(), &sub); err != nil {
		db.t.Fatalf("failed to seed subscription %q: %v", sub.Name, err)
	}
	db.Subscriptions = append(db.Subscriptions, sub)
	return sub
}

// MustGet reloads a subscription or fails the test.
func (db *TestDB) MustGet(id string) *model.Subscription {
	db.t.Helper()

	sub, err := db.Storage.GetSubscription(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to load subscription %s: %v", id, err)
	}
	return sub
}

// MustList lists every stored subscription or fails the test.
func (db *TestDB) MustList() []model.Subscription {
	db.t.Helper()

	subs, err := db.Storage.ListSubscriptions(context.Background(), service.SubscriptionFilter{})
	if err != nil {
		db.t.Fatalf("failed to list subscriptions: %v", err)
	}
	return subs
}

// FreezeClock pins the audit timestamps written by the database to now.
func (db *TestDB) FreezeClock(now time.Time) {
	db.Storage.SetClock(func() time.Time { return now })
}
