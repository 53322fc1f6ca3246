// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/subtrack/internal/model"
)

// SubscriptionFilter narrows subscription queries.
type SubscriptionFilter struct {
	Status   model.Status   // Empty matches every status
	Category model.Category // Empty matches every category
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Subscription operations
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	GetSubscription(ctx context.Context, id string) (*model.Subscription, error)
	ListSubscriptions(ctx context.Context, filter SubscriptionFilter) ([]model.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *model.Subscription) error
	DeleteSubscription(ctx context.Context, id string) error
	SetStatus(ctx context.Context, status model.Status, ids ...string) error
	MarkCharged(ctx context.Context, id string) (*model.Subscription, error)
	MergeSubscriptions(ctx context.Context, keepID string, removeIDs ...string) error

	// Budget operations
	CreateBudget(ctx context.Context, budget *model.Budget) error
	ListBudgets(ctx context.Context) ([]model.Budget, error)
	DeleteBudget(ctx context.Context, id string) error

	// Dismissal operations
	DismissDuplicateGroup(ctx context.Context, key string) error
	DismissedDuplicateKeys(ctx context.Context) (model.KeySet, error)
	DismissNotifications(ctx context.Context, ids ...string) error
	DismissedNotificationIDs(ctx context.Context) (model.KeySet, error)

	// Settings operations
	GetNotificationSettings(ctx context.Context) (model.NotificationSettings, bool, error)
	SaveNotificationSettings(ctx context.Context, settings model.NotificationSettings) error

	// Price history operations
	LatestPriceChanges(ctx context.Context) (map[string]model.PriceChange, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Snapshot is everything a report pass needs, loaded once.
type Snapshot struct {
	Today         time.Time
	Settings      model.NotificationSettings
	Dismissed     model.KeySet // Notification ids
	DismissedDups model.KeySet // Duplicate group keys
	PriceChanges  map[string]model.PriceChange
	Subscriptions []model.Subscription
	Budgets       []model.Budget
}

// ReportWriter exports a subscription report.
type ReportWriter interface {
	Write(ctx context.Context, report *Report) error
}

// Report is the data exported by a ReportWriter.
type Report struct {
	GeneratedAt   time.Time
	Subscriptions []model.Subscription
	Categories    []CategoryLine
	Budgets       []model.BudgetStatus
	Upcoming      []model.Subscription
	ActiveMonthly float64
	TotalMonthly  float64 // All statuses
}

// CategoryLine is one row of the category breakdown.
type CategoryLine struct {
	Category model.Category
	Monthly  float64
	Count    int
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
