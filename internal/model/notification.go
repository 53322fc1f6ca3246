package model

import "time"

// NotificationType tags the reason a notification was raised.
type NotificationType string

const (
	NotificationOverdue     NotificationType = "overdue"
	NotificationToday       NotificationType = "today"
	NotificationUpcoming    NotificationType = "upcoming"
	NotificationRenewed     NotificationType = "renewed"
	NotificationPriceChange NotificationType = "price_change"
)

// Priority orders notifications from most to least urgent.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns a sortable weight; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Notification is a derived, in-app alert about a single subscription.
type Notification struct {
	Date         time.Time
	ID           string // Stable per subscription and condition; used for dismissal
	Title        string
	Message      string
	Type         NotificationType
	Priority     Priority
	Subscription Subscription
	DaysUntil    int
	Actionable   bool
}

// DefaultDaysAhead is the default size of the upcoming-charge window.
const DefaultDaysAhead = 3

// NotificationSettings controls which notifications are produced.
type NotificationSettings struct {
	DaysAhead        int
	ShowRenewed      bool
	ShowPriceChanges bool
}

// DefaultNotificationSettings returns the settings used when none are stored.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		DaysAhead:        DefaultDaysAhead,
		ShowRenewed:      true,
		ShowPriceChanges: true,
	}
}

// PriceChange records a change in a subscription's charged amount.
type PriceChange struct {
	ChangedAt      time.Time
	SubscriptionID string
	OldAmount      float64
	NewAmount      float64
}

// Delta returns the signed change in amount.
func (p PriceChange) Delta() float64 {
	return p.NewAmount - p.OldAmount
}
