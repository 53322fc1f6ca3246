// Package notify turns subscriptions into time-windowed, in-app notifications.
package notify

import (
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/subtrack/internal/billing"
	"github.com/Veraticus/subtrack/internal/model"
)

const (
	// RenewedWindowDays is how far back a charge still counts as a recent renewal.
	RenewedWindowDays = 7
	// PriceChangeWindowDays is how long a recorded price change stays notable.
	PriceChangeWindowDays = 30
)

// PriceHistory supplies the most recent recorded price change of a subscription.
type PriceHistory interface {
	LatestChange(subscriptionID string) (model.PriceChange, bool)
}

// PriceIndex is a PriceHistory backed by a map of latest changes.
type PriceIndex map[string]model.PriceChange

// LatestChange implements PriceHistory.
func (p PriceIndex) LatestChange(subscriptionID string) (model.PriceChange, bool) {
	change, ok := p[subscriptionID]
	return change, ok
}

// Classify derives the notifications for a single subscription. A
// subscription yields at most one billing-date notification plus optional
// renewal and price-change notifications. prices may be nil.
func Classify(sub model.Subscription, today time.Time, settings model.NotificationSettings, prices PriceHistory) []model.Notification {
	var items []model.Notification

	if item, ok := classifyBillingDate(sub, today, settings); ok {
		items = append(items, item)
	}

	if settings.ShowRenewed && sub.LastBillingDate != nil && billing.ValidDate(*sub.LastBillingDate) {
		if ago := billing.DaysBetween(today, *sub.LastBillingDate); ago >= 0 && ago <= RenewedWindowDays {
			items = append(items, model.Notification{
				ID:           "renewed-" + sub.ID,
				Type:         model.NotificationRenewed,
				Title:        "Recently Renewed",
				Message:      fmt.Sprintf("%s was renewed on %s", sub.Name, sub.LastBillingDate.Format("Jan 02")),
				Date:         *sub.LastBillingDate,
				Priority:     model.PriorityLow,
				Subscription: sub,
				DaysUntil:    -ago,
			})
		}
	}

	if settings.ShowPriceChanges && prices != nil {
		if change, ok := prices.LatestChange(sub.ID); ok && billing.ValidDate(change.ChangedAt) {
			if ago := billing.DaysBetween(today, change.ChangedAt); ago >= 0 && ago <= PriceChangeWindowDays && change.Delta() != 0 {
				items = append(items, priceChangeItem(sub, change, ago))
			}
		}
	}

	return items
}

func classifyBillingDate(sub model.Subscription, today time.Time, settings model.NotificationSettings) (model.Notification, bool) {
	if !billing.ValidDate(sub.NextBillingDate) {
		return model.Notification{}, false
	}

	days := billing.DaysBetween(sub.NextBillingDate, today)
	item := model.Notification{
		Date:         today,
		Subscription: sub,
		DaysUntil:    days,
	}

	switch {
	case days < 0:
		item.ID = "overdue-" + sub.ID
		item.Type = model.NotificationOverdue
		item.Title = "Payment Overdue"
		item.Message = fmt.Sprintf("%s payment was due %d %s ago", sub.Name, -days, plural(-days, "day"))
		item.Priority = model.PriorityCritical
		item.Actionable = true
	case days == 0:
		item.ID = "today-" + sub.ID
		item.Type = model.NotificationToday
		item.Title = "Charging Today"
		item.Message = fmt.Sprintf("%s will be charged %s today", sub.Name, formatAmount(sub))
		item.Priority = model.PriorityHigh
		item.Actionable = true
	case days == 1:
		item.ID = "tomorrow-" + sub.ID
		item.Type = model.NotificationUpcoming
		item.Title = "Charging Tomorrow"
		item.Message = fmt.Sprintf("%s will be charged %s tomorrow", sub.Name, formatAmount(sub))
		item.Priority = model.PriorityHigh
		item.Actionable = true
	case days <= settings.DaysAhead:
		item.ID = fmt.Sprintf("upcoming-%d-%s", days, sub.ID)
		item.Type = model.NotificationUpcoming
		item.Title = "Upcoming Charge"
		item.Message = fmt.Sprintf("%s will be charged %s in %d days", sub.Name, formatAmount(sub), days)
		item.Priority = model.PriorityMedium
		if days <= 2 {
			item.Priority = model.PriorityHigh
		}
	default:
		return model.Notification{}, false
	}

	return item, true
}

func priceChangeItem(sub model.Subscription, change model.PriceChange, ago int) model.Notification {
	direction := "increased"
	delta := change.Delta()
	if delta < 0 {
		direction = "decreased"
		delta = -delta
	}

	return model.Notification{
		ID:           fmt.Sprintf("price-change-%s-%s", sub.ID, change.ChangedAt.Format("20060102")),
		Type:         model.NotificationPriceChange,
		Title:        "Price Change Alert",
		Message:      fmt.Sprintf("%s price %s by %.2f %s", sub.Name, direction, delta, sub.Currency),
		Date:         change.ChangedAt,
		Priority:     model.PriorityMedium,
		Subscription: sub,
		DaysUntil:    -ago,
		Actionable:   true,
	}
}

// Build classifies every subscription, drops dismissed notification ids and
// orders the result by priority, most urgent first, then by date, newest
// first. Equal items keep their input order.
func Build(subs []model.Subscription, today time.Time, settings model.NotificationSettings, prices PriceHistory, dismissed model.KeySet) []model.Notification {
	var items []model.Notification
	for _, s := range subs {
		for _, item := range Classify(s, today, settings, prices) {
			if dismissed.Has(item.ID) {
				continue
			}
			items = append(items, item)
		}
	}

	Sort(items)
	return items
}

// Sort orders notifications by priority descending, then date descending.
func Sort(items []model.Notification) {
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].Priority.Rank(), items[j].Priority.Rank()
		if pi != pj {
			return pi > pj
		}
		return items[i].Date.After(items[j].Date)
	})
}

// CountActionable returns how many notifications ask the user to act.
func CountActionable(items []model.Notification) int {
	n := 0
	for _, item := range items {
		if item.Actionable {
			n++
		}
	}
	return n
}

func formatAmount(sub model.Subscription) string {
	return fmt.Sprintf("%.2f %s", sub.Amount, sub.Currency)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
