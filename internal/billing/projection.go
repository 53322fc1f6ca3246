package billing

import (
	"sort"
	"time"

	"github.com/Veraticus/subtrack/internal/model"
)

// UpcomingWithinDays returns the subscriptions whose next billing date is
// between today and n days from today, inclusive. Records without a usable
// date are never upcoming.
func UpcomingWithinDays(subs []model.Subscription, today time.Time, n int) []model.Subscription {
	var upcoming []model.Subscription
	for _, s := range subs {
		if !ValidDate(s.NextBillingDate) {
			continue
		}
		if d := DaysBetween(s.NextBillingDate, today); d >= 0 && d <= n {
			upcoming = append(upcoming, s)
		}
	}
	return upcoming
}

// NextChargeOnOrAfter rolls the subscription's next billing date forward by
// whole billing periods until it is no earlier than today.
func NextChargeOnOrAfter(sub model.Subscription, today time.Time) (time.Time, bool) {
	if !ValidDate(sub.NextBillingDate) {
		return time.Time{}, false
	}

	for n := 0; ; n++ {
		d := occurrence(sub.NextBillingDate, sub.BillingFrequency, n)
		if DaysBetween(d, today) >= 0 {
			return d, true
		}
	}
}

// ProjectedCharge is one future charge of a subscription.
type ProjectedCharge struct {
	Date         time.Time
	Subscription model.Subscription
}

// ChargesBetween projects every charge of the active subscriptions that
// falls between from and to, inclusive, ordered by date then name.
func ChargesBetween(subs []model.Subscription, from, to time.Time) []ProjectedCharge {
	var charges []ProjectedCharge
	if DaysBetween(to, from) < 0 {
		return charges
	}

	for _, s := range subs {
		if !s.IsActive() || !ValidDate(s.NextBillingDate) {
			continue
		}
		for n := 0; ; n++ {
			d := occurrence(s.NextBillingDate, s.BillingFrequency, n)
			if DaysBetween(d, to) > 0 {
				break
			}
			if DaysBetween(d, from) >= 0 {
				charges = append(charges, ProjectedCharge{Date: d, Subscription: s})
			}
		}
	}

	sort.SliceStable(charges, func(i, j int) bool {
		if !SameDay(charges[i].Date, charges[j].Date) {
			return charges[i].Date.Before(charges[j].Date)
		}
		return charges[i].Subscription.Name < charges[j].Subscription.Name
	})

	return charges
}

// ProjectedTotal sums the amounts of the given charges.
func ProjectedTotal(charges []ProjectedCharge) float64 {
	var total float64
	for _, c := range charges {
		total += c.Subscription.Amount
	}
	return total
}
