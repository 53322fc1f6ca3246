package testutil

import (
	"time"

	"github.com/Veraticus/subtrack/internal/model"
)

// Today is the reference date used by fixtures.
var Today = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

// Date returns midnight UTC of the given day in Today's year.
func Date(month time.Month, day int) time.Time {
	return time.Date(Today.Year(), month, day, 0, 0, 0, 0, time.UTC)
}

// SubscriptionBuilder builds subscription fixtures with a fluent API.
type SubscriptionBuilder struct {
	sub model.Subscription
}

// NewSubscription starts an active monthly 9.99 USD entertainment
// subscription due a week after Today.
func NewSubscription(name string) *SubscriptionBuilder {
	return &SubscriptionBuilder{sub: model.Subscription{
		Name:             name,
		Amount:           9.99,
		Currency:         "USD",
		Category:         model.CategoryEntertainment,
		BillingFrequency: model.FrequencyMonthly,
		Status:           model.StatusActive,
		NextBillingDate:  Today.AddDate(0, 0, 7),
	}}
}

// ID sets a fixed id.
func (b *SubscriptionBuilder) ID(id string) *SubscriptionBuilder {
	b.sub.ID = id
	return b
}

// Amount sets the charge amount.
func (b *SubscriptionBuilder) Amount(amount float64) *SubscriptionBuilder {
	b.sub.Amount = amount
	return b
}

// Currency sets the currency code.
func (b *SubscriptionBuilder) Currency(code string) *SubscriptionBuilder {
	b.sub.Currency = code
	return b
}

// Category sets the category.
func (b *SubscriptionBuilder) Category(c model.Category) *SubscriptionBuilder {
	b.sub.Category = c
	return b
}

// Frequency sets the billing frequency.
func (b *SubscriptionBuilder) Frequency(f model.BillingFrequency) *SubscriptionBuilder {
	b.sub.BillingFrequency = f
	return b
}

// Status sets the status.
func (b *SubscriptionBuilder) Status(s model.Status) *SubscriptionBuilder {
	b.sub.Status = s
	return b
}

// Website sets the website.
func (b *SubscriptionBuilder) Website(url string) *SubscriptionBuilder {
	b.sub.Website = url
	return b
}

// Next sets the next billing date.
func (b *SubscriptionBuilder) Next(date time.Time) *SubscriptionBuilder {
	b.sub.NextBillingDate = date
	return b
}

// DueIn sets the next billing date relative to Today.
func (b *SubscriptionBuilder) DueIn(days int) *SubscriptionBuilder {
	b.sub.NextBillingDate = Today.AddDate(0, 0, days)
	return b
}

// Last sets the last billing date.
func (b *SubscriptionBuilder) Last(date time.Time) *SubscriptionBuilder {
	b.sub.LastBillingDate = &date
	return b
}

// Build returns the subscription.
func (b *SubscriptionBuilder) Build() model.Subscription {
	return b.sub
}

// StreamingDuplicates returns three subscriptions where the first two are
// obvious duplicates of each other and the third is unrelated.
func StreamingDuplicates() []model.Subscription {
	return []model.Subscription{
		NewSubscription("Netflix").Amount(15.49).Website("https://www.netflix.com").Build(),
		NewSubscription("netflix").Amount(15.49).Website("netflix.com/account").Build(),
		NewSubscription("Gym Membership").Amount(40).Category(model.CategoryFitness).Build(),
	}
}
