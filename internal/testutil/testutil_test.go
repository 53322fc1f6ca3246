package testutil

import (
	"testing"

	"github.com/Veraticus/subtrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDB(t *testing.T) {
	db := SetupTestDB(t, StreamingDuplicates()...)

	require.Len(t, db.Subscriptions, 3)
	for _, sub := range db.Subscriptions {
		assert.NotEmpty(t, sub.ID)
	}
	assert.Len(t, db.MustList(), 3)

	got := db.MustGet(db.Subscriptions[2].ID)
	assert.Equal(t, "Gym Membership", got.Name)
	assert.Equal(t, model.CategoryFitness, got.Category)
}

func TestSubscriptionBuilder(t *testing.T) {
	sub := NewSubscription("Cloud").
		ID("cloud").
		Amount(99).
		Currency("EUR").
		Frequency(model.FrequencyYearly).
		Status(model.StatusPaused).
		DueIn(3).
		Last(Date(3, 1)).
		Build()

	assert.Equal(t, "cloud", sub.ID)
	assert.Equal(t, 99.0, sub.Amount)
	assert.Equal(t, "EUR", sub.Currency)
	assert.Equal(t, model.FrequencyYearly, sub.BillingFrequency)
	assert.Equal(t, model.StatusPaused, sub.Status)
	assert.Equal(t, Date(6, 13), sub.NextBillingDate)
	require.NotNil(t, sub.LastBillingDate)
	assert.Equal(t, Date(3, 1), *sub.LastBillingDate)
}
