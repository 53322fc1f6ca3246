package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Category
		wantErr bool
	}{
		{name: "lower case", input: "music", want: CategoryMusic},
		{name: "mixed case with spaces", input: "  Entertainment ", want: CategoryEntertainment},
		{name: "unknown", input: "travel", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownEnum)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFrequency(t *testing.T) {
	for _, f := range Frequencies {
		got, err := ParseFrequency(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFrequency("daily")
	assert.ErrorIs(t, err, ErrUnknownEnum)
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus("PAUSED")
	require.NoError(t, err)
	assert.Equal(t, StatusPaused, got)

	_, err = ParseStatus("expired")
	assert.ErrorIs(t, err, ErrUnknownEnum)
}

func TestParseBudgetPeriod(t *testing.T) {
	got, err := ParseBudgetPeriod("Yearly")
	require.NoError(t, err)
	assert.Equal(t, BudgetYearly, got)

	_, err = ParseBudgetPeriod("weekly")
	assert.ErrorIs(t, err, ErrUnknownEnum)
}

func TestPriorityRank(t *testing.T) {
	assert.Greater(t, PriorityCritical.Rank(), PriorityHigh.Rank())
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Equal(t, 0, Priority("bogus").Rank())
}

func TestKeySet(t *testing.T) {
	var empty KeySet
	assert.False(t, empty.Has("a"))

	set := NewKeySet("a-b", "c-d")
	assert.True(t, set.Has("a-b"))
	assert.False(t, set.Has("b-a"))

	set.Add("b-a")
	assert.True(t, set.Has("b-a"))
}

func TestSubscription_HasWebsite(t *testing.T) {
	assert.False(t, (&Subscription{}).HasWebsite())
	assert.False(t, (&Subscription{Website: "   "}).HasWebsite())
	assert.True(t, (&Subscription{Website: "netflix.com"}).HasWebsite())
}
