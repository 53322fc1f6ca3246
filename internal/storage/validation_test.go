package storage

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContext(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, validateContext(context.Background()))
	assert.NoError(t, validateContext(canceled), "a canceled context is still a context")
	//nolint:staticcheck // exercising the nil guard
	assert.ErrorIs(t, validateContext(nil), ErrNilContext)
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "test"},
		{name: "string with spaces", str: "  test  "},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "param")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrEmptyString)
			assert.True(t, strings.Contains(err.Error(), "param"))
		})
	}
}

func TestValidateCurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "USD", want: "USD"},
		{in: "eur", want: "EUR"},
		{in: " JPY ", want: "JPY"},
		{in: "", wantErr: true},
		{in: "US", wantErr: true},
		{in: "ZZZ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ValidateCurrency(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateSubscription(t *testing.T) {
	valid := func() *model.Subscription {
		return &model.Subscription{
			Name:             "Netflix",
			Amount:           0,
			Currency:         "USD",
			Category:         model.CategoryEntertainment,
			BillingFrequency: model.FrequencyMonthly,
			Status:           model.StatusCancelled,
			NextBillingDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	assert.NoError(t, validateSubscription(valid()), "free subscriptions are allowed")
	assert.ErrorIs(t, validateSubscription(nil), ErrNilParameter)

	nan := valid()
	nan.Amount = math.NaN()
	assert.ErrorIs(t, validateSubscription(nan), ErrInvalidSubscription)

	inf := valid()
	inf.Amount = math.Inf(1)
	assert.ErrorIs(t, validateSubscription(inf), ErrInvalidSubscription)
}
