// Package storage provides the data persistence layer for subtrack.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/subtrack/internal/common"
	"github.com/Veraticus/subtrack/internal/model"
	"golang.org/x/text/currency"
)

// Validation errors. Each wraps common.ErrInvalidInput.
var (
	ErrNilContext          = errors.New("context cannot be nil")
	ErrEmptyString         = fmt.Errorf("%w: string parameter cannot be empty", common.ErrInvalidInput)
	ErrNilParameter        = fmt.Errorf("%w: parameter cannot be nil", common.ErrInvalidInput)
	ErrEmptySlice          = fmt.Errorf("%w: slice cannot be empty", common.ErrInvalidInput)
	ErrInvalidSubscription = fmt.Errorf("%w: invalid subscription", common.ErrInvalidInput)
	ErrInvalidBudget       = fmt.Errorf("%w: invalid budget", common.ErrInvalidInput)
	ErrInvalidSettings     = fmt.Errorf("%w: invalid notification settings", common.ErrInvalidInput)
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateIDs(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: ids", ErrEmptySlice)
	}
	for i, id := range ids {
		if err := validateString(id, fmt.Sprintf("ids[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return fmt.Errorf("amount must be a non-negative number, got %v", amount)
	}
	return nil
}

// ValidateCurrency checks that code is a known ISO 4217 currency and returns
// its canonical form.
func ValidateCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("%w: currency %q", common.ErrInvalidInput, code)
	}
	return unit.String(), nil
}

// validateSubscription checks the fields a stored subscription must have and
// canonicalizes its currency code.
func validateSubscription(sub *model.Subscription) error {
	if sub == nil {
		return fmt.Errorf("%w: subscription", ErrNilParameter)
	}
	if strings.TrimSpace(sub.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidSubscription)
	}
	if err := validateAmount(sub.Amount); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSubscription, err)
	}
	if !sub.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidSubscription, sub.Category)
	}
	if !sub.BillingFrequency.IsValid() {
		return fmt.Errorf("%w: unknown billing frequency %q", ErrInvalidSubscription, sub.BillingFrequency)
	}
	if !sub.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidSubscription, sub.Status)
	}
	if sub.NextBillingDate.IsZero() {
		return fmt.Errorf("%w: missing next billing date", ErrInvalidSubscription)
	}
	code, err := ValidateCurrency(sub.Currency)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSubscription, err)
	}
	sub.Currency = code
	sub.Name = strings.TrimSpace(sub.Name)
	return nil
}

func validateBudget(b *model.Budget) error {
	if b == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidBudget)
	}
	if err := validateAmount(b.Amount); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBudget, err)
	}
	if b.Period != model.BudgetMonthly && b.Period != model.BudgetYearly {
		return fmt.Errorf("%w: unknown period %q", ErrInvalidBudget, b.Period)
	}
	if b.Category != "" && !b.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidBudget, b.Category)
	}
	return nil
}

func validateSettings(settings model.NotificationSettings) error {
	if settings.DaysAhead < 0 {
		return fmt.Errorf("%w: days ahead must not be negative", ErrInvalidSettings)
	}
	return nil
}
