// Package model defines the core data types shared across subtrack.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Category groups subscriptions by the kind of service they provide.
type Category string

const (
	CategoryEntertainment Category = "entertainment"
	CategoryProductivity  Category = "productivity"
	CategoryFitness       Category = "fitness"
	CategoryFood          Category = "food"
	CategoryEducation     Category = "education"
	CategoryNews          Category = "news"
	CategoryMusic         Category = "music"
	CategoryGaming        Category = "gaming"
	CategoryShopping      Category = "shopping"
	CategoryOther         Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryEntertainment,
	CategoryProductivity,
	CategoryFitness,
	CategoryFood,
	CategoryEducation,
	CategoryNews,
	CategoryMusic,
	CategoryGaming,
	CategoryShopping,
	CategoryOther,
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts user input into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: category %q", ErrUnknownEnum, s)
	}
	return c, nil
}

// BillingFrequency is the recurrence interval of a charge.
type BillingFrequency string

const (
	FrequencyWeekly    BillingFrequency = "weekly"
	FrequencyMonthly   BillingFrequency = "monthly"
	FrequencyQuarterly BillingFrequency = "quarterly"
	FrequencyYearly    BillingFrequency = "yearly"
)

// Frequencies lists every valid billing frequency, shortest first.
var Frequencies = []BillingFrequency{
	FrequencyWeekly,
	FrequencyMonthly,
	FrequencyQuarterly,
	FrequencyYearly,
}

// IsValid reports whether f is a known billing frequency.
func (f BillingFrequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// ParseFrequency converts user input into a BillingFrequency.
func ParseFrequency(s string) (BillingFrequency, error) {
	f := BillingFrequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: billing frequency %q", ErrUnknownEnum, s)
	}
	return f, nil
}

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts user input into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: status %q", ErrUnknownEnum, s)
	}
	return st, nil
}

// Subscription is a single recurring charge tracked for the user.
type Subscription struct {
	NextBillingDate  time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastBillingDate  *time.Time
	ID               string
	Name             string
	Description      string
	Website          string // Optional; used for domain-based duplicate matching
	Currency         string // ISO 4217 code
	Category         Category
	BillingFrequency BillingFrequency
	Status           Status
	Amount           float64
}

// IsActive reports whether the subscription is currently being charged.
func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// HasWebsite reports whether a website is recorded.
func (s *Subscription) HasWebsite() bool {
	return strings.TrimSpace(s.Website) != ""
}
