// Package recurring discovers subscriptions hiding in statement charges.
package recurring

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/Veraticus/subtrack/internal/billing"
	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/similarity"
)

// Defaults for Options.
const (
	DefaultMinOccurrences  = 3
	DefaultAmountTolerance = 0.10
)

// Options tunes detection.
type Options struct {
	MinOccurrences  int     // Charges needed before a payee counts as recurring
	AmountTolerance float64 // Largest relative deviation from the median amount
}

// DefaultOptions returns the standard detection options.
func DefaultOptions() Options {
	return Options{
		MinOccurrences:  DefaultMinOccurrences,
		AmountTolerance: DefaultAmountTolerance,
	}
}

// Candidate is a payee that charges on a regular schedule.
type Candidate struct {
	LastCharge      time.Time
	NextBillingDate time.Time
	TrackedAs       *model.Subscription // Existing subscription it matches, if any
	Payee           string
	Currency        string
	Frequency       model.BillingFrequency
	Charges         []model.Charge // Oldest first
	Amount          float64        // Median charge
}

// Tracked reports whether the candidate matches an existing subscription.
func (c Candidate) Tracked() bool {
	return c.TrackedAs != nil
}

// Subscription converts the candidate into an active subscription in the
// given category.
func (c Candidate) Subscription(category model.Category) model.Subscription {
	last := c.LastCharge
	return model.Subscription{
		Name:             c.Payee,
		Amount:           c.Amount,
		Currency:         c.Currency,
		Category:         category,
		BillingFrequency: c.Frequency,
		Status:           model.StatusActive,
		NextBillingDate:  c.NextBillingDate,
		LastBillingDate:  &last,
	}
}

// cadences maps inclusive median-interval ranges, in days, to frequencies.
var cadences = []struct {
	freq     model.BillingFrequency
	min, max int
}{
	{model.FrequencyWeekly, 6, 8},
	{model.FrequencyMonthly, 26, 35},
	{model.FrequencyQuarterly, 85, 98},
	{model.FrequencyYearly, 350, 380},
}

// ClassifyInterval maps a typical gap between charges to a billing frequency.
func ClassifyInterval(days int) (model.BillingFrequency, bool) {
	for _, c := range cadences {
		if days >= c.min && days <= c.max {
			return c.freq, true
		}
	}
	return "", false
}

// NormalizePayee reduces a statement payee to a comparable key: lowercase
// words with punctuation and trailing corporate suffixes removed.
func NormalizePayee(payee string) string {
	fields := strings.FieldsFunc(strings.ToLower(payee), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for len(fields) > 1 {
		switch fields[len(fields)-1] {
		case "com", "net", "inc", "llc", "ltd", "co":
			fields = fields[:len(fields)-1]
			continue
		}
		break
	}

	return strings.Join(fields, " ")
}

// Detect groups charges by payee and currency and returns every group that
// recurs on a recognizable cadence with a stable amount. Candidates are
// ordered by payee. Each candidate is matched against existing so callers can
// skip services that are already tracked.
func Detect(charges []model.Charge, existing []model.Subscription, opts Options) []Candidate {
	if opts.MinOccurrences < 2 {
		opts.MinOccurrences = 2
	}

	groups := make(map[string][]model.Charge)
	for _, c := range charges {
		key := NormalizePayee(c.Payee)
		if key == "" || !billing.ValidDate(c.Date) {
			continue
		}
		groups[key+"|"+c.Currency] = append(groups[key+"|"+c.Currency], c)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var candidates []Candidate
	for _, key := range keys {
		candidate, ok := detectGroup(groups[key], opts)
		if !ok {
			continue
		}
		candidate.TrackedAs = findTracked(candidate, existing)
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return strings.ToLower(candidates[i].Payee) < strings.ToLower(candidates[j].Payee)
	})

	return candidates
}

func detectGroup(group []model.Charge, opts Options) (Candidate, bool) {
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].Date.Before(group[j].Date)
	})

	// Collapse repeated postings of the same charge on the same day.
	charges := group[:0:0]
	for _, c := range group {
		if n := len(charges); n > 0 && billing.SameDay(charges[n-1].Date, c.Date) {
			continue
		}
		charges = append(charges, c)
	}

	if len(charges) < opts.MinOccurrences {
		return Candidate{}, false
	}

	intervals := make([]float64, 0, len(charges)-1)
	for i := 1; i < len(charges); i++ {
		intervals = append(intervals, float64(billing.DaysBetween(charges[i].Date, charges[i-1].Date)))
	}
	freq, ok := ClassifyInterval(int(math.Round(median(intervals))))
	if !ok {
		return Candidate{}, false
	}

	amounts := make([]float64, len(charges))
	for i, c := range charges {
		amounts[i] = c.Amount
	}
	amount := median(amounts)
	if amount <= 0 {
		return Candidate{}, false
	}
	for _, a := range amounts {
		if math.Abs(a-amount)/amount > opts.AmountTolerance {
			return Candidate{}, false
		}
	}

	last := charges[len(charges)-1]
	return Candidate{
		Payee:           last.Payee,
		Currency:        last.Currency,
		Frequency:       freq,
		Amount:          math.Round(amount*100) / 100,
		Charges:         charges,
		LastCharge:      last.Date,
		NextBillingDate: billing.AdvanceDate(last.Date, freq),
	}, true
}

func findTracked(c Candidate, existing []model.Subscription) *model.Subscription {
	for i := range existing {
		// Statements carry no category, so borrow the existing one.
		probe := c.Subscription(existing[i].Category)
		if similarity.IsDuplicate(probe, existing[i]) {
			return &existing[i]
		}
	}
	return nil
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
