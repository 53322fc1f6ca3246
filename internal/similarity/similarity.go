// Package similarity scores pairs of subscriptions and groups likely duplicates.
package similarity

import (
	"math"

	"github.com/Veraticus/subtrack/internal/model"
)

// Weights added to the score for each matching signal.
const (
	NameWeight      = 0.4
	AmountWeight    = 0.3
	CategoryWeight  = 0.2
	FrequencyWeight = 0.1
	WebsiteWeight   = 0.3
)

const (
	// NameThreshold is the name similarity a pair must exceed to count as similar names.
	NameThreshold = 0.8
	// AmountTolerance is the largest amount difference still treated as equal.
	AmountTolerance = 0.01
	// DuplicateThreshold is the score a pair must exceed to be grouped.
	DuplicateThreshold = 0.7
)

// Match reasons.
const (
	ReasonSimilarNames  = "Similar names"
	ReasonSameAmount    = "Same amount"
	ReasonSameCategory  = "Same category"
	ReasonSameFrequency = "Same billing frequency"
	ReasonSameWebsite   = "Same website"
)

// Result is the outcome of comparing two subscriptions.
type Result struct {
	Reasons []string
	Score   float64 // Unclamped sum of weights; may exceed 1
}

// ComputeSimilarity scores how likely a and b describe the same service.
// The weights are summed in a fixed order so the threshold comparison is
// reproducible across runs.
func ComputeSimilarity(a, b model.Subscription) Result {
	var r Result

	if NameSimilarity(a.Name, b.Name) > NameThreshold {
		r.Score += NameWeight
		r.Reasons = append(r.Reasons, ReasonSimilarNames)
	}

	if math.Abs(a.Amount-b.Amount) < AmountTolerance {
		r.Score += AmountWeight
		r.Reasons = append(r.Reasons, ReasonSameAmount)
	}

	if a.Category == b.Category {
		r.Score += CategoryWeight
		r.Reasons = append(r.Reasons, ReasonSameCategory)
	}

	if a.BillingFrequency == b.BillingFrequency {
		r.Score += FrequencyWeight
		r.Reasons = append(r.Reasons, ReasonSameFrequency)
	}

	if a.HasWebsite() && b.HasWebsite() && ExtractDomain(a.Website) == ExtractDomain(b.Website) {
		r.Score += WebsiteWeight
		r.Reasons = append(r.Reasons, ReasonSameWebsite)
	}

	return r
}

// IsDuplicate reports whether a and b score above DuplicateThreshold.
func IsDuplicate(a, b model.Subscription) bool {
	return ComputeSimilarity(a, b).Score > DuplicateThreshold
}
