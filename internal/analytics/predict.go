package analytics

import (
	"slices"
	"time"
)

// Mastery scores assigned per concept bucket.
const (
	MasteredScore   = 0.9
	StrugglingScore = 0.3
	DefaultScore    = 0.6

	// RetentionFactor converts a mastery score to a retention estimate.
	RetentionFactor = 0.85
)

// ReviewHorizon scales (1 - retention) into a review offset.
var ReviewHorizon = 45 * 24 * time.Hour

// MaxReviewOffset caps the suggested review offset.
var MaxReviewOffset = 30 * 24 * time.Hour

// Outcome is a per-concept mastery and retention projection.
type Outcome struct {
	Concept   string        `json:"concept"`
	Mastery   float64       `json:"mastery"`
	Retention float64       `json:"retention"`
	ReviewIn  time.Duration `json:"review_in"`
}

// ReviewAt returns the suggested review time relative to now.
func (o Outcome) ReviewAt(now time.Time) time.Time {
	return now.Add(o.ReviewIn)
}

// PredictOutcomes projects mastery and retention for each concept in the
// fixed concept list. Mastered takes precedence over struggling.
func PredictOutcomes(m Metrics, concepts []string) []Outcome {
	out := make([]Outcome, 0, len(concepts))
	for _, c := range concepts {
		mastery := DefaultScore
		switch {
		case slices.Contains(m.MasteredConcepts, c):
			mastery = MasteredScore
		case slices.Contains(m.StrugglingConcepts, c):
			mastery = StrugglingScore
		}
		retention := mastery * RetentionFactor
		out = append(out, Outcome{
			Concept:   c,
			Mastery:   mastery,
			Retention: retention,
			ReviewIn:  reviewOffset(retention),
		})
	}
	return out
}

func reviewOffset(retention float64) time.Duration {
	d := time.Duration((1 - retention) * float64(ReviewHorizon))
	return max(0, min(d, MaxReviewOffset))
}
