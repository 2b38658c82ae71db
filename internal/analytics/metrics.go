package analytics

import (
	"sort"
	"time"
)

const (
	// StruggleFailures is the failure count at which a concept counts as struggling.
	StruggleFailures = 2

	// MasteryMinAttempts is the attempt count needed before a concept can be mastered.
	MasteryMinAttempts = 3

	// MasteryAccuracy is the success rate (inclusive) a concept needs to be mastered.
	MasteryAccuracy = 0.9

	// QuickResponse is the latency (exclusive) under which a response counts as quick.
	QuickResponse = 3 * time.Second
)

// ConceptMap maps factor IDs to analytics concepts.
type ConceptMap map[string]string

// ConceptOf returns the concept of a factor. Factors without a mapping
// form their own concept so their stats are not dropped.
func (m ConceptMap) ConceptOf(factorID string) string {
	if c, ok := m[factorID]; ok && c != "" {
		return c
	}
	return factorID
}

// Metrics aggregates a learner's performance over an action log.
type Metrics struct {
	Attempts            int           `json:"attempts"`
	Correct             int           `json:"correct"`
	OverallAccuracy     float64       `json:"overall_accuracy"`
	AverageResponseTime time.Duration `json:"average_response_time"`
	HintUsageRate       float64       `json:"hint_usage_rate"`
	CompletionTime      time.Duration `json:"completion_time"`
	StrugglingConcepts  []string      `json:"struggling_concepts"`
	MasteredConcepts    []string      `json:"mastered_concepts"`
	EngagementScore     float64       `json:"engagement_score"`
}

// ConceptStats holds per-concept attempt counters.
type ConceptStats struct {
	Concept  string
	Attempts int
	Correct  int
}

// Failures returns the number of failed attempts.
func (s ConceptStats) Failures() int { return s.Attempts - s.Correct }

// Accuracy returns the success rate, 0 when there are no attempts.
func (s ConceptStats) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempts)
}

// Analyze computes performance metrics over an action log. Only place
// attempts count toward accuracy, latency and concept stats.
func Analyze(actions []ActionRecord, concepts ConceptMap) Metrics {
	var (
		m          Metrics
		hints      int
		infoViews  int
		quick      int
		latencySum time.Duration
		first      time.Time
		last       time.Time
	)

	for _, a := range actions {
		if !a.At.IsZero() {
			if first.IsZero() || a.At.Before(first) {
				first = a.At
			}
			if a.At.After(last) {
				last = a.At
			}
		}

		switch a.Kind {
		case KindHintRequest:
			hints++
		case KindInfoView:
			infoViews++
		case KindPlaceAttempt:
			m.Attempts++
			latencySum += a.Latency
			if a.Latency < QuickResponse {
				quick++
			}
			if a.Correct {
				m.Correct++
			}
		}
	}

	if !first.IsZero() {
		m.CompletionTime = last.Sub(first)
	}

	if m.Attempts > 0 {
		n := float64(m.Attempts)
		m.OverallAccuracy = float64(m.Correct) / n
		m.AverageResponseTime = latencySum / time.Duration(m.Attempts)
		m.HintUsageRate = float64(hints) / n
		infoRate := min(1.0, float64(infoViews)/n)
		quickRate := float64(quick) / n
		m.EngagementScore = (infoRate + quickRate) / 2
	}

	for _, st := range StatsByConcept(actions, concepts) {
		if st.Failures() >= StruggleFailures {
			m.StrugglingConcepts = append(m.StrugglingConcepts, st.Concept)
		}
		if st.Attempts >= MasteryMinAttempts && st.Accuracy() >= MasteryAccuracy {
			m.MasteredConcepts = append(m.MasteredConcepts, st.Concept)
		}
	}
	return m
}

// StatsByConcept returns per-concept counters sorted by concept name.
func StatsByConcept(actions []ActionRecord, concepts ConceptMap) []ConceptStats {
	stats := make(map[string]*ConceptStats)
	for _, a := range actions {
		if a.Kind != KindPlaceAttempt {
			continue
		}
		concept := concepts.ConceptOf(a.FactorID)
		st := stats[concept]
		if st == nil {
			st = &ConceptStats{Concept: concept}
			stats[concept] = st
		}
		st.Attempts++
		if a.Correct {
			st.Correct++
		}
	}

	out := make([]ConceptStats, 0, len(stats))
	for _, st := range stats {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Concept < out[j].Concept })
	return out
}
