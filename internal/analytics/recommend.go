package analytics

import (
	"fmt"
	"strings"
	"time"
)

// Recommendation thresholds.
const (
	LowAccuracy      = 0.7
	SlowResponse     = 10 * time.Second
	HeavyHintUsage   = 0.5
	LowEngagement    = 0.5
	maxFocusConcepts = 3
)

// Rule is a deterministic recommendation rule. It returns zero or more
// suggestions for the given metrics.
type Rule interface {
	Name() string
	Suggest(m Metrics) []string
}

// DefaultRules returns the recommendation rules in output order.
// Rules are independent; every rule that applies contributes.
func DefaultRules() []Rule {
	return []Rule{
		accuracyRule{},
		speedRule{},
		hintRule{},
		engagementRule{},
	}
}

// Recommend evaluates the default rules and returns suggestions in order.
func Recommend(m Metrics) []string {
	return RunRules(DefaultRules(), m)
}

// RunRules evaluates rules in order and concatenates their suggestions.
func RunRules(rules []Rule, m Metrics) []string {
	var out []string
	for _, r := range rules {
		out = append(out, r.Suggest(m)...)
	}
	return out
}

type accuracyRule struct{}

func (accuracyRule) Name() string { return "low-accuracy" }

func (accuracyRule) Suggest(m Metrics) []string {
	if m.OverallAccuracy >= LowAccuracy {
		return nil
	}
	out := []string{"Review the pathway overview before your next attempt."}
	if len(m.StrugglingConcepts) > 0 {
		focus := m.StrugglingConcepts
		if len(focus) > maxFocusConcepts {
			focus = focus[:maxFocusConcepts]
		}
		out = append(out, fmt.Sprintf("Focus on: %s.", strings.Join(focus, ", ")))
	}
	return out
}

type speedRule struct{}

func (speedRule) Name() string { return "slow-response" }

func (speedRule) Suggest(m Metrics) []string {
	if m.AverageResponseTime <= SlowResponse {
		return nil
	}
	return []string{"Practice quick recall drills to speed up factor recognition."}
}

type hintRule struct{}

func (hintRule) Name() string { return "hint-reliance" }

func (hintRule) Suggest(m Metrics) []string {
	if m.HintUsageRate <= HeavyHintUsage {
		return nil
	}
	return []string{
		"Try placing each factor before asking for a hint.",
		"Sketch the cascade from memory, then check it against the board.",
	}
}

type engagementRule struct{}

func (engagementRule) Name() string { return "low-engagement" }

func (engagementRule) Suggest(m Metrics) []string {
	if m.EngagementScore >= LowEngagement {
		return nil
	}
	return []string{"Open factor details to connect each step to its clinical role."}
}
