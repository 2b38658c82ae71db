package analytics

import "time"

const (
	MinDifficulty = 1
	MaxDifficulty = 5

	// Promotion needs accuracy above PromoteAccuracy and latency below PromoteLatency.
	PromoteAccuracy = 0.9
	PromoteLatency  = 5 * time.Second

	// Demotion happens on accuracy below DemoteAccuracy or hint rate above DemoteHintRate.
	DemoteAccuracy = 0.6
	DemoteHintRate = 0.7
)

// AdaptDifficulty returns the next difficulty level. The promotion check runs
// first; the level moves at most one step and stays within
// [MinDifficulty, MaxDifficulty].
func AdaptDifficulty(level int, m Metrics) int {
	level = clampLevel(level)
	switch {
	case m.OverallAccuracy > PromoteAccuracy && m.AverageResponseTime < PromoteLatency:
		return min(level+1, MaxDifficulty)
	case m.OverallAccuracy < DemoteAccuracy || m.HintUsageRate > DemoteHintRate:
		return max(level-1, MinDifficulty)
	}
	return level
}

func clampLevel(level int) int {
	return max(MinDifficulty, min(level, MaxDifficulty))
}
