package coach

import (
	"fmt"
	"strings"
	"time"
)

const debriefSystemPrompt = `You are a concise hematology tutor. A student has just rebuilt the blood coagulation cascade in a placement game and wants a short debrief of the run.`

func buildDebriefUserMessage(in Input) string {
	var b strings.Builder
	m := in.Metrics

	b.WriteString("Run:\n")
	if in.Result != nil {
		fmt.Fprintf(&b, "- Final score: %d (time bonus %d, emergency bonus %d)\n",
			in.Result.Score, in.Result.TimeBonus, in.Result.EmergencyBonus)
		fmt.Fprintf(&b, "- Elapsed: %ds\n", in.Result.Elapsed)
		if in.Result.Emergency {
			b.WriteString("- Finished under emergency conditions\n")
		}
	} else {
		b.WriteString("- Level not completed\n")
	}
	if in.EmergencyOutcome != "" {
		fmt.Fprintf(&b, "- Emergency ended early: %s\n", in.EmergencyOutcome)
	}
	fmt.Fprintf(&b, "- Difficulty level: %d\n", in.Difficulty)

	b.WriteString("\nMetrics:\n")
	fmt.Fprintf(&b, "- Placement attempts: %d, correct: %d (%.0f%%)\n", m.Attempts, m.Correct, m.OverallAccuracy*100)
	fmt.Fprintf(&b, "- Average response time: %s\n", m.AverageResponseTime.Round(100*time.Millisecond))
	fmt.Fprintf(&b, "- Hint usage rate: %.2f\n", m.HintUsageRate)
	fmt.Fprintf(&b, "- Engagement score: %.2f\n", m.EngagementScore)

	if len(in.Concepts) > 0 {
		b.WriteString("\nPer concept:\n")
		for _, c := range in.Concepts {
			fmt.Fprintf(&b, "- %s: %d/%d correct\n", c.Concept, c.Correct, c.Attempts)
		}
	}
	writeList(&b, "Struggling concepts", m.StrugglingConcepts)
	writeList(&b, "Mastered concepts", m.MasteredConcepts)
	writeList(&b, "Rule-based recommendations already shown", in.Recommendations)

	b.WriteString(`
Instructions:
1. Write a one line headline and a 2-4 sentence summary grounded only in the numbers above.
2. Name the concrete strengths you can see. Leave the list empty if there are none.
3. Name 1-3 parts of the cascade to revisit, using the struggling concepts first.
4. Suggest one next step. Do not repeat the recommendations already shown.
5. Plain ASCII text only. Do not invent statistics.`)

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}
