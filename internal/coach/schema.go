package coach

import "github.com/abhisek/cascade/internal/llm"

// DebriefSchema defines the JSON schema for a level debrief.
var DebriefSchema = &llm.Schema{
	Name:        "level-debrief",
	Description: "Short coaching debrief of a coagulation cascade level",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"headline": map[string]any{
				"type":        "string",
				"description": "One line verdict on the run (4-10 words)",
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "2-4 sentences on how the learner performed",
			},
			"strengths": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "0-3 things the learner did well (5-10 words each)",
			},
			"focus_areas": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-3 parts of the cascade to revisit (5-10 words each)",
			},
			"next_step": map[string]any{
				"type":        "string",
				"description": "One concrete thing to try on the next run",
			},
		},
		"required":             []any{"headline", "summary", "strengths", "focus_areas", "next_step"},
		"additionalProperties": false,
	},
}
