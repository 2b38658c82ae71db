package llm

import (
	"regexp"
	"strings"
)

// ModelCost is USD pricing per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of a request.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1e6
}

// datedSuffix matches the snapshot suffixes providers append to the model
// they report, e.g. "-20251001" or "-2024-08-06".
var datedSuffix = regexp.MustCompile(`-(\d{8}|\d{4}-\d{2}-\d{2})$`)

// LookupCost returns pricing for a model ID, or nil if unknown. Dated
// snapshots and OpenRouter vendor prefixes resolve to the base model.
func LookupCost(modelID string) *ModelCost {
	id := modelID
	if _, name, ok := strings.Cut(id, "/"); ok {
		id = name
	}
	if c, ok := modelCosts[id]; ok {
		return &c
	}
	if c, ok := modelCosts[datedSuffix.ReplaceAllString(id, "")]; ok {
		return &c
	}
	return nil
}

// modelCosts covers the models reachable through the configured aliases
// and their common neighbours. Prices as of 2026-02.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4-5": {3, 15},
	"claude-sonnet-4-0": {3, 15},
	"claude-opus-4-5":   {5, 25},
	"claude-3-5-haiku":  {0.8, 4},

	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},

	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}
