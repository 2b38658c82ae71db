package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var llmColumns = []string{
	"provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "at_ms",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.insert(ctx, tableLLM, llmColumns, []any{
		data.Provider,
		data.Model,
		data.Purpose,
		data.InputTokens,
		data.OutputTokens,
		data.LatencyMs,
		data.Success,
		data.ErrorMessage,
		time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	sel := r.selectEvents(tableLLM, append([]string{"sequence"}, llmColumns...), opts, false)

	var out []LLMRequestEvent
	err := scanAll(ctx, r.db, sel, func(rows *sql.Rows) error {
		var (
			ev   LLMRequestEvent
			atMs int64
		)
		if err := rows.Scan(
			&ev.Sequence, &ev.Provider, &ev.Model, &ev.Purpose, &ev.InputTokens, &ev.OutputTokens,
			&ev.LatencyMs, &ev.Success, &ev.ErrorMessage, &atMs,
		); err != nil {
			return err
		}
		ev.At = fromMillis(atMs)
		out = append(out, ev)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM request events: %w", err)
	}
	return out, nil
}
