package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/abhisek/cascade/internal/analytics"
)

var actionColumns = []string{"session_id", "user_id", "kind", "factor_id", "latency_ms", "correct", "at_ms"}

func (r *eventRepo) AppendAction(ctx context.Context, rec analytics.ActionRecord) error {
	err := r.insert(ctx, tableActions, actionColumns, []any{
		rec.SessionID,
		rec.UserID,
		string(rec.Kind),
		rec.FactorID,
		rec.Latency.Milliseconds(),
		rec.Correct,
		toMillis(rec.At),
	})
	if err != nil {
		return fmt.Errorf("save action event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryActions(ctx context.Context, opts QueryOpts) ([]ActionEvent, error) {
	sel := r.selectEvents(tableActions, append([]string{"sequence"}, actionColumns...), opts, true)

	var out []ActionEvent
	err := scanAll(ctx, r.db, sel, func(rows *sql.Rows) error {
		var (
			ev        ActionEvent
			kind      string
			latencyMs int64
			atMs      int64
		)
		if err := rows.Scan(&ev.Sequence, &ev.SessionID, &ev.UserID, &kind, &ev.FactorID, &latencyMs, &ev.Correct, &atMs); err != nil {
			return err
		}
		ev.Kind = analytics.ActionKind(kind)
		ev.Latency = time.Duration(latencyMs) * time.Millisecond
		ev.At = fromMillis(atMs)
		out = append(out, ev)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query action events: %w", err)
	}
	return out, nil
}

// Records strips sequence numbers, returning analytics input in stored order.
func Records(events []ActionEvent) []analytics.ActionRecord {
	out := make([]analytics.ActionRecord, len(events))
	for i, ev := range events {
		out[i] = ev.ActionRecord
	}
	return out
}
