package store

import (
	"context"
	"database/sql"
	"fmt"
)

var sessionColumns = []string{
	"session_id", "user_id", "action", "score", "elapsed_secs",
	"emergency", "emergency_outcome", "difficulty", "placed", "total", "at_ms",
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.insert(ctx, tableSessions, sessionColumns, []any{
		data.SessionID,
		data.UserID,
		data.Action,
		data.Score,
		data.ElapsedSecs,
		data.Emergency,
		data.EmergencyOutcome,
		data.Difficulty,
		data.Placed,
		data.Total,
		toMillis(data.At),
	})
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEvent, error) {
	sel := r.selectEvents(tableSessions, append([]string{"sequence"}, sessionColumns...), opts, true)

	var out []SessionEvent
	err := scanAll(ctx, r.db, sel, func(rows *sql.Rows) error {
		var (
			ev   SessionEvent
			atMs int64
		)
		if err := rows.Scan(
			&ev.Sequence, &ev.SessionID, &ev.UserID, &ev.Action, &ev.Score, &ev.ElapsedSecs,
			&ev.Emergency, &ev.EmergencyOutcome, &ev.Difficulty, &ev.Placed, &ev.Total, &atMs,
		); err != nil {
			return err
		}
		ev.At = fromMillis(atMs)
		out = append(out, ev)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	return out, nil
}
