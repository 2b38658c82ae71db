package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with the ent SQL builder and the global
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	b   *entsql.DialectBuilder
	seq *sequenceCounter
}

// insert assigns the next sequence and inserts one row.
func (r *eventRepo) insert(ctx context.Context, table string, cols []string, vals []any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	query, args := r.b.Insert(table).
		Columns(append([]string{"sequence"}, cols...)...).
		Values(append([]any{seqNum}, vals...)...).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// selectEvents builds a filtered, ordered select over an event table.
// scoped reports whether the table has session_id and user_id columns.
func (r *eventRepo) selectEvents(table string, cols []string, opts QueryOpts, scoped bool) *entsql.Selector {
	sel := r.b.Select(cols...).From(entsql.Table(table))
	applyOpts(sel, opts, scoped)
	return sel
}

func applyOpts(sel *entsql.Selector, opts QueryOpts, scoped bool) {
	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("at_ms", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("at_ms", opts.To.UnixMilli()))
	}
	if scoped && opts.SessionID != "" {
		preds = append(preds, entsql.EQ("session_id", opts.SessionID))
	}
	if scoped && opts.UserID != "" {
		preds = append(preds, entsql.EQ("user_id", opts.UserID))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Newest {
		sel.OrderBy(entsql.Desc("sequence"))
	} else {
		sel.OrderBy(entsql.Asc("sequence"))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
}

// scanAll runs a selector and scans each row with scan.
func scanAll(ctx context.Context, db *sql.DB, sel *entsql.Selector, scan func(*sql.Rows) error) error {
	query, args := sel.Query()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().UnixMilli()
	}
	return t.UnixMilli()
}
