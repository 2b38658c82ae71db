package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const (
	tableActions   = "action_events"
	tableSessions  = "session_events"
	tableLLM       = "llm_request_events"
	tableSnapshots = "profile_snapshots"
)

var allTables = []string{tableActions, tableSessions, tableLLM, tableSnapshots}

// Every event table is keyed by its global sequence number. Timestamps are
// stored as unix milliseconds so both dialects share one column type.
func tableDefs(b *entsql.DialectBuilder) []*entsql.TableBuilder {
	seq := func() *entsql.ColumnBuilder {
		return entsql.Column("sequence").Type("BIGINT").Attr("PRIMARY KEY")
	}
	text := func(name string) *entsql.ColumnBuilder {
		return entsql.Column(name).Type("TEXT").Attr("NOT NULL DEFAULT ''")
	}
	num := func(name string) *entsql.ColumnBuilder {
		return entsql.Column(name).Type("BIGINT").Attr("NOT NULL DEFAULT 0")
	}
	flag := func(name string) *entsql.ColumnBuilder {
		return entsql.Column(name).Type("BOOLEAN").Attr("NOT NULL DEFAULT FALSE")
	}

	return []*entsql.TableBuilder{
		b.CreateTable(tableActions).IfNotExists().Columns(
			seq(),
			text("session_id"),
			text("user_id"),
			text("kind"),
			text("factor_id"),
			num("latency_ms"),
			flag("correct"),
			num("at_ms"),
		),
		b.CreateTable(tableSessions).IfNotExists().Columns(
			seq(),
			text("session_id"),
			text("user_id"),
			text("action"),
			num("score"),
			num("elapsed_secs"),
			flag("emergency"),
			text("emergency_outcome"),
			num("difficulty"),
			num("placed"),
			num("total"),
			num("at_ms"),
		),
		b.CreateTable(tableLLM).IfNotExists().Columns(
			seq(),
			text("provider"),
			text("model"),
			text("purpose"),
			num("input_tokens"),
			num("output_tokens"),
			num("latency_ms"),
			flag("success"),
			text("error_message"),
			num("at_ms"),
		),
		b.CreateTable(tableSnapshots).IfNotExists().Columns(
			seq(),
			text("user_id"),
			num("at_ms"),
			text("data"),
		),
	}
}

func (s *Store) migrate(ctx context.Context) error {
	for _, t := range tableDefs(s.builder()) {
		query, args := t.Query()
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}
