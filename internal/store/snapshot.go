package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// snapshotVersion is bumped when ProfileData changes shape.
const snapshotVersion = 1

// snapshotRepo implements SnapshotRepo with the ent SQL builder.
type snapshotRepo struct {
	db  *sql.DB
	b   *entsql.DialectBuilder
	seq *sequenceCounter
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Data.Version == 0 {
		snap.Data.Version = snapshotVersion
	}
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	snap.Sequence = seqNum

	query, args := r.b.Insert(tableSnapshots).
		Columns("sequence", "user_id", "at_ms", "data").
		Values(seqNum, snap.UserID, toMillis(snap.Timestamp), string(data)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, userID string) (*Snapshot, error) {
	query, args := r.b.Select("sequence", "user_id", "at_ms", "data").
		From(entsql.Table(tableSnapshots)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Query()

	var (
		snap Snapshot
		atMs int64
		data string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&snap.Sequence, &snap.UserID, &atMs, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &snap.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	snap.Timestamp = fromMillis(atMs)
	return &snap, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, userID string, keep int) error {
	// Find the sequence threshold: the (keep+1)th most recent snapshot.
	query, args := r.b.Select("sequence").
		From(entsql.Table(tableSnapshots)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence")).
		Offset(keep).
		Limit(1).
		Query()

	var threshold int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fewer than keep snapshots exist
	}
	if err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}

	query, args = r.b.Delete(tableSnapshots).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.LTE("sequence", threshold),
		)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
