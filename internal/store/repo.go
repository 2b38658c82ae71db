package store

import (
	"context"
	"time"

	"github.com/abhisek/cascade/internal/analytics"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	SessionID string    // exact match when set
	UserID    string    // exact match when set
	Newest    bool      // newest first instead of oldest first
}

// ActionEvent is a stored action record with its global sequence.
type ActionEvent struct {
	Sequence int64
	analytics.ActionRecord
}

// Session event actions.
const (
	SessionStart    = "start"
	SessionComplete = "complete"
	SessionAbandon  = "abandon"
)

// SessionEventData captures a session lifecycle event.
type SessionEventData struct {
	SessionID        string
	UserID           string
	Action           string
	Score            int
	ElapsedSecs      int
	Emergency        bool
	EmergencyOutcome string
	Difficulty       int
	Placed           int
	Total            int
	At               time.Time
}

// SessionEvent is a stored session event.
type SessionEvent struct {
	Sequence int64
	SessionEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	Sequence int64
	At       time.Time
	LLMRequestEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendAction records one learner action.
	AppendAction(ctx context.Context, rec analytics.ActionRecord) error

	// QueryActions returns stored actions matching opts.
	QueryActions(ctx context.Context, opts QueryOpts) ([]ActionEvent, error)

	// AppendSessionEvent records a session lifecycle event.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// QuerySessionEvents returns stored session events matching opts.
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEvent, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMRequests returns stored LLM request events matching opts.
	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
}

// ProfileData is the persisted part of a learner profile.
type ProfileData struct {
	Version    int               `json:"version"`
	Difficulty int               `json:"difficulty"`
	Sessions   int               `json:"sessions"`
	Metrics    analytics.Metrics `json:"metrics"`
}

// Snapshot is a point-in-time capture of a learner profile.
type Snapshot struct {
	Sequence  int64
	UserID    string
	Timestamp time.Time
	Data      ProfileData
}

// SnapshotRepo manages learner profile snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the user's most recent snapshot, or nil if none exist.
	Latest(ctx context.Context, userID string) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots of a user.
	Prune(ctx context.Context, userID string, keep int) error
}
