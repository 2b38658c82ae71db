package analytics

import (
	"slices"
	"sync"
	"time"
)

// ActionKind identifies what the learner did.
type ActionKind string

const (
	KindSelect       ActionKind = "select"
	KindPlaceAttempt ActionKind = "place-attempt"
	KindHintRequest  ActionKind = "hint-request"
	KindInfoView     ActionKind = "info-view"
)

// AllKinds returns all action kinds in display order.
func AllKinds() []ActionKind {
	return []ActionKind{KindSelect, KindPlaceAttempt, KindHintRequest, KindInfoView}
}

// ActionRecord is an immutable, timestamped learner action.
// Correct is only meaningful for place attempts.
type ActionRecord struct {
	Kind      ActionKind    `json:"kind"`
	FactorID  string        `json:"factor_id,omitempty"`
	Latency   time.Duration `json:"latency"`
	Correct   bool          `json:"correct"`
	At        time.Time     `json:"at"`
	SessionID string        `json:"session_id,omitempty"`
	UserID    string        `json:"user_id,omitempty"`
}

// Recorder receives action records as they happen.
type Recorder interface {
	RecordAction(rec ActionRecord)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ActionRecord)

func (f RecorderFunc) RecordAction(rec ActionRecord) { f(rec) }

// Tee fans a record out to several recorders in order. Nil recorders are skipped.
func Tee(recs ...Recorder) Recorder {
	return RecorderFunc(func(rec ActionRecord) {
		for _, r := range recs {
			if r != nil {
				r.RecordAction(rec)
			}
		}
	})
}

// Log is an append-only action log. It is safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	actions []ActionRecord
}

// NewLog creates a log seeded with existing records (e.g. loaded from the store).
func NewLog(seed ...ActionRecord) *Log {
	return &Log{actions: slices.Clone(seed)}
}

// RecordAction appends a record. Past records are never modified.
func (l *Log) RecordAction(rec ActionRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = append(l.actions, rec)
}

// Len returns the number of records.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.actions)
}

// Actions returns a copy of all records in append order.
func (l *Log) Actions() []ActionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.actions)
}

// ForSession returns a copy of the records of one session.
func (l *Log) ForSession(sessionID string) []ActionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []ActionRecord
	for _, a := range l.actions {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out
}
