// Package export writes the stored action log as JSON lines to a local file
// or an S3 bucket.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/abhisek/cascade/internal/store"
)

// Line is one exported action.
type Line struct {
	Sequence  int64     `json:"sequence"`
	Kind      string    `json:"kind"`
	FactorID  string    `json:"factor_id,omitempty"`
	LatencyMs int64     `json:"latency_ms"`
	Correct   bool      `json:"correct"`
	At        time.Time `json:"at"`
	SessionID string    `json:"session_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
}

func lineOf(ev store.ActionEvent) Line {
	return Line{
		Sequence:  ev.Sequence,
		Kind:      string(ev.Kind),
		FactorID:  ev.FactorID,
		LatencyMs: ev.Latency.Milliseconds(),
		Correct:   ev.Correct,
		At:        ev.At.UTC(),
		SessionID: ev.SessionID,
		UserID:    ev.UserID,
	}
}

// WriteJSONL encodes events one per line and returns the number written.
func WriteJSONL(w io.Writer, events []store.ActionEvent) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i, ev := range events {
		if err := enc.Encode(lineOf(ev)); err != nil {
			return i, fmt.Errorf("encode action %d: %w", ev.Sequence, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return len(events), fmt.Errorf("flush export: %w", err)
	}
	return len(events), nil
}
