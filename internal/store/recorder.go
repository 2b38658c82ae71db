package store

import (
	"context"
	"log/slog"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/logging"
)

// ActionRecorder persists learner actions as they are recorded. Write
// failures are logged and dropped; the game never blocks on storage.
type ActionRecorder struct {
	repo EventRepo
	log  *slog.Logger
}

// NewActionRecorder returns a recorder appending to repo.
func NewActionRecorder(repo EventRepo, log *slog.Logger) *ActionRecorder {
	return &ActionRecorder{repo: repo, log: logging.OrDiscard(log)}
}

// RecordAction implements analytics.Recorder.
func (r *ActionRecorder) RecordAction(rec analytics.ActionRecord) {
	if err := r.repo.AppendAction(context.Background(), rec); err != nil {
		r.log.Warn("persist action failed", "kind", rec.Kind, "factor", rec.FactorID, "error", err)
	}
}
