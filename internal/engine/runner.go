package engine

import (
	"context"
	"errors"
	"time"
)

// ErrRunnerStopped is returned by Do after the runner loop has exited.
var ErrRunnerStopped = errors.New("engine: runner stopped")

type command struct {
	fn   func(*Engine)
	done chan struct{}
}

// Runner owns an Engine on a single goroutine. Commands submitted with Do
// and clock ticks are serialised through one select loop, so a placement and
// a tick never interleave.
type Runner struct {
	inbox  chan command
	engine *Engine
	period time.Duration
	quit   chan struct{}
}

// NewRunner wraps e. period is the tick interval; zero means one second.
func NewRunner(e *Engine, period time.Duration) *Runner {
	if period <= 0 {
		period = time.Second
	}
	return &Runner{
		inbox:  make(chan command, 64),
		engine: e,
		period: period,
		quit:   make(chan struct{}),
	}
}

// Run processes commands and ticks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.quit)

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-r.inbox:
			cmd.fn(r.engine)
			close(cmd.done)
		case <-ticker.C:
			r.engine.Tick(r.engine.Epoch())
		}
	}
}

// Do runs fn on the runner goroutine and waits for it to finish.
func (r *Runner) Do(ctx context.Context, fn func(*Engine)) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case r.inbox <- cmd:
	case <-r.quit:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-cmd.done:
		return nil
	case <-r.quit:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
