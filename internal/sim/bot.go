// Package sim plays levels headlessly. A Bot drives each level's engine
// through an engine.Runner, so clock ticks and bot moves are serialised the
// same way they are in the TUI.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/cascade/internal/catalog"
	"github.com/abhisek/cascade/internal/engine"
	"github.com/abhisek/cascade/internal/logging"
	"github.com/abhisek/cascade/internal/session"
)

// Config tunes the simulated learner.
type Config struct {
	Levels int
	// Accuracy is the chance that the first attempt at a factor is correct.
	Accuracy float64
	// HintRate is the chance of asking for a hint before an attempt.
	HintRate  float64
	Emergency bool
	// Period is the session clock period.
	Period time.Duration
	// Think is the pause between moves.
	Think time.Duration
	Seed  uint64
}

// DefaultConfig returns a fast, mostly accurate learner.
func DefaultConfig() Config {
	return Config{
		Levels:   3,
		Accuracy: 0.8,
		HintRate: 0.1,
		Period:   50 * time.Millisecond,
		Think:    20 * time.Millisecond,
		Seed:     1,
	}
}

// Bot plays levels on a session service.
type Bot struct {
	cfg Config
	svc *session.Service
	rng *rand.Rand
	log *slog.Logger
}

// New creates a Bot.
func New(svc *session.Service, cfg Config, log *slog.Logger) *Bot {
	return &Bot{
		cfg: cfg,
		svc: svc,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		log: logging.OrDiscard(log),
	}
}

// Run plays cfg.Levels levels in sequence and returns their summaries.
// Levels run one after another so each starts at the difficulty the
// previous one produced.
func (b *Bot) Run(ctx context.Context) ([]*session.Summary, error) {
	out := make([]*session.Summary, 0, b.cfg.Levels)
	for i := range b.cfg.Levels {
		sum, err := b.playLevel(ctx)
		if err != nil {
			return out, fmt.Errorf("level %d: %w", i+1, err)
		}
		b.log.Info("simulated level", "n", i+1, "score", sum.Score, "accuracy", sum.Metrics.OverallAccuracy,
			"difficulty", sum.DifficultyAfter)
		out = append(out, sum)
	}
	return out, nil
}

func (b *Bot) playLevel(ctx context.Context) (*session.Summary, error) {
	lvl, err := b.svc.NewLevel(ctx, b.cfg.Emergency, false)
	if err != nil {
		return nil, err
	}
	tol := lvl.Engine.Rules().Tolerance
	runner := engine.NewRunner(lvl.Engine, b.cfg.Period)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		if err := runner.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer stop()
		return b.play(gctx, runner, tol)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The runner has exited; the engine is ours again.
	return b.svc.Finish(ctx, lvl)
}

func (b *Bot) play(ctx context.Context, r *engine.Runner, tol int) error {
	if err := r.Do(ctx, func(e *engine.Engine) { e.Start(b.cfg.Emergency) }); err != nil {
		return err
	}

	factors := b.svc.Catalog().Factors()
	for i, f := range factors {
		if b.rng.Float64() < b.cfg.HintRate {
			if err := r.Do(ctx, func(e *engine.Engine) { e.RequestHint(f.ID) }); err != nil {
				return err
			}
		}
		if b.rng.Float64() >= b.cfg.Accuracy {
			decoy := factors[(i+1)%len(factors)].ID
			if err := r.Do(ctx, b.miss(f, decoy, tol)); err != nil {
				return err
			}
			if err := sleep(ctx, b.cfg.Think); err != nil {
				return err
			}
		}
		if err := r.Do(ctx, b.hit(f, tol)); err != nil {
			return err
		}
		if err := sleep(ctx, b.cfg.Think); err != nil {
			return err
		}
	}
	return nil
}

// miss makes a wrong click when a decoy slot exists, otherwise a drop just
// outside tolerance.
func (b *Bot) miss(f catalog.Factor, decoy string, tol int) func(*engine.Engine) {
	useClick := decoy != f.ID && b.rng.IntN(2) == 0
	off := tol + 1 + b.rng.IntN(100)
	return func(e *engine.Engine) {
		if useClick {
			e.Select(f.ID)
			_ = e.PlaceByClick(decoy)
			e.Select(f.ID) // disarm
			return
		}
		e.BeginDrag(f.ID)
		e.PlaceByDrag(f.ID, catalog.Point{X: f.Target.X + off, Y: f.Target.Y})
	}
}

// hit places f correctly by click or by a drop within tolerance.
func (b *Bot) hit(f catalog.Factor, tol int) func(*engine.Engine) {
	useClick := b.rng.IntN(2) == 0
	dx := b.rng.IntN(2*tol+1) - tol
	dy := b.rng.IntN(2*tol+1) - tol
	return func(e *engine.Engine) {
		if useClick {
			if e.Selected() != f.ID {
				e.Select(f.ID)
			}
			_ = e.PlaceByClick(f.ID)
			return
		}
		e.BeginDrag(f.ID)
		e.PlaceByDrag(f.ID, catalog.Point{X: f.Target.X + dx, Y: f.Target.Y + dy})
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
