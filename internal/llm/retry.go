package llm

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/cascade/internal/logging"
)

// RetryProvider retries transient failures with capped exponential backoff.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	log    *slog.Logger
}

// WithRetry wraps p so transient errors are retried. Zero MaxAttempts
// means a single try.
func WithRetry(p Provider, cfg RetryConfig, log *slog.Logger) Provider {
	cfg.MaxAttempts = max(cfg.MaxAttempts, 1)
	return &RetryProvider{inner: p, config: cfg, log: logging.OrDiscard(log)}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	invalidSeen := false
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt >= r.config.MaxAttempts || !retryable(err, &invalidSeen) {
			return nil, err
		}

		wait := r.backoff(attempt, err)
		r.log.Debug("retrying llm request", "attempt", attempt, "wait", wait, "error", err)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// retryable classifies err. An invalid response is retried once since a
// second sample often conforms; client rejections and truncation never are.
func retryable(err error, invalidSeen *bool) bool {
	var (
		maxTok   *ErrMaxTokensExceeded
		rejected *ErrRejected
		invalid  *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.As(err, &maxTok), errors.As(err, &rejected):
		return false
	case errors.As(err, &invalid):
		if *invalidSeen {
			return false
		}
		*invalidSeen = true
		return true
	}
	return true
}

// backoff returns the wait before retry number attempt (1-based). A
// provider Retry-After wins over the computed delay.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	d := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt-1))
	d = math.Min(d, float64(r.config.MaxWait))
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(d)
}
