package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
)

type retrying struct {
	inner Provider
	cfg   RetryConfig
	log   zerolog.Logger
}

// WithRetry retries transient failures with capped exponential backoff.
// Rejected, truncated and cancelled requests fail at once; invalid
// output gets a single second try.
func WithRetry(p Provider, cfg RetryConfig, log zerolog.Logger) Provider {
	return &retrying{inner: p, cfg: cfg, log: log.With().Str("component", "llm-retry").Logger()}
}

func (r *retrying) ModelID() string { return r.inner.ModelID() }

func (r *retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.cfg.MaxAttempts, 1)
	invalidSeen := false

	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt == attempts || !retryable(err, &invalidSeen) {
			return nil, err
		}

		wait := r.cfg.delay(attempt, err)
		r.log.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("retrying llm request")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func retryable(err error, invalidSeen *bool) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrRejected), errors.Is(err, ErrTruncated):
		return false
	case errors.Is(err, ErrInvalidOutput):
		if *invalidSeen {
			return false
		}
		*invalidSeen = true
	}
	return true
}

// delay is the wait after the given 1-based attempt: the server hint when
// present, else InitialWait*Multiplier^(attempt-1) capped at MaxWait with
// 20% jitter either way.
func (c RetryConfig) delay(attempt int, err error) time.Duration {
	if d := RetryAfter(err); d > 0 {
		return d
	}
	d := float64(c.InitialWait)
	for range attempt - 1 {
		d *= c.Multiplier
	}
	if c.MaxWait > 0 {
		d = min(d, float64(c.MaxWait))
	}
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(d)
}
