package allscreenshots

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy controls how failed calls are retried. Only retry-eligible
// errors (see IsRetryable) consume the budget; everything else returns
// to the caller on the first failure.
type RetryPolicy struct {
	// MaxRetries is the number of re-sends after the initial attempt,
	// so a call makes at most MaxRetries+1 attempts.
	MaxRetries int

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration

	// Multiplier grows the delay per attempt. Values below 1 are
	// treated as 1.
	Multiplier float64

	// JitterFactor randomizes each delay by ±JitterFactor so that
	// clients retrying in lockstep spread out. 0.2 means ±20%.
	JitterFactor float64
}

// DefaultRetryPolicy returns the policy used when Config.Retry is unset:
// 3 retries, 500ms initial delay doubling up to 30s, ±20% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.2,
	}
}

// normalized fills zero fields with defaults so a partially specified
// policy still behaves.
func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.InitialDelay <= 0 {
		p.InitialDelay = def.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	if p.JitterFactor < 0 {
		p.JitterFactor = 0
	}
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	return p
}

// delayForAttempt computes the wait before retry attempt n (1-based):
// InitialDelay·Multiplier^(n-1), capped at MaxDelay, then jittered.
// Attempt 0 is the initial send and has no delay.
func (p RetryPolicy) delayForAttempt(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	base := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if capped := float64(p.MaxDelay); base > capped {
		base = capped
	}

	if p.JitterFactor > 0 {
		// Uniform in [1-j, 1+j].
		factor := 1 + p.JitterFactor*(2*rand.Float64()-1)
		base *= factor
	}

	return time.Duration(base)
}

// retryState is the per-call bookkeeping of one retried operation. It
// lives only for the duration of that operation.
type retryState struct {
	attempt int
	started time.Time
	lastErr error
}

func (s *retryState) elapsed() time.Duration { return time.Since(s.started) }

// doWithRetry runs fn until it succeeds, returns a non-retryable error,
// or the retry budget is exhausted, in which case the last observed
// error is returned unchanged. Sleeps are cancellable through ctx.
func doWithRetry(ctx context.Context, policy RetryPolicy, log *slog.Logger, op string, fn func(context.Context) error) error {
	policy = policy.normalized()
	state := retryState{started: time.Now()}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		state.lastErr = fn(ctx)
		if state.lastErr == nil {
			return nil
		}

		if !IsRetryable(state.lastErr) {
			return state.lastErr
		}
		if state.attempt >= policy.MaxRetries {
			if log != nil {
				log.Warn("retry budget exhausted",
					"op", op,
					"attempts", state.attempt+1,
					"elapsed", state.elapsed(),
					"error", state.lastErr,
				)
			}
			return state.lastErr
		}

		state.attempt++
		delay := policy.delayForAttempt(state.attempt)
		if log != nil {
			log.Warn("retrying request",
				"op", op,
				"attempt", state.attempt,
				"max_retries", policy.MaxRetries,
				"delay", delay,
				"error", state.lastErr,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
