package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	// Values below 1 mean a single attempt.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry. Zero retries immediately.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries. Zero means no cap.
	MaxBackoff time.Duration
	// BackoffFactor is the multiplier for exponential backoff. Values below 1 keep the delay constant.
	BackoffFactor float64
	// Jitter adds randomness to backoff (0.0 to 1.0).
	Jitter float64
	// RetryIf determines if an error should be retried. Nil retries every error.
	RetryIf func(error) bool
	// OnRetry is called before each retry with the attempt that just failed.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

// Retry calls fn until it succeeds or MaxAttempts is reached. Attempts are
// numbered from 1 and never overlap. The last error is returned unchanged
// when every attempt fails. The context is checked before each attempt and
// during backoff.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func(attempt int) (T, error)) (T, error) {
	var zero T
	var lastErr error

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		backoff := calculateBackoff(attempt, cfg)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, backoff)
		}
		if backoff <= 0 {
			continue
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// calculateBackoff returns the delay after the given failed attempt.
func calculateBackoff(attempt int, cfg RetryConfig) time.Duration {
	if cfg.InitialBackoff <= 0 {
		return 0
	}
	factor := cfg.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	backoff := float64(cfg.InitialBackoff) * math.Pow(factor, float64(attempt-1))

	if cfg.Jitter > 0 {
		backoff += (rand.Float64()*2 - 1) * backoff * cfg.Jitter
	}
	if cfg.MaxBackoff > 0 && backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	if backoff < 0 {
		backoff = float64(cfg.InitialBackoff)
	}
	return time.Duration(backoff)
}
