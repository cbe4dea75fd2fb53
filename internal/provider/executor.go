package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultRetryFactor      = 2
	defaultTransientRetries = 3
	defaultBackoffBase      = 200 * time.Millisecond
)

// Executor runs one operation against the currently active credential,
// classifies failures, and drives pool rotation. It always terminates in
// bounded time: at most Size*RetryFactor attempts, with transient retries on
// the same credential capped separately.
type Executor struct {
	Pool     *KeyPool
	Classify Classifier

	// RetryFactor scales the attempt budget beyond pool size so transient
	// retries do not eat into quota rotations. Zero means the default.
	RetryFactor      int
	TransientRetries int
	BackoffBase      time.Duration
}

func (e *Executor) attempts() int {
	f := e.RetryFactor
	if f < 1 {
		f = defaultRetryFactor
	}
	return e.Pool.Size() * f
}

func (e *Executor) maxTransient() int {
	if e.TransientRetries < 1 {
		return defaultTransientRetries
	}
	return e.TransientRetries
}

func (e *Executor) backoff(n int) time.Duration {
	base := e.BackoffBase
	if base <= 0 {
		base = defaultBackoffBase
	}
	return base << (n - 1)
}

// Execute invokes op with the active credential until it succeeds, a
// permanent error occurs, the transient ceiling is hit, or every credential
// is exhausted. op captures its own result; Execute only reports the outcome.
func (e *Executor) Execute(ctx context.Context, op func(ctx context.Context, key string) error) error {
	var lastErr error
	transient := 0

	for attempt := 0; attempt < e.attempts(); attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		key, idx := e.Pool.Current()
		err := op(ctx, key)
		if err == nil {
			return nil
		}
		lastErr = err

		switch e.Classify(err) {
		case FailureQuota:
			log.Warn().Str("module", "provider.executor").Int("key", idx).Err(err).Msg("credential quota exceeded")
			if !e.Pool.Rotate(idx) {
				return fmt.Errorf("%w: %v", ErrAllKeysExhausted, err)
			}
		case FailureTransient:
			transient++
			if transient > e.maxTransient() {
				// Escalated to permanent for this operation.
				return err
			}
			delay := e.backoff(transient)
			log.Warn().Str("module", "provider.executor").Int("retry", transient).Dur("delay", delay).Err(err).Msg("transient failure")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		default:
			return err
		}
	}
	return lastErr
}
