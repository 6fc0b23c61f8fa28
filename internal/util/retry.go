// ABOUTME: Retry utilities for API calls with exponential backoff
// ABOUTME: Shared by the OpenAI client for embedding and completion calls
package util

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// CalculateBackoff returns exponential backoff with jitter
// Base delay is doubled each attempt, with random jitter up to 25%
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift (max 30 for safety)
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second || backoff <= 0 {
		backoff = 30 * time.Second
	}
	half := int64(backoff) / 2
	if half == 0 {
		return backoff
	}
	// Jitter: -25% to +25% using auto-seeded math/rand/v2
	jitter := time.Duration(rand.Int64N(half)) - backoff/4
	return backoff + jitter
}

// Permanent wraps an error that Retry must return immediately
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// Retry calls fn up to maxRetries+1 times, sleeping with CalculateBackoff
// between attempts. A *Permanent error or a cancelled context stops early;
// the unwrapped error is returned.
func Retry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(attempt int) error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled after %d attempts: %w", attempt, lastErr)
			case <-time.After(CalculateBackoff(baseDelay, attempt)):
			}
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}

		if p, ok := err.(*Permanent); ok {
			return p.Err
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)

		if ctx.Err() != nil {
			return lastErr
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", maxRetries+1, lastErr)
}
