package llm

import (
	"context"
	"time"

	pkgLogger "github.com/numwits/numwits/pkg/logger"
)

// Default retry policy for inference calls. Small and fixed: the game never
// blocks on a provider for long because every call site has a deterministic
// fallback.
const (
	DefaultRetryAttempts = 3
	DefaultRetryBackoff  = 500 * time.Millisecond
)

var retryLogger = pkgLogger.NewComponentLogger("llm-retry")

// retryConverser decorates a Converser with bounded retries and exponential
// backoff for transient failures. Non-transient errors surface immediately.
type retryConverser struct {
	inner    Converser
	attempts int
	backoff  time.Duration

	// wait is swappable in tests; defaults to a context-aware sleep.
	wait func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps c so transient failures are retried up to attempts times
// with exponential backoff starting at backoff.
func WithRetry(c Converser, attempts int, backoff time.Duration) Converser {
	if attempts < 1 {
		attempts = 1
	}
	return &retryConverser{
		inner:    c,
		attempts: attempts,
		backoff:  backoff,
		wait:     sleepCtx,
	}
}

func (r *retryConverser) ModelID() string { return r.inner.ModelID() }

func (r *retryConverser) Converse(ctx context.Context, systemContext, prompt string, creativity float64) (string, error) {
	var lastErr error
	delay := r.backoff

	for attempt := 1; attempt <= r.attempts; attempt++ {
		text, err := r.inner.Converse(ctx, systemContext, prompt, creativity)
		if err == nil {
			return text, nil
		}
		if !IsTransient(err) {
			return "", err
		}
		lastErr = err

		if attempt < r.attempts {
			retryLogger.Warn("Inference call failed, retrying",
				"attempt", attempt, "max_attempts", r.attempts, "error", err)
			if werr := r.wait(ctx, delay); werr != nil {
				return "", werr
			}
			delay *= 2
		}
	}
	return "", lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
