// Package llm defines the inference capability consumed by the game: a
// single request/response conversation primitive, plus the transient-failure
// classification the retry and fallback layers key on.
package llm

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ErrTransient marks a failure that is worth retrying: network errors, rate
// limits, provider 5xx. Callers that exhaust their retry budget fall back to
// a deterministic decision instead of aborting the game.
var ErrTransient = errors.New("transient inference failure")

// Converser is the one capability the game needs from a model provider.
// Implementations send exactly one system context and one user prompt and
// return the model's free-form text.
type Converser interface {
	// Converse performs a single exchange. creativity maps onto the
	// provider's temperature-like sampling control where supported.
	Converse(ctx context.Context, systemContext, prompt string, creativity float64) (string, error)

	// ModelID returns a stable identifier for the underlying model
	ModelID() string
}

// Transient wraps a provider error as retryable.
func Transient(err error, backend string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrTransient, backend, err)
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
