package game

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// FeasibleRange is the interval of values consistent with all feedback so
// far. It narrows monotonically and backs the deterministic guess fallback.
type FeasibleRange struct {
	Lo int
	Hi int
}

// NewFeasibleRange starts the range at the full game bounds.
func NewFeasibleRange(cfg Config) FeasibleRange {
	return FeasibleRange{Lo: cfg.MinValue, Hi: cfg.MaxValue}
}

// Narrow shrinks the range per directional feedback. Correct feedback ends
// the game before narrowing matters, so it is a no-op here.
func (r *FeasibleRange) Narrow(guess int, fb Feedback) {
	switch fb {
	case FeedbackTooLow:
		if guess+1 > r.Lo {
			r.Lo = guess + 1
		}
	case FeedbackTooHigh:
		if guess-1 < r.Hi {
			r.Hi = guess - 1
		}
	}
}

// Midpoint is the binary-search fallback guess for the current range.
func (r FeasibleRange) Midpoint() int {
	return (r.Lo + r.Hi) / 2
}

// Size returns the number of values still feasible.
func (r FeasibleRange) Size() int {
	return r.Hi - r.Lo + 1
}

// Interpreter turns free-form agent text into structured decisions, with
// deterministic fallbacks when parsing fails. Interpretation itself never
// errors; the usedFallback flag is the only failure signal.
type Interpreter struct {
	rng *rand.Rand
}

// NewInterpreter creates an interpreter with a time-seeded source for the
// commit fallback.
func NewInterpreter() *Interpreter {
	return NewInterpreterWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewInterpreterWithSource allows a deterministic source in tests.
func NewInterpreterWithSource(src rand.Source) *Interpreter {
	return &Interpreter{rng: rand.New(src)}
}

// GuessValue extracts the guesser's number from raw text, accepting any
// value within the game bounds [lo, hi] — a guess that contradicts earlier
// feedback is still the guesser's guess and is recorded as made. Only on
// parse failure does it return the feasible-range midpoint, which guarantees
// forward progress even under total inference failure.
func (i *Interpreter) GuessValue(raw string, lo, hi int, fr FeasibleRange) (value int, usedFallback bool) {
	if n, ok := firstIntInRange(raw, lo, hi); ok {
		return n, false
	}
	return fr.Midpoint(), true
}

// CommitValue extracts the setter's secret from raw text. On parse failure
// it returns a uniformly sampled value from [lo, hi].
func (i *Interpreter) CommitValue(raw string, lo, hi int) (value int, usedFallback bool) {
	if n, ok := firstIntInRange(raw, lo, hi); ok {
		return n, false
	}
	return lo + i.rng.Intn(hi-lo+1), true
}

// FreeText passes hint/dialogue text through, truncated to maxWords at a
// word boundary. This kind cannot fail.
func (i *Interpreter) FreeText(raw string, maxWords int) string {
	return TruncateWords(raw, maxWords)
}

// firstIntInRange scans raw left to right and returns the first integer
// token lying within [lo, hi]. Out-of-range tokens are skipped, not
// clamped; a '-' immediately preceding digits negates the token.
func firstIntInRange(raw string, lo, hi int) (int, bool) {
	runes := []rune(raw)
	for idx := 0; idx < len(runes); idx++ {
		if !unicode.IsDigit(runes[idx]) {
			continue
		}
		start := idx
		for idx < len(runes) && unicode.IsDigit(runes[idx]) {
			idx++
		}
		token := string(runes[start:idx])
		if start > 0 && runes[start-1] == '-' {
			token = "-" + token
		}
		n, err := strconv.Atoi(token)
		if err != nil {
			// Token longer than an int; skip it.
			continue
		}
		if n >= lo && n <= hi {
			return n, true
		}
	}
	return 0, false
}

// TruncateWords cuts s to at most max words, joined by single spaces.
func TruncateWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return strings.TrimSpace(s)
	}
	return strings.Join(words[:max], " ")
}
