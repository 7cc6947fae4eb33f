// Package game implements the duel itself: the round engine driving two
// model-backed agents, the response interpreter that turns free text into
// decisions, and the transcript record of a finished game.
package game

import (
	"fmt"
	"time"
)

// Role identifies which side of the duel an agent plays.
type Role string

const (
	RoleSetter  Role = "setter"
	RoleGuesser Role = "guesser"
)

// Feedback classifies one guess against the secret.
type Feedback string

const (
	FeedbackTooLow  Feedback = "too_low"
	FeedbackTooHigh Feedback = "too_high"
	FeedbackCorrect Feedback = "correct"
)

// Verdict is the terminal outcome of a game.
type Verdict string

const (
	VerdictGuesserWin Verdict = "guesser_win"
	VerdictSetterWin  Verdict = "setter_win"
)

// Config holds the immutable bounds and toggles for one game.
type Config struct {
	MinValue       int     `json:"min_value"`
	MaxValue       int     `json:"max_value"`
	MaxTurns       int     `json:"max_turns"`
	EnableHints    bool    `json:"enable_hints"`
	EnableDialogue bool    `json:"enable_dialogue"`
	EnableMemory   bool    `json:"enable_memory"`
	Creativity     float64 `json:"creativity"`
	MaxWords       int     `json:"max_words"`
}

// Validate reports the configuration errors that are fatal at startup.
func (c Config) Validate() error {
	if c.MinValue >= c.MaxValue {
		return fmt.Errorf("min_value (%d) must be less than max_value (%d)", c.MinValue, c.MaxValue)
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("max_turns must be positive, got %d", c.MaxTurns)
	}
	if c.MaxWords <= 0 {
		return fmt.Errorf("max_words must be positive, got %d", c.MaxWords)
	}
	return nil
}

// DialogueExchange is one bounded strategic remark from each side. It is
// purely informational and never affects feedback.
type DialogueExchange struct {
	Guesser string `json:"guesser"`
	Setter  string `json:"setter,omitempty"`
}

// Turn is one guess attempt. Immutable once appended to the turn log.
type Turn struct {
	Seq          int               `json:"turn"` // 1-based
	Guess        int               `json:"guess"`
	Feedback     Feedback          `json:"feedback"`
	Hint         string            `json:"hint,omitempty"`
	Dialogue     *DialogueExchange `json:"dialogue,omitempty"`
	FallbackUsed bool              `json:"fallback_used,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

// Transcript is the complete record of one finished game.
type Transcript struct {
	ID             string    `json:"id"` // timestamp-derived
	Config         Config    `json:"config"`
	Secret         int       `json:"secret_number"`
	CommitFallback bool      `json:"commit_fallback,omitempty"`
	Turns          []Turn    `json:"turns"`
	Verdict        Verdict   `json:"verdict"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
}

// Duration returns elapsed play time.
func (t *Transcript) Duration() time.Duration {
	return t.EndedAt.Sub(t.StartedAt)
}

// LastTurn returns the final recorded turn, or nil for an empty log.
func (t *Transcript) LastTurn() *Turn {
	if len(t.Turns) == 0 {
		return nil
	}
	return &t.Turns[len(t.Turns)-1]
}
