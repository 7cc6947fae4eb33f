package game

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	pkgLogger "github.com/numwits/numwits/pkg/logger"
)

var engineLogger = pkgLogger.NewComponentLogger("engine")

// Observer receives game events for presentation. All methods are called
// sequentially from Run; implementations must not affect game state.
type Observer interface {
	GameStarted(cfg Config)
	SecretCommitted(fallback bool)
	TurnStarted(seq int)
	GuessMade(seq, guess int, fallback bool)
	FeedbackGiven(fb Feedback)
	HintGiven(hint string)
	DialogueSpoken(role Role, text string)
	GameEnded(t *Transcript)
}

// NopObserver ignores every event; used when no presenter is attached.
type NopObserver struct{}

func (NopObserver) GameStarted(Config)          {}
func (NopObserver) SecretCommitted(bool)        {}
func (NopObserver) TurnStarted(int)             {}
func (NopObserver) GuessMade(int, int, bool)    {}
func (NopObserver) FeedbackGiven(Feedback)      {}
func (NopObserver) HintGiven(string)            {}
func (NopObserver) DialogueSpoken(Role, string) {}
func (NopObserver) GameEnded(*Transcript)       {}

// Engine drives one game from commit to verdict. Instances are single-use:
// the turn log and feasible range are live state, so a batch run constructs
// a fresh engine per game.
type Engine struct {
	cfg      Config
	setter   *Agent
	guesser  *Agent
	interp   *Interpreter
	feasible FeasibleRange
	observer Observer

	hintsGiven []string
	done       bool
}

// NewEngine validates cfg and wires the two agents. observer may be nil.
func NewEngine(cfg Config, setter, guesser *Agent, interp *Interpreter, observer Observer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid game configuration")
	}
	if setter == nil || guesser == nil {
		return nil, errors.New("both agents are required")
	}
	if interp == nil {
		interp = NewInterpreter()
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Engine{
		cfg:      cfg,
		setter:   setter,
		guesser:  guesser,
		interp:   interp,
		feasible: NewFeasibleRange(cfg),
		observer: observer,
	}, nil
}

// Run plays the game to its verdict and returns the transcript. Inference
// failures never abort a game: every decision has a deterministic fallback,
// so the only error paths are engine reuse and context cancellation.
func (e *Engine) Run(ctx context.Context) (*Transcript, error) {
	if e.done {
		return nil, errors.New("engine instances are single-use; construct a new one per game")
	}
	e.done = true

	started := time.Now()
	t := &Transcript{
		// Sub-second suffix keeps IDs distinct when a batch run finishes
		// several games within the same second.
		ID:        fmt.Sprintf("%s_%06d", started.Format("20060102_150405"), started.Nanosecond()/1000),
		Config:    e.cfg,
		StartedAt: started,
	}
	e.observer.GameStarted(e.cfg)

	secret, commitFallback := e.commitSecret(ctx)
	t.Secret = secret
	t.CommitFallback = commitFallback
	e.observer.SecretCommitted(commitFallback)

	for seq := 1; seq <= e.cfg.MaxTurns; seq++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "game cancelled")
		}
		e.observer.TurnStarted(seq)

		turn := e.playTurn(ctx, t, seq, secret)
		t.Turns = append(t.Turns, turn)

		if turn.Feedback == FeedbackCorrect {
			t.Verdict = VerdictGuesserWin
			break
		}
	}

	if t.Verdict == "" {
		t.Verdict = VerdictSetterWin
	}
	t.EndedAt = time.Now()
	e.observer.GameEnded(t)
	return t, nil
}

// commitSecret asks the setter for the secret, substituting a uniform
// sample when the response is unusable.
func (e *Engine) commitSecret(ctx context.Context) (int, bool) {
	raw, err := e.setter.Converse(ctx, e.setter.CommitPrompt())
	if err != nil {
		engineLogger.Warn("Setter commit failed, sampling a secret", "error", err)
		raw = ""
	}
	secret, fallback := e.interp.CommitValue(raw, e.cfg.MinValue, e.cfg.MaxValue)
	if fallback {
		engineLogger.Debug("Commit fallback used", "secret", secret)
	}
	return secret, fallback
}

// playTurn runs one guess cycle: guess, feedback, and — on a miss — the
// optional hint and dialogue exchanges. A correct guess short-circuits both.
func (e *Engine) playTurn(ctx context.Context, t *Transcript, seq, secret int) Turn {
	raw, err := e.guesser.Converse(ctx, e.guesser.GuessPrompt(t.Turns))
	if err != nil {
		engineLogger.Warn("Guesser call failed, using binary-search fallback", "turn", seq, "error", err)
		raw = ""
	}
	guess, usedFallback := e.interp.GuessValue(raw, e.cfg.MinValue, e.cfg.MaxValue, e.feasible)
	e.observer.GuessMade(seq, guess, usedFallback)

	feedback := classifyGuess(guess, secret)
	e.observer.FeedbackGiven(feedback)

	turn := Turn{
		Seq:          seq,
		Guess:        guess,
		Feedback:     feedback,
		FallbackUsed: usedFallback,
		Timestamp:    time.Now(),
	}
	if feedback == FeedbackCorrect {
		return turn
	}

	e.feasible.Narrow(guess, feedback)

	if e.cfg.EnableHints && seq%2 == 0 {
		if hint, ok := e.requestHint(ctx, secret, guess); ok {
			turn.Hint = hint
			e.hintsGiven = append(e.hintsGiven, hint)
			e.observer.HintGiven(hint)
		}
	}

	if e.cfg.EnableDialogue && seq%3 == 0 && seq < e.cfg.MaxTurns {
		if exchange, ok := e.exchangeDialogue(ctx); ok {
			turn.Dialogue = exchange
		}
	}

	return turn
}

// requestHint is best-effort: a failed hint call skips the hint, it never
// fails the turn.
func (e *Engine) requestHint(ctx context.Context, secret, lastGuess int) (string, bool) {
	raw, err := e.setter.Converse(ctx, e.setter.HintPrompt(secret, lastGuess))
	if err != nil {
		engineLogger.Warn("Hint request failed, skipping", "error", err)
		return "", false
	}
	return e.interp.FreeText(raw, e.cfg.MaxWords), true
}

// exchangeDialogue runs one remark from each side: the guesser reads the
// setter's tactics, the setter answers. If the guesser's side fails the
// whole exchange is skipped; a failed setter reply keeps the guesser's
// remark alone.
func (e *Engine) exchangeDialogue(ctx context.Context) (*DialogueExchange, bool) {
	raw, err := e.guesser.Converse(ctx, e.guesser.AnalysisPrompt(e.hintsGiven))
	if err != nil {
		engineLogger.Warn("Dialogue request failed, skipping", "error", err)
		return nil, false
	}
	analysis := e.interp.FreeText(raw, e.cfg.MaxWords)
	e.observer.DialogueSpoken(RoleGuesser, analysis)

	exchange := &DialogueExchange{Guesser: analysis}
	raw, err = e.setter.Converse(ctx, e.setter.RetortPrompt(analysis))
	if err != nil {
		engineLogger.Warn("Setter retort failed, keeping one-sided dialogue", "error", err)
		return exchange, true
	}
	exchange.Setter = e.interp.FreeText(raw, e.cfg.MaxWords)
	e.observer.DialogueSpoken(RoleSetter, exchange.Setter)
	return exchange, true
}

func classifyGuess(guess, secret int) Feedback {
	switch {
	case guess == secret:
		return FeedbackCorrect
	case guess < secret:
		return FeedbackTooLow
	default:
		return FeedbackTooHigh
	}
}
