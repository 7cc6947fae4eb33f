package game

import (
	"context"
	"math/rand"
	"testing"

	"github.com/pkg/errors"

	"github.com/numwits/numwits/pkg/llm"
)

// fakeConverser replays a scripted queue of responses, one per call.
type fakeConverser struct {
	responses []string
	idx       int
	err       error
	prompts   []string
}

func (f *fakeConverser) Converse(_ context.Context, _, prompt string, _ float64) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if f.idx >= len(f.responses) {
		return "", nil
	}
	resp := f.responses[f.idx]
	f.idx++
	return resp, nil
}

func (f *fakeConverser) ModelID() string { return "fake" }

func newTestEngine(t *testing.T, cfg Config, setter, guesser llm.Converser) *Engine {
	t.Helper()
	interp := NewInterpreterWithSource(rand.NewSource(1))
	engine, err := NewEngine(cfg,
		NewAgent(RoleSetter, setter, cfg, nil),
		NewAgent(RoleGuesser, guesser, cfg, nil),
		interp, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestGuesserWinsOnThirdGuess(t *testing.T) {
	cfg := testConfig()
	cfg.EnableHints = false
	cfg.EnableDialogue = false

	setter := &fakeConverser{responses: []string{"42"}}
	guesser := &fakeConverser{responses: []string{"50", "30", "42"}}

	transcript, err := newTestEngine(t, cfg, setter, guesser).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if transcript.Verdict != VerdictGuesserWin {
		t.Errorf("Expected guesser_win, got %s", transcript.Verdict)
	}
	if transcript.Secret != 42 {
		t.Errorf("Expected secret 42, got %d", transcript.Secret)
	}
	if len(transcript.Turns) != 3 {
		t.Fatalf("Expected exactly 3 turns, got %d", len(transcript.Turns))
	}
	if transcript.LastTurn().Feedback != FeedbackCorrect {
		t.Errorf("Last turn feedback should be correct, got %s", transcript.LastTurn().Feedback)
	}
	if transcript.Turns[0].Feedback != FeedbackTooHigh {
		t.Errorf("Guess 50 vs secret 42 should be too_high, got %s", transcript.Turns[0].Feedback)
	}
	if transcript.Turns[1].Feedback != FeedbackTooLow {
		t.Errorf("Guess 30 vs secret 42 should be too_low, got %s", transcript.Turns[1].Feedback)
	}
	if transcript.CommitFallback {
		t.Error("Setter answered cleanly; commit fallback should not be flagged")
	}
}

func TestSetterWinsWhenTurnsExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTurns = 3
	cfg.EnableHints = false
	cfg.EnableDialogue = false

	setter := &fakeConverser{responses: []string{"42"}}
	guesser := &fakeConverser{responses: []string{"10", "20", "30"}}

	transcript, err := newTestEngine(t, cfg, setter, guesser).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if transcript.Verdict != VerdictSetterWin {
		t.Errorf("Expected setter_win, got %s", transcript.Verdict)
	}
	if len(transcript.Turns) != 3 {
		t.Errorf("Expected 3 turns, got %d", len(transcript.Turns))
	}
	for _, turn := range transcript.Turns {
		if turn.Feedback == FeedbackCorrect {
			t.Error("No turn should be correct")
		}
	}
}

func TestTotalInferenceFailureStillTerminates(t *testing.T) {
	cfg := testConfig()
	cfg.EnableHints = false
	cfg.EnableDialogue = false

	failure := llm.Transient(errors.New("service down"), "test")
	setter := &fakeConverser{err: failure}
	guesser := &fakeConverser{err: failure}

	transcript, err := newTestEngine(t, cfg, setter, guesser).Run(context.Background())
	if err != nil {
		t.Fatalf("Run should complete despite inference failure: %v", err)
	}

	if !transcript.CommitFallback {
		t.Error("Commit fallback should be flagged")
	}
	if transcript.Secret < cfg.MinValue || transcript.Secret > cfg.MaxValue {
		t.Errorf("Fallback secret %d outside bounds", transcript.Secret)
	}
	// Binary-search fallback over 100 values always lands within 7 guesses.
	if transcript.Verdict != VerdictGuesserWin {
		t.Errorf("Midpoint fallback should find the secret, got %s", transcript.Verdict)
	}
	if len(transcript.Turns) > 7 {
		t.Errorf("Binary search should need at most 7 turns, took %d", len(transcript.Turns))
	}
	for _, turn := range transcript.Turns {
		if !turn.FallbackUsed {
			t.Errorf("Turn %d should be flagged as fallback", turn.Seq)
		}
	}
}

func TestUnparseableGuessFallsBackToMidpoint(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTurns = 1
	cfg.EnableHints = false
	cfg.EnableDialogue = false

	setter := &fakeConverser{responses: []string{"42"}}
	guesser := &fakeConverser{responses: []string{"I am feeling lucky about one hundred and fifty"}}

	transcript, err := newTestEngine(t, cfg, setter, guesser).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	turn := transcript.Turns[0]
	if !turn.FallbackUsed {
		t.Error("Fallback flag should be set")
	}
	if turn.Guess != 50 {
		t.Errorf("Expected midpoint 50, got %d", turn.Guess)
	}
}

func TestContradictoryGuessIsRecordedVerbatim(t *testing.T) {
	cfg := testConfig()
	cfg.EnableHints = false
	cfg.EnableDialogue = false

	// Turn 1's too_high feedback rules out everything above 49, but the
	// model repeats 60 on turn 2. The engine records 60 as the guess made.
	setter := &fakeConverser{responses: []string{"42"}}
	guesser := &fakeConverser{responses: []string{"50", "60", "42"}}

	transcript, err := newTestEngine(t, cfg, setter, guesser).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	second := transcript.Turns[1]
	if second.Guess != 60 {
		t.Errorf("Turn 2 should record the literal guess 60, got %d", second.Guess)
	}
	if second.FallbackUsed {
		t.Error("An in-bounds guess is not a fallback, even when it contradicts feedback")
	}
	if second.Feedback != FeedbackTooHigh {
		t.Errorf("Guess 60 vs secret 42 should be too_high, got %s", second.Feedback)
	}
	if transcript.Verdict != VerdictGuesserWin {
		t.Errorf("Expected guesser_win, got %s", transcript.Verdict)
	}
}

func TestTranscriptIDsDistinctWithinSameSecond(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTurns = 1
	cfg.EnableHints = false
	cfg.EnableDialogue = false

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		setter := &fakeConverser{responses: []string{"42"}}
		guesser := &fakeConverser{responses: []string{"42"}}
		transcript, err := newTestEngine(t, cfg, setter, guesser).Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if seen[transcript.ID] {
			t.Fatalf("Duplicate transcript ID %q in back-to-back games", transcript.ID)
		}
		seen[transcript.ID] = true
	}
}

func TestHintCadenceEverySecondTurn(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTurns = 5
	cfg.EnableHints = true
	cfg.EnableDialogue = false

	setter := &fakeConverser{responses: []string{"99", "getting warmer", "think smaller"}}
	guesser := &fakeConverser{responses: []string{"1", "2", "3", "4", "5"}}

	transcript, err := newTestEngine(t, cfg, setter, guesser).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, turn := range transcript.Turns {
		wantHint := turn.Seq%2 == 0
		gotHint := turn.Hint != ""
		if wantHint != gotHint {
			t.Errorf("Turn %d: hint presence = %v, want %v (hint=%q)", turn.Seq, gotHint, wantHint, turn.Hint)
		}
	}
	if transcript.Turns[1].Hint != "getting warmer" {
		t.Errorf("Unexpected hint on turn 2: %q", transcript.Turns[1].Hint)
	}
}

func TestDialogueCadenceEveryThirdTurnExceptLast(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTurns = 4
	cfg.EnableHints = false
	cfg.EnableDialogue = true

	// Setter queue: commit, then the turn-3 retort.
	setter := &fakeConverser{responses: []string{"99", "you will never find it"}}
	// Guesser queue: guesses for turns 1-3, then the turn-3 analysis, then
	// the turn-4 guess.
	guesser := &fakeConverser{responses: []string{"1", "2", "3", "they are bluffing", "4"}}

	transcript, err := newTestEngine(t, cfg, setter, guesser).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, turn := range transcript.Turns {
		wantDialogue := turn.Seq == 3
		gotDialogue := turn.Dialogue != nil
		if wantDialogue != gotDialogue {
			t.Errorf("Turn %d: dialogue presence = %v, want %v", turn.Seq, gotDialogue, wantDialogue)
		}
	}
	exchange := transcript.Turns[2].Dialogue
	if exchange.Guesser != "they are bluffing" {
		t.Errorf("Unexpected guesser remark: %q", exchange.Guesser)
	}
	if exchange.Setter != "you will never find it" {
		t.Errorf("Unexpected setter remark: %q", exchange.Setter)
	}
	if transcript.Turns[3].Guess != 4 {
		t.Errorf("Turn 4 guess should be 4, got %d", transcript.Turns[3].Guess)
	}
}

func TestNoHintOrDialogueOnWinningTurn(t *testing.T) {
	cfg := testConfig()
	cfg.EnableHints = true
	cfg.EnableDialogue = true

	setter := &fakeConverser{responses: []string{"42", "unused hint"}}
	guesser := &fakeConverser{responses: []string{"50", "42"}}

	transcript, err := newTestEngine(t, cfg, setter, guesser).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	winning := transcript.LastTurn()
	if winning.Feedback != FeedbackCorrect {
		t.Fatalf("Expected winning turn, got %s", winning.Feedback)
	}
	if winning.Hint != "" || winning.Dialogue != nil {
		t.Errorf("Winning turn must carry no hint/dialogue: hint=%q dialogue=%v", winning.Hint, winning.Dialogue)
	}
}

func TestEngineIsSingleUse(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTurns = 1
	cfg.EnableHints = false
	cfg.EnableDialogue = false

	setter := &fakeConverser{responses: []string{"42"}}
	guesser := &fakeConverser{responses: []string{"42"}}
	engine := newTestEngine(t, cfg, setter, guesser)

	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if _, err := engine.Run(context.Background()); err == nil {
		t.Error("Second run on the same engine should fail")
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MinValue = 100
	cfg.MaxValue = 1

	setter := &fakeConverser{}
	guesser := &fakeConverser{}
	_, err := NewEngine(cfg,
		NewAgent(RoleSetter, setter, cfg, nil),
		NewAgent(RoleGuesser, guesser, cfg, nil),
		nil, nil)
	if err == nil {
		t.Error("Expected configuration error")
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testConfig()
	setter := &fakeConverser{responses: []string{"42"}}
	guesser := &fakeConverser{responses: []string{"50"}}
	engine := newTestEngine(t, cfg, setter, guesser)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Run(ctx); err == nil {
		t.Error("Expected cancellation error")
	}
}

func TestOversizedHintIsTruncated(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTurns = 2
	cfg.MaxWords = 3
	cfg.EnableHints = true
	cfg.EnableDialogue = false

	setter := &fakeConverser{responses: []string{"99", "one two three four five six"}}
	guesser := &fakeConverser{responses: []string{"1", "2"}}

	transcript, err := newTestEngine(t, cfg, setter, guesser).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := transcript.Turns[1].Hint; got != "one two three" {
		t.Errorf("Hint should be capped at 3 words, got %q", got)
	}
}
