package game

import (
	"strings"
	"testing"
)

func TestSystemContextIncludesRulesAndRole(t *testing.T) {
	cfg := testConfig()
	agent := NewAgent(RoleSetter, &fakeConverser{}, cfg, nil)

	ctx := agent.SystemContext()
	if !strings.Contains(ctx, "Number Setter") {
		t.Error("System context should name the role")
	}
	if !strings.Contains(ctx, "between 1 and 100") {
		t.Error("System context should state the range")
	}
	if !strings.Contains(ctx, "Maximum 10 guesses") {
		t.Error("System context should state the turn budget")
	}
	if strings.Contains(ctx, "Lessons from your past games") {
		t.Error("No lesson section without history")
	}
}

func TestSystemContextInjectsHistory(t *testing.T) {
	cfg := testConfig()
	cfg.EnableMemory = true
	history := []string{
		"Game 1 (setter_win): survived 10 turns with secret 83",
		"Game 2 (guesser_win): found in 5 turns",
	}
	agent := NewAgent(RoleGuesser, &fakeConverser{}, cfg, history)

	ctx := agent.SystemContext()
	for _, lesson := range history {
		if !strings.Contains(ctx, "- "+lesson) {
			t.Errorf("System context missing lesson bullet %q", lesson)
		}
	}
}

func TestSystemContextOmitsHistoryWhenMemoryDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EnableMemory = false
	agent := NewAgent(RoleGuesser, &fakeConverser{}, cfg, []string{"old lesson"})

	if strings.Contains(agent.SystemContext(), "old lesson") {
		t.Error("Lessons must not leak into context when memory is disabled")
	}
}

func TestGuessPromptRendersTurnLog(t *testing.T) {
	cfg := testConfig()
	agent := NewAgent(RoleGuesser, &fakeConverser{}, cfg, nil)

	turns := []Turn{
		{Seq: 1, Guess: 50, Feedback: FeedbackTooLow},
		{Seq: 2, Guess: 75, Feedback: FeedbackTooHigh, Hint: "look lower"},
	}
	prompt := agent.GuessPrompt(turns)

	if !strings.Contains(prompt, "Guess 1: 50 → too low") {
		t.Error("Prompt should render first turn with direction")
	}
	if !strings.Contains(prompt, "Guess 2: 75 → too high") {
		t.Error("Prompt should render second turn with direction")
	}
	if !strings.Contains(prompt, "Setter's hint: look lower") {
		t.Error("Prompt should include the recorded hint")
	}
	if !strings.Contains(prompt, "8 guesses remaining") {
		t.Error("Prompt should state remaining budget")
	}
}

func TestHintPromptWithholdsNothingFromSetter(t *testing.T) {
	cfg := testConfig()
	agent := NewAgent(RoleSetter, &fakeConverser{}, cfg, nil)

	prompt := agent.HintPrompt(42, 50)
	if !strings.Contains(prompt, "secret number is 42") {
		t.Error("Setter owns the secret; the hint prompt must include it")
	}
	if !strings.Contains(prompt, "guessed 50") {
		t.Error("Hint prompt should reference the last guess")
	}
	if !strings.Contains(prompt, "Maximum 150 words") {
		t.Error("Hint prompt should carry the word cap")
	}
}

func TestRetortPromptQuotesGuesserRemark(t *testing.T) {
	cfg := testConfig()
	agent := NewAgent(RoleSetter, &fakeConverser{}, cfg, nil)

	prompt := agent.RetortPrompt("you are hiding it near the top")
	if !strings.Contains(prompt, `"you are hiding it near the top"`) {
		t.Error("Retort prompt should quote the guesser's remark verbatim")
	}
	if !strings.Contains(prompt, "never state the secret number") {
		t.Error("Retort prompt must forbid revealing the secret")
	}
	if !strings.Contains(prompt, "Maximum 150 words") {
		t.Error("Retort prompt should carry the word cap")
	}
}
