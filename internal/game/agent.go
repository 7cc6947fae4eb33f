package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/numwits/numwits/pkg/llm"
)

var roleNames = map[Role]string{
	RoleSetter:  "Number Setter",
	RoleGuesser: "Number Guesser",
}

var roleDescriptions = map[Role]string{
	RoleSetter: `You are the Number Setter. Your goal is to choose a secret number and prevent the guesser from finding it.
Strategy:
1. Choose a number that's not too obvious (avoid 1, 100, 50)
2. When giving hints, be clever but not too helpful
3. Analyze the guesser's reasoning to understand their strategy
4. You can use psychological tactics to misdirect`,

	RoleGuesser: `You are the Number Guesser. Your goal is to deduce the secret number through logical reasoning.
Strategy:
1. Use binary search strategy initially
2. Analyze the setter's hints and responses
3. Look for patterns in their feedback
4. Adjust your strategy based on their psychology`,
}

// Agent is one side of the duel. Both roles share the same shape; the Role
// field selects the prompt strategy, not a subtype.
type Agent struct {
	role Role
	conv llm.Converser
	cfg  Config

	// history is the formatted lesson list loaded from the experience
	// store, injected verbatim into the system context.
	history []string
}

// NewAgent constructs an agent for role with its inference handle and
// loaded lesson history.
func NewAgent(role Role, conv llm.Converser, cfg Config, history []string) *Agent {
	return &Agent{
		role:    role,
		conv:    conv,
		cfg:     cfg,
		history: history,
	}
}

// Role returns which side this agent plays.
func (a *Agent) Role() Role { return a.role }

// SystemContext assembles the role identity, game rules, and past-game
// lessons into the system prompt for every exchange.
func (a *Agent) SystemContext() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are playing a Number Guessing Game.\n\n")
	fmt.Fprintf(&sb, "Role: %s\n%s\n\n", roleNames[a.role], roleDescriptions[a.role])
	fmt.Fprintf(&sb, "Game Rules:\n")
	fmt.Fprintf(&sb, "- Secret number is between %d and %d\n", a.cfg.MinValue, a.cfg.MaxValue)
	fmt.Fprintf(&sb, "- Maximum %d guesses allowed\n", a.cfg.MaxTurns)
	fmt.Fprintf(&sb, "- After each guess, the guesser gets feedback (too high/too low/correct)\n")

	if a.cfg.EnableMemory && len(a.history) > 0 {
		fmt.Fprintf(&sb, "\nLessons from your past games:\n")
		for _, lesson := range a.history {
			fmt.Fprintf(&sb, "- %s\n", lesson)
		}
	}

	sb.WriteString("\nImportant: Be strategic, logical, and creative in your approach.")
	return sb.String()
}

// Converse sends one prompt under this agent's system context.
func (a *Agent) Converse(ctx context.Context, prompt string) (string, error) {
	return a.conv.Converse(ctx, a.SystemContext(), prompt, a.cfg.Creativity)
}

// CommitPrompt asks the setter to choose the secret.
func (a *Agent) CommitPrompt() string {
	return fmt.Sprintf(`Choose a secret number between %d and %d.

Consider:
1. Don't choose obvious numbers (the bounds, the exact middle, round values)
2. Think about psychological factors
3. Consider how the guesser might approach the problem

Output only the number, no additional text.`, a.cfg.MinValue, a.cfg.MaxValue)
}

// GuessPrompt asks the guesser for its next number given the turn log.
func (a *Agent) GuessPrompt(turns []Turn) string {
	var history strings.Builder
	for _, turn := range turns {
		fmt.Fprintf(&history, "Guess %d: %d → %s\n", turn.Seq, turn.Guess, feedbackPhrase(turn.Feedback))
		if turn.Hint != "" {
			fmt.Fprintf(&history, "  Setter's hint: %s\n", turn.Hint)
		}
	}
	if history.Len() == 0 {
		history.WriteString("(no guesses yet)\n")
	}

	return fmt.Sprintf(`You are trying to guess a number between %d and %d.

Previous guesses and feedback:
%s
Your strategy should consider:
1. Mathematical reasoning (binary search, probability)
2. Psychological analysis of the setter
3. Pattern recognition in their responses
4. You have %d guesses remaining

Make your next guess (output only the number):`,
		a.cfg.MinValue, a.cfg.MaxValue, history.String(), a.cfg.MaxTurns-len(turns))
}

// HintPrompt asks the setter for a bounded strategic hint after a miss.
func (a *Agent) HintPrompt(secret, lastGuess int) string {
	return fmt.Sprintf(`The guesser just guessed %d. Your secret number is %d.

Provide a hint that:
1. Is truthful but not too revealing — never state the exact number
2. Uses psychological tactics
3. Might misdirect their next guess
4. Maximum %d words

Your hint:`, lastGuess, secret, a.cfg.MaxWords)
}

// RetortPrompt asks the setter for a short reply to the guesser's remark.
func (a *Agent) RetortPrompt(analysis string) string {
	return fmt.Sprintf(`The guesser just said to you:

"%s"

Reply with one strategic remark. You may taunt, deflect, or sow doubt, but
never state the secret number. Maximum %d words.

Your reply:`, analysis, a.cfg.MaxWords)
}

// AnalysisPrompt asks the guesser to read the setter's tactics from the
// hints given so far.
func (a *Agent) AnalysisPrompt(hints []string) string {
	var sb strings.Builder
	for i, hint := range hints {
		fmt.Fprintf(&sb, "Hint %d: %s\n", i+1, hint)
	}
	if sb.Len() == 0 {
		sb.WriteString("(no hints yet)\n")
	}

	return fmt.Sprintf(`Analyze the setter's strategy based on these hints:

%s
Provide your analysis (max %d words):
1. What psychological tactics are they using?
2. Are they trying to misdirect you?
3. How should you adjust your strategy?`, sb.String(), a.cfg.MaxWords)
}

func feedbackPhrase(fb Feedback) string {
	switch fb {
	case FeedbackTooLow:
		return "too low"
	case FeedbackTooHigh:
		return "too high"
	case FeedbackCorrect:
		return "correct!"
	default:
		return string(fb)
	}
}
