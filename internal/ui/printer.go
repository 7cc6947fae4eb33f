// Package ui renders game events for the terminal. Pure presentation:
// nothing here feeds back into game state.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/numwits/numwits/internal/game"
)

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Padding(0, 2).Border(lipgloss.DoubleBorder())
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	setterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	guesserStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Italic(true)
	winStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	loseStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Printer renders game events. It implements game.Observer.
type Printer struct {
	w io.Writer
}

// NewPrinter renders to stdout.
func NewPrinter() *Printer {
	return &Printer{w: os.Stdout}
}

// NewPrinterTo renders to the given writer.
func NewPrinterTo(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Banner prints the program header once at startup.
func (p *Printer) Banner() {
	fmt.Fprintln(p.w, bannerStyle.Render("NUMWITS — two agents, one secret number"))
	fmt.Fprintln(p.w)
}

func (p *Printer) section(title string) {
	rule := strings.Repeat("─", 46)
	fmt.Fprintf(p.w, "%s\n%s\n", sectionStyle.Render(rule), sectionStyle.Render(title))
}

// GameStarted implements game.Observer
func (p *Printer) GameStarted(cfg game.Config) {
	p.section("GAME START")
	fmt.Fprintln(p.w, infoStyle.Render(fmt.Sprintf("Range %d-%d, %d guesses", cfg.MinValue, cfg.MaxValue, cfg.MaxTurns)))
}

// SecretCommitted implements game.Observer
func (p *Printer) SecretCommitted(fallback bool) {
	line := "The setter has chosen a secret number."
	if fallback {
		line += " (sampled after an unusable response)"
	}
	fmt.Fprintln(p.w, setterStyle.Render(line))
}

// TurnStarted implements game.Observer
func (p *Printer) TurnStarted(seq int) {
	p.section(fmt.Sprintf("ROUND %d", seq))
}

// GuessMade implements game.Observer
func (p *Printer) GuessMade(_ int, guess int, fallback bool) {
	line := fmt.Sprintf("Guesser's guess: %d", guess)
	if fallback {
		line += dimStyle.Render(" (binary-search fallback)")
	}
	fmt.Fprintln(p.w, guesserStyle.Render(line))
}

// FeedbackGiven implements game.Observer
func (p *Printer) FeedbackGiven(fb game.Feedback) {
	var msg string
	switch fb {
	case game.FeedbackCorrect:
		msg = "Correct!"
	case game.FeedbackTooLow:
		msg = "Too low!"
	case game.FeedbackTooHigh:
		msg = "Too high!"
	}
	fmt.Fprintln(p.w, infoStyle.Render("Feedback: "+msg))
}

// HintGiven implements game.Observer
func (p *Printer) HintGiven(hint string) {
	fmt.Fprintln(p.w, hintStyle.Render("Setter's hint: "+hint))
}

// DialogueSpoken implements game.Observer
func (p *Printer) DialogueSpoken(role game.Role, text string) {
	if role == game.RoleSetter {
		fmt.Fprintln(p.w, setterStyle.Render("Setter: "+text))
		return
	}
	fmt.Fprintln(p.w, guesserStyle.Render("Guesser: "+text))
}

// GameEnded implements game.Observer
func (p *Printer) GameEnded(t *game.Transcript) {
	p.section("GAME OVER")

	if t.Verdict == game.VerdictGuesserWin {
		fmt.Fprintln(p.w, winStyle.Render("GUESSER WINS!"))
		fmt.Fprintln(p.w, guesserStyle.Render(fmt.Sprintf("  Correct number: %d", t.Secret)))
		fmt.Fprintln(p.w, guesserStyle.Render(fmt.Sprintf("  Guesses used: %d/%d", len(t.Turns), t.Config.MaxTurns)))
	} else {
		fmt.Fprintln(p.w, loseStyle.Render("SETTER WINS!"))
		fmt.Fprintln(p.w, setterStyle.Render(fmt.Sprintf("  Secret number %d was never found", t.Secret)))
		fmt.Fprintln(p.w, setterStyle.Render(fmt.Sprintf("  All %d guesses exhausted", t.Config.MaxTurns)))
	}
	fmt.Fprintln(p.w, infoStyle.Render(fmt.Sprintf("Duration: %s", t.Duration().Round(time.Second))))

	fmt.Fprintln(p.w, sectionStyle.Render("Guess history:"))
	for _, turn := range t.Turns {
		marker := "→"
		if turn.Feedback == game.FeedbackCorrect {
			marker = "✓"
		}
		fmt.Fprintf(p.w, "  Round %d: %d %s %s\n", turn.Seq, turn.Guess, marker, turn.Feedback)
	}
	fmt.Fprintln(p.w)
}
