// Package memory is the experience store: it distills finished games into
// short per-role lessons and persists a FIFO-capped history of them, which
// agents carry into future games as context.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/numwits/numwits/internal/game"
	"github.com/numwits/numwits/pkg/llm"
	pkgLogger "github.com/numwits/numwits/pkg/logger"
)

var storeLogger = pkgLogger.NewComponentLogger("memory")

// Lesson is one durable takeaway from a finished game.
type Lesson struct {
	Text      string       `json:"experience"`
	Outcome   game.Verdict `json:"outcome"`
	Turns     int          `json:"turns"`
	Timestamp time.Time    `json:"timestamp"`
}

// RoleMemory is the ordered, length-capped lesson history for one role.
type RoleMemory struct {
	Role    game.Role `json:"role"`
	Lessons []Lesson  `json:"lessons"`
}

// Store owns the durable representation of role memory. It is the sole
// writer of the per-role files; agents only ever see formatted copies.
type Store struct {
	dir      string
	maxGames int
	conv     llm.Converser // may be nil; lesson extraction then always uses the template
}

// NewStore creates a store rooted at dir, trimming each role's history to
// maxGames. conv is the summarizer used for lesson extraction.
func NewStore(dir string, maxGames int, conv llm.Converser) *Store {
	return &Store{dir: dir, maxGames: maxGames, conv: conv}
}

func (s *Store) path(role game.Role) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_memory.json", role))
}

// Load reads the persisted memory for role. A missing file is an empty
// memory, not an error.
func (s *Store) Load(role game.Role) (RoleMemory, error) {
	mem := RoleMemory{Role: role}

	data, err := os.ReadFile(s.path(role))
	if err != nil {
		if os.IsNotExist(err) {
			return mem, nil
		}
		return mem, errors.Wrapf(err, "failed to read memory for %s", role)
	}
	if err := json.Unmarshal(data, &mem); err != nil {
		return RoleMemory{Role: role}, errors.Wrapf(err, "corrupt memory file for %s", role)
	}
	mem.Role = role
	return mem, nil
}

// Save persists mem after trimming the oldest lessons down to the cap. The
// write goes through a temp file in the same directory and a rename, so a
// crash mid-write never corrupts the previous file.
func (s *Store) Save(role game.Role, mem RoleMemory) error {
	if over := len(mem.Lessons) - s.maxGames; over > 0 {
		mem.Lessons = append([]Lesson(nil), mem.Lessons[over:]...)
	}
	mem.Role = role

	data, err := json.MarshalIndent(mem, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode memory")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create memory directory")
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".%s_memory-*.json", role))
	if err != nil {
		return errors.Wrap(err, "failed to create temp memory file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to write memory")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to sync memory")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to close temp memory file")
	}

	if err := os.Rename(tmpName, s.path(role)); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to replace memory file")
	}
	return nil
}

// Record extracts a lesson from the transcript and appends it to role's
// persisted memory.
func (s *Store) Record(ctx context.Context, t *game.Transcript, role game.Role) error {
	lesson := s.ExtractLesson(ctx, t, role)

	mem, err := s.Load(role)
	if err != nil {
		// Start fresh rather than lose the game's lesson to a corrupt file.
		storeLogger.Warn("Resetting unreadable role memory", "role", role, "error", err)
		mem = RoleMemory{Role: role}
	}
	mem.Lessons = append(mem.Lessons, lesson)
	return s.Save(role, mem)
}

// ExtractLesson summarizes the transcript from role's perspective. The
// summarizer call is best-effort; on any failure the lesson degrades to a
// template built from structured transcript fields.
func (s *Store) ExtractLesson(ctx context.Context, t *game.Transcript, role game.Role) Lesson {
	lesson := Lesson{
		Outcome:   t.Verdict,
		Turns:     len(t.Turns),
		Timestamp: time.Now(),
	}

	if s.conv != nil {
		text, err := s.conv.Converse(ctx, extractionContext(role), extractionPrompt(t, role), 0.3)
		if err == nil && text != "" {
			lesson.Text = game.TruncateWords(text, 60)
			return lesson
		}
		if err != nil {
			storeLogger.Warn("Lesson extraction failed, using template", "role", role, "error", err)
		}
	}

	lesson.Text = templatedLesson(t, role)
	return lesson
}

// FormatHistory renders lessons as the short lines agents receive in their
// system context, oldest first.
func FormatHistory(mem RoleMemory) []string {
	lines := make([]string, 0, len(mem.Lessons))
	for i, lesson := range mem.Lessons {
		lines = append(lines, fmt.Sprintf("Game %d (%s, %d turns): %s", i+1, lesson.Outcome, lesson.Turns, lesson.Text))
	}
	return lines
}

func extractionContext(role game.Role) string {
	return fmt.Sprintf("You review number-guessing games and extract one short lesson for the %s to apply next game. Answer with a single sentence.", role)
}

func extractionPrompt(t *game.Transcript, role game.Role) string {
	won := "lost"
	if (role == game.RoleGuesser) == (t.Verdict == game.VerdictGuesserWin) {
		won = "won"
	}
	return fmt.Sprintf(
		"The %s %s. Secret was %d in [%d, %d]; the game took %d of %d turns. What is the one lesson the %s should remember?",
		role, won, t.Secret, t.Config.MinValue, t.Config.MaxValue, len(t.Turns), t.Config.MaxTurns, role)
}

// templatedLesson builds the deterministic fallback from structured fields only.
func templatedLesson(t *game.Transcript, role game.Role) string {
	switch t.Verdict {
	case game.VerdictGuesserWin:
		if role == game.RoleGuesser {
			return fmt.Sprintf("Won in %d of %d turns; the narrowing strategy worked.", len(t.Turns), t.Config.MaxTurns)
		}
		return fmt.Sprintf("Secret %d was found in %d turns; pick less predictable values.", t.Secret, len(t.Turns))
	default:
		if role == game.RoleGuesser {
			return fmt.Sprintf("Failed to find the secret in %d turns; tighten the search.", t.Config.MaxTurns)
		}
		return fmt.Sprintf("Secret %d survived all %d turns.", t.Secret, t.Config.MaxTurns)
	}
}
