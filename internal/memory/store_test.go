package memory

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/numwits/numwits/internal/game"
	"github.com/numwits/numwits/pkg/llm"
)

type fakeConverser struct {
	response string
	err      error
	calls    int
}

func (f *fakeConverser) Converse(_ context.Context, _, _ string, _ float64) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeConverser) ModelID() string { return "fake" }

func sampleTranscript() *game.Transcript {
	return &game.Transcript{
		ID:     "20260829_120000",
		Config: game.Config{MinValue: 1, MaxValue: 100, MaxTurns: 10, MaxWords: 150},
		Secret: 42,
		Turns: []game.Turn{
			{Seq: 1, Guess: 50, Feedback: game.FeedbackTooHigh},
			{Seq: 2, Guess: 25, Feedback: game.FeedbackTooLow},
			{Seq: 3, Guess: 42, Feedback: game.FeedbackCorrect},
		},
		Verdict:   game.VerdictGuesserWin,
		StartedAt: time.Now().Add(-time.Minute),
		EndedAt:   time.Now(),
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	store := NewStore(t.TempDir(), 5, nil)

	mem, err := store.Load(game.RoleSetter)
	if err != nil {
		t.Fatalf("Missing file should not error: %v", err)
	}
	if len(mem.Lessons) != 0 {
		t.Errorf("Expected empty memory, got %d lessons", len(mem.Lessons))
	}
	if mem.Role != game.RoleSetter {
		t.Errorf("Role should be set, got %q", mem.Role)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), 5, nil)

	mem := RoleMemory{Role: game.RoleGuesser, Lessons: []Lesson{
		{Text: "binary search works", Outcome: game.VerdictGuesserWin, Turns: 5, Timestamp: time.Now()},
	}}
	if err := store.Save(game.RoleGuesser, mem); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(game.RoleGuesser)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Lessons) != 1 {
		t.Fatalf("Expected 1 lesson, got %d", len(loaded.Lessons))
	}
	if loaded.Lessons[0].Text != "binary search works" {
		t.Errorf("Unexpected lesson text: %q", loaded.Lessons[0].Text)
	}
}

func TestFailedSaveLeavesPreviousFileIntact(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not bind root")
	}
	dir := t.TempDir()
	store := NewStore(dir, 5, nil)

	mem := RoleMemory{Role: game.RoleGuesser, Lessons: []Lesson{
		{Text: "first lesson", Outcome: game.VerdictGuesserWin, Turns: 4},
	}}
	if err := store.Save(game.RoleGuesser, mem); err != nil {
		t.Fatalf("Initial save failed: %v", err)
	}

	// A read-only directory makes the temp-file creation fail before the
	// rename, so the previous file must survive untouched.
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0o755)

	mem.Lessons = append(mem.Lessons, Lesson{Text: "second lesson"})
	if err := store.Save(game.RoleGuesser, mem); err == nil {
		t.Fatal("Save should fail when the temp file cannot be created")
	}

	loaded, err := store.Load(game.RoleGuesser)
	if err != nil {
		t.Fatalf("Previous file should still load: %v", err)
	}
	if len(loaded.Lessons) != 1 || loaded.Lessons[0].Text != "first lesson" {
		t.Errorf("Previous memory corrupted by failed save: %+v", loaded.Lessons)
	}
}

func TestFIFOTrimKeepsLastLessons(t *testing.T) {
	store := NewStore(t.TempDir(), 5, nil)

	mem := RoleMemory{Role: game.RoleSetter}
	for i := 1; i <= 7; i++ {
		mem.Lessons = append(mem.Lessons, Lesson{Text: fmt.Sprintf("lesson %d", i)})
		if err := store.Save(game.RoleSetter, mem); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
		loaded, err := store.Load(game.RoleSetter)
		if err != nil {
			t.Fatalf("Load %d failed: %v", i, err)
		}
		if len(loaded.Lessons) > 5 {
			t.Fatalf("Cap exceeded after %d saves: %d lessons", i, len(loaded.Lessons))
		}
		mem = loaded
	}

	final, err := store.Load(game.RoleSetter)
	if err != nil {
		t.Fatal(err)
	}
	if len(final.Lessons) != 5 {
		t.Fatalf("Expected exactly 5 lessons, got %d", len(final.Lessons))
	}
	for i, lesson := range final.Lessons {
		want := fmt.Sprintf("lesson %d", i+3)
		if lesson.Text != want {
			t.Errorf("Lesson %d = %q, want %q (oldest should be evicted first)", i, lesson.Text, want)
		}
	}
}

func TestExtractLessonUsesModelWhenAvailable(t *testing.T) {
	conv := &fakeConverser{response: "Open away from the midpoint to dodge binary search."}
	store := NewStore(t.TempDir(), 5, conv)

	lesson := store.ExtractLesson(context.Background(), sampleTranscript(), game.RoleSetter)
	if conv.calls != 1 {
		t.Errorf("Expected 1 summarizer call, got %d", conv.calls)
	}
	if lesson.Text != "Open away from the midpoint to dodge binary search." {
		t.Errorf("Unexpected lesson: %q", lesson.Text)
	}
	if lesson.Outcome != game.VerdictGuesserWin || lesson.Turns != 3 {
		t.Errorf("Structured fields wrong: outcome=%s turns=%d", lesson.Outcome, lesson.Turns)
	}
}

func TestExtractLessonFallsBackToTemplate(t *testing.T) {
	conv := &fakeConverser{err: llm.Transient(errors.New("down"), "test")}
	store := NewStore(t.TempDir(), 5, conv)

	lesson := store.ExtractLesson(context.Background(), sampleTranscript(), game.RoleGuesser)
	if lesson.Text == "" {
		t.Fatal("Fallback lesson must not be empty")
	}
	if !strings.Contains(lesson.Text, "3 of 10 turns") {
		t.Errorf("Template should cite turn counts, got %q", lesson.Text)
	}
}

func TestExtractLessonWithoutSummarizer(t *testing.T) {
	store := NewStore(t.TempDir(), 5, nil)

	lesson := store.ExtractLesson(context.Background(), sampleTranscript(), game.RoleSetter)
	if lesson.Text == "" {
		t.Fatal("Template lesson must not be empty")
	}
	if !strings.Contains(lesson.Text, "42") {
		t.Errorf("Setter template should cite the found secret, got %q", lesson.Text)
	}
}

func TestRecordAppendsAndPersists(t *testing.T) {
	store := NewStore(t.TempDir(), 5, nil)

	if err := store.Record(context.Background(), sampleTranscript(), game.RoleGuesser); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	mem, err := store.Load(game.RoleGuesser)
	if err != nil {
		t.Fatal(err)
	}
	if len(mem.Lessons) != 1 {
		t.Fatalf("Expected 1 lesson, got %d", len(mem.Lessons))
	}
}

func TestFormatHistory(t *testing.T) {
	mem := RoleMemory{Role: game.RoleGuesser, Lessons: []Lesson{
		{Text: "start near 50", Outcome: game.VerdictGuesserWin, Turns: 4},
		{Text: "watch for misdirection", Outcome: game.VerdictSetterWin, Turns: 10},
	}}

	lines := FormatHistory(mem)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "Game 1 (guesser_win, 4 turns): start near 50" {
		t.Errorf("Unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "watch for misdirection") {
		t.Errorf("Unexpected second line: %q", lines[1])
	}
}
