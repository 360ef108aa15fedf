package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"isl-backend/internal/catalog"
	"isl-backend/internal/quiz"
)

func newTestApp(store *quiz.MemoryProgressStore) *App {
	return &App{
		Catalog: catalog.MustDefault(),
		OpenStore: func(bool) (quiz.ProgressStore, func() error, error) {
			return store, func() error { return nil }, nil
		},
		Seed: func() uint64 { return 1 },
	}
}

func run(t *testing.T, app *App, input string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// answers replays the generator with the same seed and returns one input
// line per question. wrongFirst prefixes a wrong pick on the first question.
func answers(t *testing.T, app *App, moduleID string, seed uint64, wrongFirst bool) string {
	t.Helper()
	module, _ := app.Catalog.ModuleByID(moduleID)
	questions := quiz.Generate(module, app.Catalog.AllItems(), quiz.NewSampler(seed))

	var b strings.Builder
	for i, q := range questions {
		correct := 0
		for j, o := range q.Options {
			if o.ID == q.Target.ID {
				correct = j + 1
			}
		}
		if i == 0 && wrongFirst {
			wrong := 1
			if correct == 1 {
				wrong = 2
			}
			fmt.Fprintf(&b, "%d\n", wrong)
		}
		fmt.Fprintf(&b, "%d\n", correct)
	}
	return b.String()
}

func TestModulesCmd(t *testing.T) {
	out, err := run(t, newTestApp(quiz.NewMemoryProgressStore()), "", "modules")
	if err != nil {
		t.Fatalf("modules: %v", err)
	}
	for _, want := range []string{"alphabets", "greetings-verbs", "months"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSearchCmd(t *testing.T) {
	app := newTestApp(quiz.NewMemoryProgressStore())

	out, _ := run(t, app, "", "search", "eat")
	if !strings.Contains(out, "Eating") || !strings.Contains(out, "/assets/videos/eat.mp4") {
		t.Fatalf("unexpected search output:\n%s", out)
	}

	out, _ = run(t, app, "", "search", "zzzz")
	if !strings.Contains(out, "No signs found.") {
		t.Fatalf("expected empty result message, got:\n%s", out)
	}
}

func TestQuizCmd_PerfectRun(t *testing.T) {
	store := quiz.NewMemoryProgressStore()
	app := newTestApp(store)

	out, err := run(t, app, answers(t, app, "greetings-verbs", 7, false), "quiz", "greetings-verbs", "--seed", "7")
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if !strings.Contains(out, "Score: 4/4") || !strings.Contains(out, "New best score!") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if best, _ := store.GetBestScore(context.Background(), "greetings-verbs"); best != 4 {
		t.Fatalf("expected stored best 4, got %d", best)
	}
}

func TestQuizCmd_WrongGuessCostsThePoint(t *testing.T) {
	store := quiz.NewMemoryProgressStore()
	store.SaveScoreIfBetter(context.Background(), "emotions", 5)
	app := newTestApp(store)

	out, err := run(t, app, answers(t, app, "emotions", 3, true), "quiz", "emotions", "--seed", "3")
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if !strings.Contains(out, "Not quite") || !strings.Contains(out, "Score: 4/5") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "Best so far: 5") {
		t.Fatalf("lower score must keep the old best:\n%s", out)
	}
}

func TestQuizCmd_QuitDoesNotSave(t *testing.T) {
	store := quiz.NewMemoryProgressStore()

	out, err := run(t, newTestApp(store), "q\n", "quiz", "weeks")
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if !strings.Contains(out, "score not saved") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if best, _ := store.GetBestScore(context.Background(), "weeks"); best != 0 {
		t.Fatalf("abandoned quiz must not store a score, got %d", best)
	}
}

func TestQuizCmd_InvalidInput(t *testing.T) {
	out, _ := run(t, newTestApp(quiz.NewMemoryProgressStore()), "abc\n9\n", "quiz", "weeks")
	if strings.Count(out, "Enter a number between 1 and 4") != 2 {
		t.Fatalf("expected two input warnings:\n%s", out)
	}
}

func TestQuizCmd_UnknownModule(t *testing.T) {
	_, err := run(t, newTestApp(quiz.NewMemoryProgressStore()), "", "quiz", "klingon")
	if err == nil || !strings.Contains(err.Error(), "Unknown module") {
		t.Fatalf("expected unknown module error, got %v", err)
	}
}

func TestProgressAndResetCmds(t *testing.T) {
	store := quiz.NewMemoryProgressStore()
	store.SaveScoreIfBetter(context.Background(), "weeks", 6)
	app := newTestApp(store)

	out, err := run(t, app, "", "progress")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if !strings.Contains(out, "Weeks") || !strings.Contains(out, "6") {
		t.Fatalf("unexpected progress output:\n%s", out)
	}

	if _, err := run(t, app, "", "reset", "weeks"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if best, _ := store.GetBestScore(context.Background(), "weeks"); best != 0 {
		t.Fatalf("expected reset score, got %d", best)
	}

	if _, err := run(t, app, "", "reset", "klingon"); err == nil {
		t.Fatalf("expected error for unknown module")
	}
}
