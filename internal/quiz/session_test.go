package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"isl-backend/internal/models"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, n int) *Session {
	t.Helper()
	items := makeItems("q", "Cat", n, true)
	module := models.Module{ID: "mod", Items: items}
	return NewSession(module.ID, Generate(module, items, NewSampler(1)), time.Second)
}

func wrongOption(q Question) string {
	for _, o := range q.Options {
		if o.ID != q.Target.ID {
			return o.ID
		}
	}
	return ""
}

func TestSubmit_CorrectRegardlessOfOrder(t *testing.T) {
	for seed := uint64(0); seed < 10; seed++ {
		items := makeItems("q", "Cat", 6, true)
		module := models.Module{ID: "mod", Items: items}
		s := NewSession("mod", Generate(module, items, NewSampler(seed)), time.Second)

		q, _, _ := s.CurrentQuestion()
		out, err := s.Submit(q.Target.ID, t0)
		if err != nil {
			t.Fatalf("seed %d: Submit error: %v", seed, err)
		}
		if !out.Correct || !out.Credited {
			t.Fatalf("seed %d: expected credited correct answer, got %+v", seed, out)
		}
	}
}

func TestSubmit_WrongThenRight(t *testing.T) {
	s := newTestSession(t, 4)
	q, _, _ := s.CurrentQuestion()
	wrong := wrongOption(q)

	out, err := s.Submit(wrong, t0)
	if err != nil {
		t.Fatalf("Submit wrong: %v", err)
	}
	if out.Correct {
		t.Fatalf("expected wrong answer")
	}
	_, st, _ := s.CurrentQuestion()
	if !st.GuessedWrong || len(st.Disabled) != 1 || st.Disabled[0] != wrong {
		t.Fatalf("unexpected state after wrong guess: %+v", st)
	}

	if _, err := s.Submit(wrong, t0); !errors.Is(err, ErrOptionDisabled) {
		t.Fatalf("expected ErrOptionDisabled, got %v", err)
	}

	out, err = s.Submit(q.Target.ID, t0)
	if err != nil {
		t.Fatalf("Submit right: %v", err)
	}
	if !out.Correct || out.Credited {
		t.Fatalf("expected uncredited correct answer, got %+v", out)
	}
	if s.Score != 0 {
		t.Fatalf("expected score 0, got %d", s.Score)
	}

	s.Advance()
	if s.Current != 1 {
		t.Fatalf("question count should advance, current=%d", s.Current)
	}
}

func TestSubmit_AdvanceDelay(t *testing.T) {
	s := newTestSession(t, 4)
	q, _, _ := s.CurrentQuestion()

	out, err := s.Submit(q.Target.ID, t0)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !out.AdvanceAt.Equal(t0.Add(time.Second)) {
		t.Fatalf("expected advance at %v, got %v", t0.Add(time.Second), out.AdvanceAt)
	}

	next := s.Questions[1]
	if _, err := s.Submit(next.Target.ID, t0.Add(500*time.Millisecond)); !errors.Is(err, ErrAdvancePending) {
		t.Fatalf("expected ErrAdvancePending during delay, got %v", err)
	}
	if s.Sync(t0.Add(999 * time.Millisecond)) {
		t.Fatalf("Sync should not advance before the deadline")
	}

	out, err = s.Submit(next.Target.ID, t0.Add(time.Second))
	if err != nil {
		t.Fatalf("Submit after delay: %v", err)
	}
	if !out.Correct || s.Current != 1 || s.Score != 2 {
		t.Fatalf("unexpected state: current=%d score=%d out=%+v", s.Current, s.Score, out)
	}
}

func TestSubmit_UnknownOption(t *testing.T) {
	s := newTestSession(t, 4)
	if _, err := s.Submit("not-an-option", t0); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
}

func TestSession_FinishesOnLastQuestion(t *testing.T) {
	s := newTestSession(t, 3)
	now := t0

	for i := 0; i < 3; i++ {
		q, _, ok := s.CurrentQuestion()
		if !ok {
			t.Fatalf("question %d missing", i)
		}
		out, err := s.Submit(q.Target.ID, now)
		if err != nil {
			t.Fatalf("question %d: %v", i, err)
		}
		if i == 2 {
			if !out.Finished || !out.AdvanceAt.IsZero() {
				t.Fatalf("last answer should finish without delay, got %+v", out)
			}
		}
		now = now.Add(2 * time.Second)
	}

	if !s.Finished || s.Score != 3 {
		t.Fatalf("expected finished session with score 3, got finished=%v score=%d", s.Finished, s.Score)
	}
	if _, _, ok := s.CurrentQuestion(); ok {
		t.Fatalf("finished session should have no current question")
	}
	if _, err := s.Submit("q-0", now); !errors.Is(err, ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished, got %v", err)
	}
}

func TestSession_Empty(t *testing.T) {
	s := NewSession("empty", nil, time.Second)
	if !s.Finished || s.Score != 0 {
		t.Fatalf("empty session should be finished with score 0")
	}

	store := NewMemoryProgressStore()
	if _, err := Report(context.Background(), store, s); err != nil {
		t.Fatalf("Report: %v", err)
	}
	best, _ := store.GetBestScore(context.Background(), "empty")
	if best != 0 {
		t.Fatalf("expected best 0, got %d", best)
	}
}

func TestReport_RequiresFinishedSession(t *testing.T) {
	s := newTestSession(t, 3)
	if _, err := Report(context.Background(), NewMemoryProgressStore(), s); !errors.Is(err, ErrSessionNotFinished) {
		t.Fatalf("expected ErrSessionNotFinished, got %v", err)
	}
}
