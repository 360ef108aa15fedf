package repository

import (
	"context"
	"testing"

	"isl-backend/internal/database"
	"isl-backend/internal/quiz"
)

func newSQLiteStore(t *testing.T) *SQLiteProgressStore {
	t.Helper()
	db, err := database.OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLiteProgressStore(db)
	if err != nil {
		t.Fatalf("NewSQLiteProgressStore: %v", err)
	}
	return store
}

func TestSQLiteProgressStore_BestOf(t *testing.T) {
	ctx := context.Background()
	var store quiz.ProgressStore = newSQLiteStore(t)

	if changed, err := store.SaveScoreIfBetter(ctx, "alphabets", 5); err != nil || !changed {
		t.Fatalf("first save: changed=%v err=%v", changed, err)
	}
	if changed, err := store.SaveScoreIfBetter(ctx, "alphabets", 3); err != nil || changed {
		t.Fatalf("lower save: changed=%v err=%v", changed, err)
	}
	if changed, _ := store.SaveScoreIfBetter(ctx, "alphabets", 5); changed {
		t.Fatalf("equal score must not count as a change")
	}

	best, err := store.GetBestScore(ctx, "alphabets")
	if err != nil {
		t.Fatalf("GetBestScore: %v", err)
	}
	if best != 5 {
		t.Fatalf("expected best 5, got %d", best)
	}

	if changed, _ := store.SaveScoreIfBetter(ctx, "alphabets", 9); !changed {
		t.Fatalf("higher score should replace the best")
	}
}

func TestSQLiteProgressStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	store.SaveScoreIfBetter(ctx, "weeks", 6)
	store.SaveScoreIfBetter(ctx, "months", 2)

	if err := store.ResetScore(ctx, "weeks"); err != nil {
		t.Fatalf("ResetScore: %v", err)
	}

	if best, _ := store.GetBestScore(ctx, "weeks"); best != 0 {
		t.Errorf("reset module should report 0, got %d", best)
	}
	if best, _ := store.GetBestScore(ctx, "months"); best != 2 {
		t.Errorf("expected months=2, got %d", best)
	}
	if best, _ := store.GetBestScore(ctx, "unknown"); best != 0 {
		t.Errorf("missing module should report 0, got %d", best)
	}
	if changed, _ := store.SaveScoreIfBetter(ctx, "weeks", 1); !changed {
		t.Errorf("any positive score should be stored after a reset")
	}
}
