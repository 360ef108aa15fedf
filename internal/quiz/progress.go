package quiz

import (
	"context"
	"errors"
	"sync"
)

// ProgressStore persists the best quiz score per module for one learner.
type ProgressStore interface {
	GetBestScore(ctx context.Context, moduleID string) (int, error)
	// SaveScoreIfBetter stores score only when it is strictly greater than
	// the stored best. It reports whether the stored value changed.
	SaveScoreIfBetter(ctx context.Context, moduleID string, score int) (bool, error)
	ResetScore(ctx context.Context, moduleID string) error
}

var ErrSessionNotFinished = errors.New("quiz session is not finished")

// Report sends the final score of a finished session to store.
func Report(ctx context.Context, store ProgressStore, s *Session) (bool, error) {
	if !s.Finished {
		return false, ErrSessionNotFinished
	}
	return store.SaveScoreIfBetter(ctx, s.ModuleID, s.Score)
}

type MemoryProgressStore struct {
	mu     sync.Mutex
	scores map[string]int
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{scores: make(map[string]int)}
}

func (m *MemoryProgressStore) GetBestScore(ctx context.Context, moduleID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scores[moduleID], nil
}

func (m *MemoryProgressStore) SaveScoreIfBetter(ctx context.Context, moduleID string, score int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if score <= m.scores[moduleID] {
		return false, nil
	}
	m.scores[moduleID] = score
	return true, nil
}

func (m *MemoryProgressStore) ResetScore(ctx context.Context, moduleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scores, moduleID)
	return nil
}
