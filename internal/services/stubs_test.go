package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"isl-backend/internal/models"
	"isl-backend/internal/quiz"
	"isl-backend/internal/repository"
)

// memorySessionStore round-trips sessions through JSON like the Redis store.
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID][]byte
	locks    map[uuid.UUID]chan struct{}
	saveErr  error
	lockErr  error
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{
		sessions: make(map[uuid.UUID][]byte),
		locks:    make(map[uuid.UUID]chan struct{}),
	}
}

func (m *memorySessionStore) Lock(ctx context.Context, id uuid.UUID) (func(), error) {
	if m.lockErr != nil {
		return nil, m.lockErr
	}
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		m.locks[id] = l
	}
	m.mu.Unlock()

	select {
	case l <- struct{}{}:
		return func() { <-l }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *memorySessionStore) Save(ctx context.Context, sess *repository.StoredSession) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = data
	return nil
}

func (m *memorySessionStore) Get(ctx context.Context, id uuid.UUID) (*repository.StoredSession, error) {
	m.mu.Lock()
	data, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	var sess repository.StoredSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (m *memorySessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// pausingStore holds every Get until a second Get arrives or the wait
// expires, so two requests read the same snapshot unless something
// serializes them.
type pausingStore struct {
	*memorySessionStore
	mu      sync.Mutex
	readers int
	both    chan struct{}
	wait    time.Duration
}

func newPausingStore(inner *memorySessionStore, wait time.Duration) *pausingStore {
	return &pausingStore{memorySessionStore: inner, both: make(chan struct{}), wait: wait}
}

func (p *pausingStore) Get(ctx context.Context, id uuid.UUID) (*repository.StoredSession, error) {
	sess, err := p.memorySessionStore.Get(ctx, id)

	p.mu.Lock()
	p.readers++
	if p.readers == 2 {
		close(p.both)
	}
	p.mu.Unlock()

	select {
	case <-p.both:
	case <-time.After(p.wait):
	}
	return sess, err
}

type memoryProgressFactory struct {
	mu     sync.Mutex
	stores map[uuid.UUID]*quiz.MemoryProgressStore
}

func newMemoryProgressFactory() *memoryProgressFactory {
	return &memoryProgressFactory{stores: make(map[uuid.UUID]*quiz.MemoryProgressStore)}
}

func (f *memoryProgressFactory) ForUser(userID uuid.UUID) quiz.ProgressStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stores[userID]
	if !ok {
		s = quiz.NewMemoryProgressStore()
		f.stores[userID] = s
	}
	return s
}

type recordingEvents struct {
	mu        sync.Mutex
	published []models.WSMessage
	results   []*models.QuizAttempt
}

func (r *recordingEvents) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, msg)
	return nil
}

func (r *recordingEvents) EnqueueResult(ctx context.Context, attempt *models.QuizAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, attempt)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.published {
		out = append(out, m.Type)
	}
	return out
}
