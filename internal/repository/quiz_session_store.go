package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"isl-backend/internal/quiz"
)

var (
	ErrSessionNotFound = errors.New("quiz session not found")
	ErrSessionBusy     = errors.New("quiz session is locked by another request")
)

const (
	sessionLockTTL  = 5 * time.Second
	sessionLockWait = 2 * time.Second
	sessionLockPoll = 25 * time.Millisecond
)

// Deletes the lock only while it still holds the caller's token, so an
// expired lock taken over by another request is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// StoredSession is a quiz session together with its owner.
type StoredSession struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	StartedAt time.Time     `json:"started_at"`
	Quiz      *quiz.Session `json:"quiz"`
}

// QuizSessionStore keeps in-flight quiz sessions in Redis; abandoned
// sessions expire after ttl.
type QuizSessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewQuizSessionStore(redisClient *redis.Client, ttl time.Duration) *QuizSessionStore {
	return &QuizSessionStore{redis: redisClient, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return "quiz_session:" + id.String()
}

func sessionLockKey(id uuid.UUID) string {
	return "quiz_session_lock:" + id.String()
}

// Lock serializes read-modify-write cycles on one session across server
// instances. It waits up to sessionLockWait and then returns ErrSessionBusy.
// The returned func releases the lock.
func (s *QuizSessionStore) Lock(ctx context.Context, id uuid.UUID) (func(), error) {
	key := sessionLockKey(id)
	token := uuid.NewString()
	deadline := time.Now().Add(sessionLockWait)

	for {
		ok, err := s.redis.SetNX(ctx, key, token, sessionLockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to lock quiz session: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrSessionBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sessionLockPoll):
		}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := unlockScript.Run(ctx, s.redis, []string{key}, token).Err(); err != nil {
			log.Printf("failed to unlock quiz session %s: %v", id, err)
		}
	}, nil
}

func (s *QuizSessionStore) Save(ctx context.Context, sess *StoredSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode quiz session: %w", err)
	}
	return s.redis.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err()
}

func (s *QuizSessionStore) Get(ctx context.Context, id uuid.UUID) (*StoredSession, error) {
	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess StoredSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode quiz session: %w", err)
	}
	return &sess, nil
}

func (s *QuizSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.redis.Del(ctx, sessionKey(id)).Err()
}
