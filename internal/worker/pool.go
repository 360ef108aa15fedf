package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"isl-backend/internal/models"
	"isl-backend/internal/services"
)

const (
	maxRetries  = 3
	pollTimeout = 5 * time.Second
)

type attemptStore interface {
	Create(ctx context.Context, a *models.QuizAttempt) (bool, error)
}

type publisher interface {
	PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) error
}

// queue is the list the workers drain. Pop returns errEmpty when nothing
// arrived within the timeout.
type queue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	Push(ctx context.Context, payload string) error
}

var errEmpty = errors.New("queue empty")

type redisQueue struct {
	client *redis.Client
	name   string
}

func (q redisQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.client.BLPop(ctx, timeout, q.name).Result()
	if errors.Is(err, redis.Nil) {
		return "", errEmpty
	}
	if err != nil {
		return "", err
	}
	if len(result) < 2 {
		return "", errEmpty
	}
	return result[1], nil
}

func (q redisQueue) Push(ctx context.Context, payload string) error {
	return q.client.RPush(ctx, q.name, payload).Err()
}

// queuedResult is a finished quiz attempt as it travels through the queue.
type queuedResult struct {
	models.QuizAttempt
	RetryCount int `json:"retry_count,omitempty"`
}

// Pool persists finished quiz attempts off the request path. Results are
// queued by the quiz service and written to quiz_attempts here; the insert
// is idempotent on session_id so a redelivered result is harmless.
type Pool struct {
	queue       queue
	attempts    attemptStore
	events      publisher
	workerCount int
	backoff     func(retry int) time.Duration
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

func NewPool(redisClient *redis.Client, attempts attemptStore, events publisher, workerCount int) *Pool {
	return newPool(redisQueue{client: redisClient, name: services.ResultQueue}, attempts, events, workerCount)
}

func newPool(q queue, attempts attemptStore, events publisher, workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		queue:       q,
		attempts:    attempts,
		events:      events,
		workerCount: workerCount,
		backoff: func(retry int) time.Duration {
			return time.Duration(1<<uint(retry)) * time.Second
		},
		stopChan: make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

// Stop signals the workers and waits for in-flight results. A worker blocked
// in BLPOP returns after at most pollTimeout.
func (p *Pool) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		payload, err := p.queue.Pop(ctx, pollTimeout)
		if err != nil {
			if !errors.Is(err, errEmpty) {
				log.Printf("Worker %d: queue read failed: %v", id, err)
				time.Sleep(time.Second)
			}
			continue
		}

		p.handle(ctx, id, payload)
	}
}

func (p *Pool) handle(ctx context.Context, id int, payload string) {
	var result queuedResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		log.Printf("Worker %d: dropping malformed result: %v", id, err)
		return
	}

	if err := p.process(ctx, &result.QuizAttempt); err != nil {
		p.handleFailure(ctx, &result, err)
	}
}

func (p *Pool) process(ctx context.Context, attempt *models.QuizAttempt) error {
	if attempt.UserID == uuid.Nil || attempt.SessionID == uuid.Nil || attempt.ModuleID == "" {
		return fmt.Errorf("incomplete quiz attempt for session %s", attempt.SessionID)
	}
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}

	inserted, err := p.attempts.Create(ctx, attempt)
	if err != nil {
		return fmt.Errorf("failed to store attempt: %w", err)
	}
	if !inserted {
		log.Printf("Quiz attempt for session %s already stored", attempt.SessionID)
		return nil
	}

	err = p.events.PublishUpdate(ctx, attempt.UserID, models.WSMessage{
		Type: models.EventAttemptStored,
		Payload: models.AttemptRecordedEvent{
			AttemptID: attempt.ID,
			ModuleID:  attempt.ModuleID,
			Score:     attempt.Score,
		},
	})
	if err != nil {
		log.Printf("failed to publish attempt.recorded for session %s: %v", attempt.SessionID, err)
	}

	log.Printf("Quiz attempt %s stored (module %s, score %d/%d)", attempt.ID, attempt.ModuleID, attempt.Score, attempt.QuestionCount)
	return nil
}

func (p *Pool) handleFailure(ctx context.Context, result *queuedResult, err error) {
	result.RetryCount++

	if result.RetryCount >= maxRetries {
		log.Printf("Quiz attempt for session %s failed permanently: %v", result.SessionID, err)
		return
	}

	log.Printf("Quiz attempt for session %s failed (attempt %d): %v, retrying", result.SessionID, result.RetryCount, err)

	data, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		log.Printf("failed to re-encode attempt for session %s: %v", result.SessionID, marshalErr)
		return
	}
	time.AfterFunc(p.backoff(result.RetryCount), func() {
		if err := p.queue.Push(context.Background(), string(data)); err != nil {
			log.Printf("failed to requeue attempt for session %s: %v", result.SessionID, err)
		}
	})
}
