package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"isl-backend/internal/models"
)

// ResultQueue receives finished quiz attempts for the worker pool.
const ResultQueue = "queue:quiz-results"

// EventBus publishes per-user updates for the WebSocket hub and queues quiz
// results for background persistence.
type EventBus struct {
	redis *redis.Client
}

func NewEventBus(redisClient *redis.Client) *EventBus {
	return &EventBus{redis: redisClient}
}

func (b *EventBus) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", msg.Type, err)
	}
	return b.redis.Publish(ctx, models.UserChannel(userID), string(data)).Err()
}

func (b *EventBus) EnqueueResult(ctx context.Context, attempt *models.QuizAttempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("failed to encode quiz attempt: %w", err)
	}
	return b.redis.LPush(ctx, ResultQueue, string(data)).Err()
}
