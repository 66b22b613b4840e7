package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/taller/backend/internal/domain/notification"
	"github.com/taller/backend/internal/infrastructure/config"
)

// RedisQueue implements the notification Queue on a Redis list.
// Producers LPUSH JSON-encoded jobs, the dispatch worker BRPOPs them, so jobs
// come out in enqueue order and survive process restarts.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue connects to Redis and returns a queue on the given list key
func NewRedisQueue(cfg config.RedisConfig, key string) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisQueue{client: client, key: key}, nil
}

// NewRedisQueueWithClient creates a queue with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisQueueWithClient(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

// Enqueue pushes a job onto the queue
func (q *RedisQueue) Enqueue(ctx context.Context, job *notification.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode notification job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue notification job: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout waiting for the next job. Returns a nil job
// when the timeout elapses with an empty queue.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*notification.Job, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue notification job: %w", err)
	}
	// BRPOP returns [key, value]
	if len(result) < 2 {
		return nil, nil
	}

	var job notification.Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to decode notification job: %w", err)
	}
	return &job, nil
}

// Len returns the number of pending jobs
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Close closes the Redis client
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

var _ notification.Queue = (*RedisQueue)(nil)
