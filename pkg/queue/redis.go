package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"FeatureMill/pkg/logger"
)

// Config contains worker configuration for the queue.
type Config struct {
	Workers    int
	RetryLimit int
	RetryDelay time.Duration
}

// Message is the wire format of a queued job.
type Message struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	Timestamp time.Time       `json:"timestamp"`
}

// RedisQueue is a Redis-list-backed job queue. Producers push JSON
// messages; worker goroutines pop with a blocking read and dispatch to
// registered jobs. Failed messages are re-queued up to RetryLimit times.
type RedisQueue struct {
	log    *logger.Logger
	cfg    Config
	client *redis.Client
	jobs   map[string]Job

	key    string
	mu     sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	running bool
}

// NewRedisQueue creates a queue over an existing Redis client. keyPrefix
// namespaces the list key.
func NewRedisQueue(log *logger.Logger, cfg Config, client *redis.Client, keyPrefix string) *RedisQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 10 * time.Second
	}
	if keyPrefix == "" {
		keyPrefix = "featuremill:queue"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisQueue{
		log:    log,
		cfg:    cfg,
		client: client,
		jobs:   make(map[string]Job),
		key:    keyPrefix + ":jobs",
		ctx:    ctx,
		cancel: cancel,
	}
}

// RegisterJob registers a handler for one message type.
func (q *RedisQueue) RegisterJob(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.jobs[job.Type()]; exists {
		q.log.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	q.jobs[job.Type()] = job
	q.log.Info("job registered",
		logger.String("job", job.Name()),
		logger.String("type", job.Type()))
}

// Publish enqueues one message.
func (q *RedisQueue) Publish(ctx context.Context, msgType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	msg := Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   raw,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}
	return nil
}

// Start pings Redis and spawns the worker pool.
func (q *RedisQueue) Start() error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return fmt.Errorf("queue already running")
	}
	q.running = true
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.client.Ping(ctx).Err(); err != nil {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
		return fmt.Errorf("redis ping: %w", err)
	}

	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.log.Info("redis queue started", logger.Int("workers", q.cfg.Workers))
	return nil
}

// Stop drains workers, waiting at most until ctx is done.
func (q *RedisQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.mu.Unlock()

	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return fmt.Errorf("queue stop: %w", ctx.Err())
	case <-done:
		q.log.Info("redis queue stopped")
		return nil
	}
}

func (q *RedisQueue) worker(id int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		default:
		}

		res, err := q.client.BRPop(q.ctx, 2*time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			q.log.Error("queue pop failed", logger.Int("worker", id), logger.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
			q.log.Error("queue message malformed", logger.Error(err))
			continue
		}
		q.dispatch(&msg)
	}
}

func (q *RedisQueue) dispatch(msg *Message) {
	q.mu.RLock()
	job, ok := q.jobs[msg.Type]
	q.mu.RUnlock()
	if !ok {
		q.log.Warn("no job registered for message", logger.String("type", msg.Type))
		return
	}

	if err := job.Handle(q.ctx, msg.Payload); err != nil {
		q.log.Error("job failed",
			logger.String("job", job.Name()),
			logger.String("id", msg.ID),
			logger.Int("attempts", msg.Attempts),
			logger.Error(err))
		q.retry(msg)
		return
	}
	q.log.Debug("job done", logger.String("job", job.Name()), logger.String("id", msg.ID))
}

func (q *RedisQueue) retry(msg *Message) {
	if msg.Attempts >= q.cfg.RetryLimit {
		q.log.Warn("job dropped after retry limit",
			logger.String("type", msg.Type),
			logger.String("id", msg.ID))
		return
	}
	msg.Attempts++

	go func() {
		select {
		case <-time.After(q.cfg.RetryDelay):
		case <-q.ctx.Done():
			return
		}
		data, err := json.Marshal(msg)
		if err != nil {
			return
		}
		if err := q.client.LPush(q.ctx, q.key, data).Err(); err != nil {
			q.log.Error("requeue failed", logger.String("id", msg.ID), logger.Error(err))
		}
	}()
}
