package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"ShelfScout/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	pollTimeout     = time.Second
	redeliveryCheck = 5 * time.Second
)

// RedisQueue carries vendor refresh jobs through a Redis list, with a sorted
// set holding delayed redeliveries and a dead-letter list for messages that
// exhaust their retries.
type RedisQueue struct {
	l      *logger.Logger
	cfg    *QueueConfig
	client *redis.Client
	jobs   map[string]Job

	keyPrefix string
	running   bool
	mu        sync.RWMutex
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewRedisQueue builds a queue over an existing Redis connection. Workers
// start on Start, not here.
func NewRedisQueue(l *logger.Logger, cfg *QueueConfig, client *redis.Client) *RedisQueue {
	if cfg == nil {
		cfg = &QueueConfig{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RedisQueue{
		l:         l,
		cfg:       cfg,
		client:    client,
		jobs:      make(map[string]Job),
		keyPrefix: "shelfscout:refresh",
		ctx:       ctx,
		cancel:    cancel,
	}
}

// RegisterJob binds a job to its message type. Later registrations for the
// same type are ignored.
func (r *RedisQueue) RegisterJob(job Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.Type()]; ok {
		r.l.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	r.jobs[job.Type()] = job
	r.l.Info("job registered",
		logger.String("job", job.Name()),
		logger.String("type", job.Type()))
}

// Start verifies the connection and launches the workers plus the redelivery
// loop.
func (r *RedisQueue) Start() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("queue already running")
	}
	r.running = true
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		return fmt.Errorf("redis ping: %w", err)
	}

	for i := 0; i < r.cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.wg.Add(1)
	go r.redeliveryLoop()

	r.l.Info("refresh queue started", logger.Int("workers", r.cfg.Workers))
	return nil
}

// Stop cancels the workers and waits for them up to the context deadline.
func (r *RedisQueue) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	r.mu.Unlock()
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		r.l.Warn("queue workers did not drain in time", logger.Error(ctx.Err()))
		return ctx.Err()
	case <-done:
		r.l.Info("refresh queue stopped")
		return nil
	}
}

// PublishMessage enqueues one message. Implements QueueService.
func (r *RedisQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	r.mu.RLock()
	running := r.running
	r.mu.RUnlock()
	if !running {
		return fmt.Errorf("queue not running")
	}

	msg := Message{
		ID:        strconv.FormatInt(time.Now().UnixNano(), 10),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := r.client.LPush(ctx, r.queueKey(), data).Err(); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	return nil
}

func (r *RedisQueue) worker(id int) {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		default:
			r.pollOnce()
		}
	}
}

func (r *RedisQueue) pollOnce() {
	res, err := r.client.BRPop(r.ctx, pollTimeout, r.queueKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		r.l.Error("queue poll failed", logger.Error(err))
		time.Sleep(pollTimeout)
		return
	}
	if len(res) < 2 {
		return
	}

	var msg Message
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		r.l.Error("queue message decode failed", logger.Error(err))
		return
	}
	r.dispatch(msg)
}

func (r *RedisQueue) dispatch(msg Message) {
	r.mu.RLock()
	job, ok := r.jobs[msg.Type]
	r.mu.RUnlock()
	if !ok {
		r.l.Error("no job for message type",
			logger.String("type", msg.Type), logger.String("id", msg.ID))
		return
	}

	// After the Redis round trip the payload is a generic map; hand the job
	// raw JSON so ParsePayload can decode it into its own type.
	if m, ok := msg.Payload.(map[string]interface{}); ok {
		if data, err := json.Marshal(m); err == nil {
			msg.Payload = json.RawMessage(data)
		}
	}

	if err := job.Handle(r.ctx, msg.Payload); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		r.retryOrPark(msg, job, err)
	}
}

func (r *RedisQueue) retryOrPark(msg Message, job Job, cause error) {
	r.l.Error("job failed",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(cause))

	if msg.Attempts >= r.cfg.RetryLimit {
		r.park(msg)
		return
	}
	msg.Attempts++

	data, err := json.Marshal(msg)
	if err != nil {
		r.l.Error("encode retry message", logger.Error(err))
		return
	}
	due := time.Now().Add(r.cfg.RetryDelay)
	err = r.client.ZAdd(context.Background(), r.retryKey(), redis.Z{
		Score:  float64(due.Unix()),
		Member: data,
	}).Err()
	if err != nil {
		r.l.Error("schedule retry", logger.Error(err))
	}
}

func (r *RedisQueue) park(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		r.l.Error("encode dlq message", logger.Error(err))
		return
	}
	if err := r.client.LPush(context.Background(), r.dlqKey(), data).Err(); err != nil {
		r.l.Error("park message", logger.Error(err))
	}
	r.l.Error("message parked after max retries", logger.String("id", msg.ID))
}

// redeliveryLoop moves due retry messages back onto the main list.
func (r *RedisQueue) redeliveryLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(redeliveryCheck)
	defer ticker.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.redeliverDue()
		}
	}
}

func (r *RedisQueue) redeliverDue() {
	max := strconv.FormatInt(time.Now().Unix(), 10)
	due, err := r.client.ZRangeByScore(r.ctx, r.retryKey(), &redis.ZRangeBy{Min: "0", Max: max}).Result()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.l.Error("fetch due retries", logger.Error(err))
		}
		return
	}
	for _, member := range due {
		pipe := r.client.TxPipeline()
		pipe.ZRem(r.ctx, r.retryKey(), member)
		pipe.LPush(r.ctx, r.queueKey(), member)
		if _, err := pipe.Exec(r.ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.l.Error("redeliver message", logger.Error(err))
		}
	}
}

func (r *RedisQueue) queueKey() string { return r.keyPrefix + ":jobs" }
func (r *RedisQueue) retryKey() string { return r.keyPrefix + ":retry" }
func (r *RedisQueue) dlqKey() string   { return r.keyPrefix + ":dlq" }

var _ QueueService = (*RedisQueue)(nil)
