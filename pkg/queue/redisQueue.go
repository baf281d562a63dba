package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxRetries   = 5
	defaultBaseDelay    = 2 * time.Second
	defaultQueueTimeout = 5 * time.Second
	defaultConcurrency  = 5
)

// RedisQueue implements Queue on Redis lists. Jobs move from the main
// list to a processing list while a consumer holds them, and land in a
// failed sorted set once retries are exhausted. Failed jobs are kept
// for inspection, never requeued and never dropped.
type RedisQueue struct {
	client          *redis.Client
	mainQueue       string
	processingQueue string
	failedQueue     string
	retryManager    *RetryManager
	config          *RedisQueueConfig
	stopChan        chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
}

// RedisQueueConfig contains configuration for RedisQueue
type RedisQueueConfig struct {
	Name         string
	MaxRetries   int
	BaseDelay    time.Duration
	QueueTimeout time.Duration
	Concurrency  int
}

// DefaultRedisQueueConfig returns default configuration
func DefaultRedisQueueConfig() *RedisQueueConfig {
	return &RedisQueueConfig{
		Name:         "shortlink:clicks",
		MaxRetries:   defaultMaxRetries,
		BaseDelay:    defaultBaseDelay,
		QueueTimeout: defaultQueueTimeout,
		Concurrency:  defaultConcurrency,
	}
}

// NewRedisQueue creates a new RedisQueue on an existing client. The
// client lifecycle belongs to the caller.
func NewRedisQueue(client *redis.Client, cfg *RedisQueueConfig) (*RedisQueue, error) {
	if cfg == nil {
		cfg = DefaultRedisQueueConfig()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = defaultQueueTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	q := &RedisQueue{
		client:          client,
		mainQueue:       cfg.Name,
		processingQueue: cfg.Name + ":processing",
		failedQueue:     cfg.Name + ":failed",
		retryManager:    NewRetryManager(cfg.MaxRetries, cfg.BaseDelay),
		config:          cfg,
		stopChan:        make(chan struct{}),
	}

	logrus.Infof("RedisQueue initialized: main=%s, failed=%s, concurrency=%d",
		q.mainQueue, q.failedQueue, cfg.Concurrency)

	return q, nil
}

// Publish sends a job to the queue
func (r *RedisQueue) Publish(ctx context.Context, job *Job) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}

	r.prepare(job)
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %v", err)
	}

	jobData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %v", err)
	}

	if err := r.client.LPush(ctx, r.mainQueue, jobData).Err(); err != nil {
		return fmt.Errorf("failed to publish job: %v", err)
	}

	return nil
}

// Subscribe starts the consumer pool. One job at a time per slot.
func (r *RedisQueue) Subscribe(ctx context.Context, handler func(*Job) error) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	for i := 0; i < r.config.Concurrency; i++ {
		r.wg.Add(1)
		go r.consume(ctx, handler)
	}

	logrus.Infof("RedisQueue subscriber started with %d consumers", r.config.Concurrency)
	return nil
}

func (r *RedisQueue) consume(ctx context.Context, handler func(*Job) error) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		default:
			if err := r.processOne(ctx, handler); err != nil {
				logrus.Errorf("Error processing queue: %v", err)
				time.Sleep(time.Second) // Backoff on queue error
			}
		}
	}
}

// processOne moves a single job to the processing list, runs it with
// retries and removes it from the processing list afterwards.
func (r *RedisQueue) processOne(ctx context.Context, handler func(*Job) error) error {
	jobData, err := r.client.BRPopLPush(ctx, r.mainQueue, r.processingQueue, r.config.QueueTimeout).Result()
	if err == redis.Nil {
		return nil // Timeout, no jobs
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to move job to processing queue: %v", err)
	}

	var job Job
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		logrus.Errorf("Failed to unmarshal job: %v", err)
		r.retainFailed(ctx, &Job{ID: generateJobID(), CreatedAt: time.Now()},
			fmt.Errorf("invalid job format: %v", err))
	} else if err := r.executeWithRetry(ctx, &job, handler); err != nil {
		logrus.Errorf("Job %s failed after %d attempts: %v", job.ID, job.Attempts, err)
		r.retainFailed(ctx, &job, err)
	}

	// Remove from processing queue regardless of outcome
	if err := r.client.LRem(ctx, r.processingQueue, 1, jobData).Err(); err != nil {
		logrus.Errorf("Failed to remove job from processing queue: %v", err)
	}

	return nil
}

// executeWithRetry runs a job until success or exhausted attempts,
// sleeping with exponential backoff between attempts.
func (r *RedisQueue) executeWithRetry(ctx context.Context, job *Job, handler func(*Job) error) error {
	for {
		job.Attempts++

		err := handler(job)
		if err == nil {
			return nil
		}

		shouldRetry, delay := r.retryManager.ShouldRetry(job)
		if !shouldRetry {
			return err
		}

		logrus.Warnf("Job %s failed (attempt %d/%d), retrying in %v: %v",
			job.ID, job.Attempts, job.MaxRetries, delay, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.retryManager.Jitter(delay)):
			// Continue to next attempt
		}
	}
}

// FailedJob represents a job that exhausted its retries
type FailedJob struct {
	Job      *Job      `json:"job"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
	Attempts int       `json:"attempts"`
}

// retainFailed stores an exhausted job in the failed set, scored by
// failure time so inspection tooling can page through it.
func (r *RedisQueue) retainFailed(ctx context.Context, job *Job, jobErr error) {
	failed := &FailedJob{
		Job:      job,
		Error:    jobErr.Error(),
		FailedAt: time.Now(),
		Attempts: job.Attempts,
	}

	data, err := json.Marshal(failed)
	if err != nil {
		logrus.Errorf("Failed to marshal failed job: %v", err)
		return
	}

	score := float64(failed.FailedAt.UnixNano()) / 1e9
	if err := r.client.ZAdd(ctx, r.failedQueue, redis.Z{Score: score, Member: data}).Err(); err != nil {
		logrus.Errorf("Failed to retain job %s: %v", job.ID, err)
		return
	}

	logrus.Warnf("Job %s retained in failed set: %v", job.ID, jobErr)
}

// FailedJobs returns retained jobs, newest first, for inspection.
func (r *RedisQueue) FailedJobs(ctx context.Context, limit int) ([]*FailedJob, error) {
	if limit <= 0 {
		limit = 50
	}

	entries, err := r.client.ZRevRange(ctx, r.failedQueue, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get failed jobs: %v", err)
	}

	var failed []*FailedJob
	for _, data := range entries {
		var f FailedJob
		if err := json.Unmarshal([]byte(data), &f); err != nil {
			logrus.Errorf("Failed to unmarshal failed job: %v", err)
			continue
		}
		failed = append(failed, &f)
	}

	return failed, nil
}

// Stats returns current queue depths.
func (r *RedisQueue) Stats(ctx context.Context) (*Stats, error) {
	pipe := r.client.Pipeline()

	mainLen := pipe.LLen(ctx, r.mainQueue)
	processingLen := pipe.LLen(ctx, r.processingQueue)
	failedLen := pipe.ZCard(ctx, r.failedQueue)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %v", err)
	}

	return &Stats{
		Pending:    mainLen.Val(),
		Processing: processingLen.Val(),
		Failed:     failedLen.Val(),
		Timestamp:  time.Now(),
	}, nil
}

// Stats contains queue depth counters
type Stats struct {
	Pending    int64     `json:"pending"`
	Processing int64     `json:"processing"`
	Failed     int64     `json:"failed"`
	Timestamp  time.Time `json:"timestamp"`
}

func (r *RedisQueue) prepare(job *Job) {
	if job.ID == "" {
		job.ID = generateJobID()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = r.config.MaxRetries
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
}

// Close stops the consumers. The Redis client is shared and stays open.
func (r *RedisQueue) Close() error {
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})
	r.wg.Wait()

	logrus.Info("RedisQueue closed successfully")
	return nil
}
