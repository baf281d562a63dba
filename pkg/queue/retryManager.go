package queue

import (
	"math/rand"
	"time"
)

// RetryManager manages retry logic for failed jobs
type RetryManager struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewRetryManager creates a new RetryManager
func NewRetryManager(maxRetries int, baseDelay time.Duration) *RetryManager {
	return &RetryManager{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   baseDelay * 16, // Maximum 16x base delay
	}
}

// ShouldRetry determines if a job should be retried and returns the delay
func (r *RetryManager) ShouldRetry(job *Job) (bool, time.Duration) {
	if job.Attempts >= job.MaxRetries {
		return false, 0
	}

	delay := r.Backoff(job.Attempts)
	return true, delay
}

// Backoff calculates exponential backoff delay for the given attempt:
// base * 2^(attempt-1), capped at the maximum delay.
func (r *RetryManager) Backoff(attempt int) time.Duration {
	if attempt <= 0 {
		return r.baseDelay
	}

	backoff := r.baseDelay * time.Duration(1<<(attempt-1))
	if backoff > r.maxDelay {
		backoff = r.maxDelay
	}

	return backoff
}

// Jitter spreads a delay by up to ±25% so concurrent consumers do not
// retry in lockstep.
func (r *RetryManager) Jitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}

	jitter := time.Duration(rand.Int63n(int64(delay / 2)))
	if rand.Intn(2) == 0 {
		return delay + jitter
	}
	return delay - jitter
}

// MaxRetries returns the configured retry ceiling for new jobs.
func (r *RetryManager) MaxRetries() int {
	return r.maxRetries
}
