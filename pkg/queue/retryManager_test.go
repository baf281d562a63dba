package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffSchedule(t *testing.T) {
	rm := NewRetryManager(5, 2*time.Second)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 2 * time.Second},
		{attempt: 1, want: 2 * time.Second},
		{attempt: 2, want: 4 * time.Second},
		{attempt: 3, want: 8 * time.Second},
		{attempt: 4, want: 16 * time.Second},
		{attempt: 5, want: 32 * time.Second},
		{attempt: 6, want: 32 * time.Second}, // capped at 16x base
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rm.Backoff(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestShouldRetryExhaustsAfterMaxAttempts(t *testing.T) {
	rm := NewRetryManager(5, 2*time.Second)

	job := &Job{ID: "job-1", LinkID: "id-1", MaxRetries: 5}
	for attempt := 1; attempt < 5; attempt++ {
		job.Attempts = attempt
		retry, delay := rm.ShouldRetry(job)
		require.True(t, retry, "attempt %d", attempt)
		assert.Positive(t, delay)
	}

	job.Attempts = 5
	retry, delay := rm.ShouldRetry(job)
	assert.False(t, retry)
	assert.Zero(t, delay)
}

func TestJitterStaysWithinBounds(t *testing.T) {
	rm := NewRetryManager(5, 2*time.Second)

	assert.Zero(t, rm.Jitter(0))
	for i := 0; i < 100; i++ {
		jittered := rm.Jitter(4 * time.Second)
		assert.GreaterOrEqual(t, jittered, 2*time.Second)
		assert.LessOrEqual(t, jittered, 6*time.Second)
	}
}

func TestJobValidate(t *testing.T) {
	assert.Error(t, (&Job{}).Validate())
	assert.Error(t, (&Job{ID: "job-1"}).Validate())
	assert.NoError(t, (&Job{ID: "job-1", LinkID: "id-1"}).Validate())
}

func TestDiscardQueueDropsEverything(t *testing.T) {
	q := NewDiscardQueue()

	require.NoError(t, q.Publish(context.Background(), &Job{ID: "job-1", LinkID: "id-1"}))

	handled := false
	require.NoError(t, q.Subscribe(context.Background(), func(job *Job) error {
		handled = true
		return nil
	}))
	assert.False(t, handled)

	assert.NoError(t, q.Close())
}
