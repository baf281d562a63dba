package queue

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Queue delivers click jobs from the redirect path to the analytics
// worker with at-least-once semantics. Callers never know which
// backend is active.
type Queue interface {
	Publish(ctx context.Context, job *Job) error
	Subscribe(ctx context.Context, handler func(*Job) error) error
	Close() error
}

// Job is one click-event payload crossing the producer/worker boundary.
type Job struct {
	ID         string    `json:"id"`
	LinkID     string    `json:"link_id"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	Referrer   string    `json:"referrer"`
	Attempts   int       `json:"attempts"`
	MaxRetries int       `json:"max_retries"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks if the job is valid
func (j *Job) Validate() error {
	if strings.TrimSpace(j.ID) == "" {
		return fmt.Errorf("job ID is required")
	}
	if strings.TrimSpace(j.LinkID) == "" {
		return fmt.Errorf("job link ID is required")
	}
	return nil
}

// generateJobID generates a unique job ID
func generateJobID() string {
	return fmt.Sprintf("click_%d_%d", time.Now().UnixNano(), rand.Int63())
}
