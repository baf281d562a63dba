package queue

import "context"

// DiscardQueue accepts and drops every job. It stands in for a real
// backend in environments without one; callers cannot tell which
// variant is active.
type DiscardQueue struct{}

func NewDiscardQueue() *DiscardQueue {
	return &DiscardQueue{}
}

func (d *DiscardQueue) Publish(ctx context.Context, job *Job) error {
	return nil
}

func (d *DiscardQueue) Subscribe(ctx context.Context, handler func(*Job) error) error {
	return nil
}

func (d *DiscardQueue) Close() error {
	return nil
}
