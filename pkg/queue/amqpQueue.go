package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AmqpQueue implements Queue on RabbitMQ. Retries are scheduled by
// republishing the job through a short-lived TTL queue whose dead
// letter target is the main queue, so backoff happens broker-side and
// the consumer slot is freed immediately. Exhausted jobs are parked in
// a durable <name>.failed queue.
type AmqpQueue struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	queue        amqp.Queue
	failedQueue  amqp.Queue
	retryManager *RetryManager
	config       AmqpQueueConfig
}

type AmqpQueueConfig struct {
	URL         string
	Name        string
	MaxRetries  int
	BaseDelay   time.Duration
	Concurrency int
}

func NewAmqpQueue(cfg AmqpQueueConfig) (*AmqpQueue, error) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := channel.QueueDeclare(
		cfg.Name, // name
		true,     // durable
		false,    // delete when unused
		false,    // exclusive
		false,    // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	failed, err := channel.QueueDeclare(
		cfg.Name+".failed",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare failed queue: %w", err)
	}

	logrus.Infof("AmqpQueue initialized: main=%s, failed=%s", q.Name, failed.Name)

	return &AmqpQueue{
		conn:         conn,
		channel:      channel,
		queue:        q,
		failedQueue:  failed,
		retryManager: NewRetryManager(cfg.MaxRetries, cfg.BaseDelay),
		config:       cfg,
	}, nil
}

func (a *AmqpQueue) Publish(ctx context.Context, job *Job) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}

	if job.ID == "" {
		job.ID = generateJobID()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = a.config.MaxRetries
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %v", err)
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return a.publish(ctx, a.queue.Name, body)
}

func (a *AmqpQueue) publish(ctx context.Context, routingKey string, body []byte) error {
	err := a.channel.PublishWithContext(
		ctx,
		"",         // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

// publishDelayed routes a job through a temporary TTL queue whose dead
// letter target is the main queue.
func (a *AmqpQueue) publishDelayed(ctx context.Context, body []byte, delay time.Duration) error {
	delayedQueueName := fmt.Sprintf("%s.delayed.%d", a.queue.Name, delay.Milliseconds())

	_, err := a.channel.QueueDeclare(
		delayedQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{
			"x-message-ttl":             delay.Milliseconds(),
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": a.queue.Name,
			"x-expires":                 delay.Milliseconds() + 60000,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to declare delayed queue: %w", err)
	}

	return a.publish(ctx, delayedQueueName, body)
}

func (a *AmqpQueue) Subscribe(ctx context.Context, handler func(*Job) error) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	// One unacked delivery per consumer slot
	if err := a.channel.Qos(a.config.Concurrency, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := a.channel.Consume(
		a.queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for i := 0; i < a.config.Concurrency; i++ {
		go a.consume(ctx, deliveries, handler)
	}

	logrus.Infof("AmqpQueue subscriber started with %d consumers", a.config.Concurrency)
	return nil
}

func (a *AmqpQueue) consume(ctx context.Context, deliveries <-chan amqp.Delivery, handler func(*Job) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			a.handleDelivery(ctx, delivery, handler)
		}
	}
}

func (a *AmqpQueue) handleDelivery(ctx context.Context, delivery amqp.Delivery, handler func(*Job) error) {
	var job Job
	if err := json.Unmarshal(delivery.Body, &job); err != nil {
		logrus.Errorf("Failed to unmarshal job: %v", err)
		a.park(ctx, delivery.Body)
		delivery.Ack(false)
		return
	}

	job.Attempts++

	err := handler(&job)
	if err == nil {
		delivery.Ack(false)
		return
	}

	shouldRetry, delay := a.retryManager.ShouldRetry(&job)
	if !shouldRetry {
		logrus.Errorf("Job %s failed after %d attempts: %v", job.ID, job.Attempts, err)
		if body, marshalErr := json.Marshal(&job); marshalErr == nil {
			a.park(ctx, body)
		}
		delivery.Ack(false)
		return
	}

	logrus.Warnf("Job %s failed (attempt %d/%d), retrying in %v: %v",
		job.ID, job.Attempts, job.MaxRetries, delay, err)

	body, marshalErr := json.Marshal(&job)
	if marshalErr != nil {
		logrus.Errorf("Failed to marshal job for retry: %v", marshalErr)
		delivery.Nack(false, false)
		return
	}

	if err := a.publishDelayed(ctx, body, delay); err != nil {
		logrus.Errorf("Failed to schedule retry for job %s: %v", job.ID, err)
		// Requeue the original delivery so the job is not lost
		delivery.Nack(false, true)
		return
	}

	delivery.Ack(false)
}

func (a *AmqpQueue) park(ctx context.Context, body []byte) {
	if err := a.publish(ctx, a.failedQueue.Name, body); err != nil {
		logrus.Errorf("Failed to park job in failed queue: %v", err)
	}
}

func (a *AmqpQueue) Close() error {
	if err := a.channel.Close(); err != nil {
		a.conn.Close()
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if err := a.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	logrus.Info("AmqpQueue closed successfully")
	return nil
}
