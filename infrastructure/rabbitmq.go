package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

// IngestMessage is the inbound queue envelope: one per upload, produced
// after the pending job record exists and the file is written.
type IngestMessage struct {
	JobID    string `json:"jobId"`
	FilePath string `json:"filePath"`
}

// Queue wraps a durable RabbitMQ work queue. Delivery is at-least-once;
// consumers ack manually after the handler returns so a worker crash
// mid-job redelivers the message, and the store-side idempotency guard
// keeps redelivery from producing a second outcome.
type Queue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewQueue connects to RabbitMQ and declares the durable ingestion queue.
func NewQueue(url, name string, logger *slog.Logger) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring queue %s: %w", name, err)
	}

	return &Queue{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

// Publish enqueues one ingestion message as a persistent delivery.
func (q *Queue) Publish(ctx context.Context, msg IngestMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding message for job %s: %w", msg.JobID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = q.channel.PublishWithContext(ctx,
		"",           // default exchange
		q.queue.Name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publishing job %s: %w", msg.JobID, err)
	}
	return nil
}

// Consume runs workers goroutines over the shared delivery stream, calling
// handler for each message and acking afterwards. Malformed messages are
// acked and dropped: redelivering them cannot make them parse. Blocks until
// ctx is cancelled or the delivery channel closes.
func (q *Queue) Consume(ctx context.Context, workers int, handler func(context.Context, IngestMessage)) error {
	if workers < 1 {
		workers = 1
	}

	// One unacked message per worker goroutine keeps slow OCR jobs from
	// hoarding deliveries other workers could take.
	if err := q.channel.Qos(workers, 0, false); err != nil {
		return fmt.Errorf("setting prefetch: %w", err)
	}

	msgs, err := q.channel.Consume(
		q.queue.Name,
		"",    // consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("registering consumer: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case d, ok := <-msgs:
					if !ok {
						return nil
					}
					var msg IngestMessage
					if err := json.Unmarshal(d.Body, &msg); err != nil {
						q.logger.Error("dropping malformed queue message", "err", err)
						_ = d.Ack(false)
						continue
					}
					handler(ctx, msg)
					if err := d.Ack(false); err != nil {
						q.logger.Error("acking message", "job_id", msg.JobID, "err", err)
					}
				}
			}
		})
	}
	return g.Wait()
}

// Close tears down the channel and connection.
func (q *Queue) Close() error {
	if err := q.channel.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}
