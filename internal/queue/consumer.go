package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// HoldReverter is implemented by the reservation service. Revert must be
// idempotent: the worker may invoke it more than once per reservation and
// long after the hold was settled or already reverted.
type HoldReverter interface {
	ExpireHold(ctx context.Context, reservationID uint64) error
}

const (
	revertAttempts = 3
	revertBackoff  = time.Second
)

// StartExpiryWorker connects to RabbitMQ and consumes hold-expiry tasks,
// reverting abandoned holds through the given reverter. It runs a
// reconnect loop forever; broker outages are logged and retried with
// exponential backoff, so the caller normally runs it in a goroutine.
func StartExpiryWorker(reverter HoldReverter) error {
	url := brokerURL()
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("expiry-worker: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, reverter); err != nil {
			log.Printf("expiry-worker: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, reverter HoldReverter) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("expiry-worker: set QoS failed: %v", err)
	}
	if err := declareTopology(ch); err != nil {
		return err
	}

	msgs, err := ch.Consume(expiredQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleTask(d.Body, reverter); err != nil {
			log.Printf("expiry-worker: handle task failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// handleTask runs one expiry task with bounded backoff. Transient store
// failures are retried up to revertAttempts; exhausting the attempts is
// reported through the returned error rather than silently dropped.
func handleTask(body []byte, reverter HoldReverter) error {
	var task HoldExpiryTask
	if err := json.Unmarshal(body, &task); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	var lastErr error
	delay := revertBackoff
	for attempt := 1; attempt <= revertAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		lastErr = reverter.ExpireHold(ctx, task.ReservationID)
		cancel()
		if lastErr == nil {
			return nil
		}
		log.Printf("expiry-worker: revert reservation %d attempt %d/%d failed: %v",
			task.ReservationID, attempt, revertAttempts, lastErr)
		if attempt < revertAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("revert reservation %d (task %s): retries exhausted: %w",
		task.ReservationID, task.TaskID, lastErr)
}
