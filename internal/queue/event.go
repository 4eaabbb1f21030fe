// Package queue implements the delayed expiry pipeline over RabbitMQ: a
// scheduler that arms one compensating task per temporary hold, and a
// worker that delivers those tasks at-least-once after the grace period.
package queue

import "time"

const (
	// expiredQueueName receives tasks whose grace period has elapsed.
	expiredQueueName = "reservation.hold.expired"
	// delayQueueName parks freshly-scheduled tasks; per-message TTL plus
	// dead-lettering into expiredQueueName produces the delay. Every
	// message carries the same TTL, so expiry order matches queue order.
	delayQueueName = "reservation.hold.delay"
)

// HoldExpiryTask is the message scheduled when a hold is created. It
// deliberately carries no reservation state beyond the ID: the worker
// re-reads everything it needs from the relational store at fire time,
// which is what makes duplicate or late delivery safe.
type HoldExpiryTask struct {
	TaskID        string    `json:"task_id"`
	ReservationID uint64    `json:"reservation_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}
