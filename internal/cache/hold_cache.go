// Package cache wraps the Redis structures used by the reservation core:
// the temporary-hold snapshots consulted at payment time and the ticket
// details documents served to browsers. Redis is never authoritative:
// every decision it influences is re-checked against the relational store
// under lock before any state changes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// HoldSnapshot is the cached view of a temporary hold, written right
// after the holding transaction commits with a TTL equal to the grace
// period. Price and departure are pinned here at hold time; payment uses
// these values rather than re-reading the possibly-changed ticket row.
type HoldSnapshot struct {
	ReservationID  uint64    `json:"reservation_id"`
	TicketID       uint64    `json:"ticket_id"`
	SeatNumber     uint32    `json:"seat_number"`
	UserID         uint64    `json:"user_id"`
	HeldAt         time.Time `json:"held_at"`
	Price          int64     `json:"ticket_price"`
	DepartureStart time.Time `json:"ticket_departure_start"`
	GraceMinutes   int       `json:"expires_in_minutes"`
}

// HoldCache stores hold snapshots keyed by reservation ID. Absence of an
// entry means the hold is unusable for payment, even if the relational
// row still shows TEMPORARY; presence alone never authorises anything.
type HoldCache struct {
	client *redis.Client
}

// NewHoldCache returns a HoldCache backed by the given Redis client.
func NewHoldCache(client *redis.Client) *HoldCache {
	return &HoldCache{client: client}
}

func holdKey(reservationID uint64) string {
	return fmt.Sprintf("temp_reservation:%d", reservationID)
}

// Put writes the snapshot with the given TTL.
func (c *HoldCache) Put(ctx context.Context, snap HoldSnapshot, ttl time.Duration) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, holdKey(snap.ReservationID), body, ttl).Err()
}

// Get returns the snapshot for a reservation, or (nil, nil) when the
// entry is absent or expired.
func (c *HoldCache) Get(ctx context.Context, reservationID uint64) (*HoldSnapshot, error) {
	body, err := c.client.Get(ctx, holdKey(reservationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap HoldSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("corrupt hold snapshot for reservation %d: %w", reservationID, err)
	}
	return &snap, nil
}

// Delete removes the snapshot. Called after a successful payment
// commits; a failure here is harmless because the TTL removes the entry
// anyway and payment re-validates status under lock.
func (c *HoldCache) Delete(ctx context.Context, reservationID uint64) error {
	return c.client.Del(ctx, holdKey(reservationID)).Err()
}
