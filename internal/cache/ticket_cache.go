package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TicketDetails is the cached ticket document served by the details
// endpoint: the ledger fields plus per-seat status.
type TicketDetails struct {
	TicketID          uint64       `json:"ticket_id"`
	Origin            string       `json:"origin"`
	Destination       string       `json:"destination"`
	VehicleType       string       `json:"vehicle_type"`
	DepartureStart    time.Time    `json:"departure_start"`
	Price             int64        `json:"price"`
	TotalCapacity     int          `json:"total_capacity"`
	RemainingCapacity int          `json:"remaining_capacity"`
	Status            string       `json:"status"`
	Seats             []SeatStatus `json:"seats"`
}

// SeatStatus is one seat slot inside a cached ticket document.
type SeatStatus struct {
	ReservationID uint64 `json:"reservation_id"`
	SeatNumber    uint32 `json:"seat_number"`
	Status        string `json:"status"`
}

// TicketCache stores ticket detail documents with a fixed TTL. When a
// committed transaction changes remaining_capacity, PatchRemaining
// rewrites just that field of the cached document without refreshing the
// TTL, so a busy ticket still re-reads the store on schedule.
type TicketCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTicketCache returns a TicketCache with the given document TTL.
func NewTicketCache(client *redis.Client, ttl time.Duration) *TicketCache {
	return &TicketCache{client: client, ttl: ttl}
}

func ticketKey(ticketID uint64) string {
	return fmt.Sprintf("ticket_details:%d", ticketID)
}

// Get returns the cached document, or (nil, nil) on a miss.
func (c *TicketCache) Get(ctx context.Context, ticketID uint64) (*TicketDetails, error) {
	body, err := c.client.Get(ctx, ticketKey(ticketID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var det TicketDetails
	if err := json.Unmarshal(body, &det); err != nil {
		return nil, fmt.Errorf("corrupt ticket document %d: %w", ticketID, err)
	}
	return &det, nil
}

// Put stores the document with the configured TTL.
func (c *TicketCache) Put(ctx context.Context, det TicketDetails) error {
	body, err := json.Marshal(det)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ticketKey(det.TicketID), body, c.ttl).Err()
}

// PatchRemaining updates remaining_capacity inside the cached document,
// preserving the remaining TTL (KEEPTTL). A miss is a no-op: the next
// details read repopulates the document from the store.
func (c *TicketCache) PatchRemaining(ctx context.Context, ticketID uint64, remaining int) error {
	det, err := c.Get(ctx, ticketID)
	if err != nil || det == nil {
		return err
	}
	det.RemainingCapacity = remaining
	body, err := json.Marshal(det)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ticketKey(ticketID), body, redis.KeepTTL).Err()
}

// Invalidate drops the cached document, used when seat statuses change
// in ways a field patch cannot express.
func (c *TicketCache) Invalidate(ctx context.Context, ticketID uint64) error {
	return c.client.Del(ctx, ticketKey(ticketID)).Err()
}
