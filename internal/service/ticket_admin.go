package service

import (
	"context"
	"log"
	"time"

	"github.com/ahmdrza1383/db-project/internal/cache"
	"github.com/ahmdrza1383/db-project/internal/model"
)

func parseDeparture(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, validation("departure_start must be RFC 3339: %v", err)
	}
	return t.UTC(), nil
}

// CreateTicketInput carries the fields of a new ticket.
type CreateTicketInput struct {
	Origin         string
	Destination    string
	VehicleType    string
	DepartureStart string // RFC 3339
	Price          int64
	TotalCapacity  int
}

// CreateTicket inserts a new ticket and pre-creates one reservation row
// per seat, all NOT_RESERVED. Seat rows exist from the start so holds
// lock an existing row instead of racing to insert one.
func (s *ReservationService) CreateTicket(ctx context.Context, in CreateTicketInput) (*model.Ticket, error) {
	if in.Origin == "" || in.Destination == "" || in.VehicleType == "" {
		return nil, validation("origin, destination and vehicle type are required")
	}
	if in.Price <= 0 {
		return nil, validation("price must be positive")
	}
	if in.TotalCapacity < 1 {
		return nil, validation("total capacity must be at least 1")
	}
	departure, err := parseDeparture(in.DepartureStart)
	if err != nil {
		return nil, err
	}
	if !departure.After(s.clock.Now()) {
		return nil, validation("departure must be in the future")
	}

	ticket := &model.Ticket{
		Origin:            in.Origin,
		Destination:       in.Destination,
		VehicleType:       in.VehicleType,
		DepartureStart:    departure,
		Price:             in.Price,
		TotalCapacity:     in.TotalCapacity,
		Status:            model.TicketStatusActive,
	}
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return err
		}
		return s.seats.CreateSeats(ctx, ticket.ID, in.TotalCapacity)
	})
	if err != nil {
		return nil, err
	}
	if s.indexer != nil {
		if err := s.indexer.UpdateRemaining(ctx, ticket.ID, ticket.RemainingCapacity); err != nil {
			log.Printf("reservation: search index update failed for ticket %d: %v", ticket.ID, err)
		}
	}
	return ticket, nil
}

// TicketDetails serves the ticket document with per-seat status, from
// the cache when present. A miss reads the store and repopulates the
// cache; cache failures degrade to store reads and are only logged.
func (s *ReservationService) TicketDetails(ctx context.Context, ticketID uint64) (*cache.TicketDetails, error) {
	if s.details != nil {
		det, err := s.details.Get(ctx, ticketID)
		if err != nil {
			log.Printf("reservation: ticket cache read failed for ticket %d: %v", ticketID, err)
		} else if det != nil {
			return det, nil
		}
	}

	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seats.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	det := &cache.TicketDetails{
		TicketID:          ticket.ID,
		Origin:            ticket.Origin,
		Destination:       ticket.Destination,
		VehicleType:       ticket.VehicleType,
		DepartureStart:    ticket.DepartureStart,
		Price:             ticket.Price,
		TotalCapacity:     ticket.TotalCapacity,
		RemainingCapacity: ticket.RemainingCapacity,
		Status:            ticket.Status,
		Seats:             make([]cache.SeatStatus, 0, len(seats)),
	}
	for _, seat := range seats {
		det.Seats = append(det.Seats, cache.SeatStatus{
			ReservationID: seat.ID,
			SeatNumber:    seat.SeatNumber,
			Status:        seat.Status,
		})
	}
	if s.details != nil {
		if err := s.details.Put(ctx, *det); err != nil {
			log.Printf("reservation: ticket cache write failed for ticket %d: %v", ticketID, err)
		}
	}
	return det, nil
}
