package model

import "time"

// Ticket statuses.  A ticket must be ACTIVE for any seat operation to
// proceed; INACTIVE tickets are visible but not sellable.
const (
	TicketStatusActive   = "ACTIVE"
	TicketStatusInactive = "INACTIVE"
)

// Ticket is the authoritative capacity ledger for one sellable trip
// (flight, train or bus departure).  TotalCapacity is immutable after
// creation; RemainingCapacity changes only inside locked transactions and
// only by the delta implied by a single reservation transition.
//
// Fields:
//  ID                – primary key identifier.
//  Origin            – departure city.
//  Destination       – arrival city.
//  VehicleType       – FLIGHT, TRAIN or BUS.
//  DepartureStart    – instant the trip departs (UTC); gates all seat
//                      operations.
//  Price             – seat price in minor currency units.
//  TotalCapacity     – number of seat slots created with the ticket.
//  RemainingCapacity – seats still available (0 ≤ remaining ≤ total).
//  Status            – ACTIVE or INACTIVE.
//  CreatedAt         – row creation timestamp.
type Ticket struct {
	ID                uint64    // tickets.id
	Origin            string    // tickets.origin
	Destination       string    // tickets.destination
	VehicleType       string    // tickets.vehicle_type
	DepartureStart    time.Time // tickets.departure_start
	Price             int64     // tickets.price
	TotalCapacity     int       // tickets.total_capacity
	RemainingCapacity int       // tickets.remaining_capacity
	Status            string    // tickets.status
	CreatedAt         time.Time // tickets.created_at
}
