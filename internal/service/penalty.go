package service

import "time"

// Penalty tiers: cancelling more than one hour before departure costs
// 10% of the held price, later cancellations cost 50%. Amounts are
// integers in minor currency units and truncate toward zero.
const (
	penaltyPercentEarly = 10
	penaltyPercentLate  = 50
)

// RefundQuote is the outcome of the penalty computation, returned by the
// preview endpoint and applied verbatim by cancellation.
type RefundQuote struct {
	Price          int64   `json:"ticket_price"`
	HoursRemaining float64 `json:"time_to_departure_hours"`
	PenaltyPercent int     `json:"penalty_percentage"`
	PenaltyAmount  int64   `json:"penalty_amount"`
	RefundAmount   int64   `json:"refund_amount"`
}

// computeRefund prices a cancellation of a seat bought at price.
// reference is "now" for self-service cancellation and the request's
// submission instant for admin-approved cancellation.
func computeRefund(price int64, departure, reference time.Time) RefundQuote {
	remaining := departure.Sub(reference)
	percent := penaltyPercentLate
	if remaining > time.Hour {
		percent = penaltyPercentEarly
	}
	penalty := price * int64(percent) / 100
	return RefundQuote{
		Price:          price,
		HoursRemaining: remaining.Hours(),
		PenaltyPercent: percent,
		PenaltyAmount:  penalty,
		RefundAmount:   price - penalty,
	}
}
