package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeRefundTiers(t *testing.T) {
	departure := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	early := computeRefund(500000, departure, departure.Add(-25*time.Hour))
	assert.Equal(t, 10, early.PenaltyPercent)
	assert.Equal(t, int64(50000), early.PenaltyAmount)
	assert.Equal(t, int64(450000), early.RefundAmount)

	late := computeRefund(500000, departure, departure.Add(-30*time.Minute))
	assert.Equal(t, 50, late.PenaltyPercent)
	assert.Equal(t, int64(250000), late.PenaltyAmount)
	assert.Equal(t, int64(250000), late.RefundAmount)

	// More time left must never cost more.
	assert.Greater(t, late.PenaltyAmount, early.PenaltyAmount)
}

func TestComputeRefundBoundaryIsLate(t *testing.T) {
	departure := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	// Exactly one hour out is not "more than one hour".
	exact := computeRefund(100000, departure, departure.Add(-time.Hour))
	assert.Equal(t, 50, exact.PenaltyPercent)

	justOver := computeRefund(100000, departure, departure.Add(-time.Hour-time.Second))
	assert.Equal(t, 10, justOver.PenaltyPercent)
}

func TestComputeRefundTruncates(t *testing.T) {
	departure := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	q := computeRefund(99999, departure, departure.Add(-2*time.Hour))
	assert.Equal(t, int64(9999), q.PenaltyAmount)
	assert.Equal(t, int64(90000), q.RefundAmount)
}
