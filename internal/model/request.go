package model

import "time"

// Request subjects.  CANCEL requests trigger an admin-approved
// cancellation with the penalty computed from the submission instant;
// CHANGE_DATE requests are recorded and approved without a refund.
const (
	RequestCancel     = "CANCEL"
	RequestChangeDate = "CHANGE_DATE"
)

// ChangeRequest is a user-submitted request against a RESERVED
// reservation, processed later by an admin.  Checked/Accepted track the
// moderation outcome; CheckedBy records the admin who processed it.
type ChangeRequest struct {
	ID            uint64    // requests.id
	ReservationID uint64    // requests.reservation_id
	UserID        uint64    // requests.user_id
	Subject       string    // requests.subject
	Text          string    // requests.text
	Checked       bool      // requests.is_checked
	Accepted      bool      // requests.is_accepted
	CheckedBy     *uint64   // requests.checked_by (nullable)
	CreatedAt     time.Time // requests.created_at; penalty reference for CANCEL
}
