package model

import "time"

// Roles carried in the JWT "role" claim.  Seat operations are restricted
// to USER; request moderation is restricted to ADMIN.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents a buyer account as stored in the `users` table.  Token
// issuance lives outside this service; only the wallet balance matters to
// the reservation core, and it is mutated exclusively inside the same
// locked transaction as a refund or a successful wallet payment.
//
// Fields:
//  ID            – primary key identifier.
//  Email         – unique email address.
//  Name          – display name.
//  Role          – USER or ADMIN.
//  WalletBalance – balance in minor currency units.
//  CreatedAt     – row creation timestamp.
type User struct {
	ID            uint64    // users.id
	Email         string    // users.email
	Name          string    // users.name
	Role          string    // users.role
	WalletBalance int64     // users.wallet_balance
	CreatedAt     time.Time // users.created_at
}
