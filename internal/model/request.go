package model

import "time"

// Rental request statuses.  A request is created PENDING and moves to
// exactly one of the three terminal states; no transition ever leaves a
// terminal state.
const (
	RequestPending  = "PENDING"
	RequestAccepted = "ACCEPTED"
	RequestRejected = "REJECTED"
	RequestExpired  = "EXPIRED"
)

// TerminalStatus reports whether s is one of the terminal request states.
func TerminalStatus(s string) bool {
	return s == RequestAccepted || s == RequestRejected || s == RequestExpired
}

// RentalRequest records a renter's proposal to rent an instrument for a
// period, pending the owner's decision.  The request is owned by the
// marketplace and read by both parties.  This struct corresponds to a row
// in the `rental_requests` table.
//
// Fields:
//  ID               – primary key identifier.
//  InstrumentID     – instrument being requested.
//  RequesterID      – renter proposing the rental.
//  OwnerID          – owner of the instrument (denormalized for listing).
//  Period           – requested inclusive day range.
//  PricePerDayCents – price per day captured at creation time.
//  TotalPriceCents  – PricePerDayCents * days inclusive, fixed at creation.
//  Note             – optional message from the renter to the owner.
//  Status           – PENDING, ACCEPTED, REJECTED or EXPIRED.
//  DecisionReason   – owner's reason, present only when REJECTED.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type RentalRequest struct {
	ID               uint64    // rental_requests.id
	InstrumentID     uint64    // rental_requests.instrument_id
	RequesterID      uint64    // rental_requests.requester_id
	OwnerID          uint64    // rental_requests.owner_id
	Period           DateRange // rental_requests.start_date / end_date
	PricePerDayCents uint32    // rental_requests.price_per_day_cents
	TotalPriceCents  uint64    // rental_requests.total_price_cents
	Note             *string   // rental_requests.note (nullable)
	Status           string    // rental_requests.status
	DecisionReason   *string   // rental_requests.decision_reason (nullable)
	CreatedAt        time.Time // rental_requests.created_at
	UpdatedAt        time.Time // rental_requests.updated_at
}
