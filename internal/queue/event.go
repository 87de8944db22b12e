// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when an accepted rental request is
// converted into a booking. It carries enough information for downstream
// consumers to log, notify, or feed analytics without querying the primary
// database.
type BookingCreatedEvent struct {
	BookingID       uint64 `json:"booking_id"`
	RequestID       uint64 `json:"request_id"`
	InstrumentID    uint64 `json:"instrument_id"`
	InstrumentName  string `json:"instrument_name"`
	OwnerID         uint64 `json:"owner_id"`
	RenterID        uint64 `json:"renter_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	TotalPriceCents uint64 `json:"total_price_cents"`
	CreatedAt       string `json:"created_at"`
}
