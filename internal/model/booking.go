package model

import "time"

// Booking is the confirmed outcome of an accepted rental request.  It is
// created exactly once per accepted request by the converter and is
// immutable afterwards except for the two one-shot rating flags.  Its
// period is mirrored into unavailable_ranges with BOOKING origin so later
// requests see it as blocked.
//
// Fields:
//  ID              – primary key identifier.
//  SourceRequestID – the accepted request this booking was converted from
//                    (unique; guards double conversion).
//  InstrumentID    – instrument that was booked.
//  RenterID        – renter side of the booking.
//  OwnerID         – owner side of the booking.
//  Period          – booked inclusive day range.
//  TotalPriceCents – total price carried over from the request.
//  RenterRated     – set once when the renter rates the owner/instrument.
//  OwnerRated      – set once when the owner rates the renter.
//  CreatedAt       – creation timestamp.
type Booking struct {
	ID              uint64    // bookings.id
	SourceRequestID uint64    // bookings.source_request_id
	InstrumentID    uint64    // bookings.instrument_id
	RenterID        uint64    // bookings.renter_id
	OwnerID         uint64    // bookings.owner_id
	Period          DateRange // bookings.start_date / end_date
	TotalPriceCents uint64    // bookings.total_price_cents
	RenterRated     bool      // bookings.renter_rated
	OwnerRated      bool      // bookings.owner_rated
	CreatedAt       time.Time // bookings.created_at
}

// Rating is one party's review of the other after a completed rental.
// Each booking admits at most one rating per side, enforced through the
// booking's rating flags.
//
// Fields:
//  ID           – primary key identifier.
//  BookingID    – booking being rated.
//  RaterID      – user writing the rating.
//  RateeID      – user being rated.
//  InstrumentID – instrument involved, for per-listing averages.
//  Stars        – 1 to 5.
//  Comment      – optional free-text comment.
//  CreatedAt    – creation timestamp.
type Rating struct {
	ID           uint64    // ratings.id
	BookingID    uint64    // ratings.booking_id
	RaterID      uint64    // ratings.rater_id
	RateeID      uint64    // ratings.ratee_id
	InstrumentID uint64    // ratings.instrument_id
	Stars        uint8     // ratings.stars
	Comment      *string   // ratings.comment (nullable)
	CreatedAt    time.Time // ratings.created_at
}
