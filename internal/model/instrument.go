package model

import "time"

// Instrument represents a rentable instrument listed by a user.  The
// owner controls the listing and its manual availability blocks; renters
// discover it through the public browse endpoints.  This struct
// corresponds to a row in the `instruments` table.
//
// Fields:
//  ID               – primary key identifier.
//  OwnerID          – user ID of the listing owner.
//  Name             – display name of the instrument.
//  Category         – coarse category (e.g. GUITAR, KEYBOARD, DRUMS).
//  Description      – optional free-text description.
//  PricePerDayCents – rental price per day in cents.
//  Location         – optional city/region string used for browsing.
//  IsActive         – whether the listing is visible to renters.
//  CreatedAt        – timestamp when the listing was created.
//  UpdatedAt        – timestamp of last update.
type Instrument struct {
	ID               uint64    // instruments.id
	OwnerID          uint64    // instruments.owner_id
	Name             string    // instruments.name
	Category         string    // instruments.category
	Description      *string   // instruments.description (nullable)
	PricePerDayCents uint32    // instruments.price_per_day_cents
	Location         *string   // instruments.location (nullable)
	IsActive         bool      // instruments.is_active
	CreatedAt        time.Time // instruments.created_at
	UpdatedAt        time.Time // instruments.updated_at
}
