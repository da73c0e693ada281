package dto

import (
	"time"

	domainbooking "staypricing/internal/domain/booking"
	domainpricing "staypricing/internal/domain/pricing"
)

type Booking struct {
	ID        string                  `json:"id"`
	QuoteID   string                  `json:"quote_id"`
	ListingID string                  `json:"listing_id"`
	GuestID   string                  `json:"guest_id"`
	State     string                  `json:"state"`
	Params    domainpricing.Params    `json:"params"`
	Breakdown domainpricing.Breakdown `json:"breakdown"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

func NewBooking(b *domainbooking.Booking) Booking {
	return Booking{
		ID:        string(b.ID),
		QuoteID:   b.QuoteID,
		ListingID: b.ListingID,
		GuestID:   b.GuestID,
		State:     string(b.State),
		Params:    b.Params,
		Breakdown: b.Breakdown,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}
