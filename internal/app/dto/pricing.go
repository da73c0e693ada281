package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"staypricing/internal/domain/membership"
	domainpricing "staypricing/internal/domain/pricing"
)

// Quote is a stored breakdown plus its rendering in the requested currency.
type Quote struct {
	ID                string                  `json:"id"`
	ListingID         string                  `json:"listing_id"`
	Kind              string                  `json:"kind"`
	MembershipPercent decimal.Decimal         `json:"membership_percent"`
	MembershipTier    string                  `json:"membership_tier,omitempty"`
	Breakdown         domainpricing.Breakdown `json:"breakdown"`
	Display           *DisplayBreakdown       `json:"display,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	ExpiresAt         time.Time               `json:"expires_at"`
}

// DisplayBreakdown holds formatted amounts; it is never fed back into pricing.
type DisplayBreakdown struct {
	Currency      string `json:"currency"`
	Subtotal      string `json:"subtotal"`
	Discount      string `json:"discount"`
	CleaningFee   string `json:"cleaning_fee"`
	ExtraGuestFee string `json:"extra_guest_fee"`
	ServiceFee    string `json:"service_fee"`
	TaxFee        string `json:"tax_fee"`
	Total         string `json:"total"`
}

type MembershipTier struct {
	Name     string          `json:"name"`
	MinTrips int             `json:"min_trips"`
	MaxTrips int             `json:"max_trips,omitempty"`
	Percent  decimal.Decimal `json:"percent"`
}

type MembershipTiers struct {
	Items  []MembershipTier   `json:"items"`
	Status *membership.Status `json:"status,omitempty"`
}

func NewMembershipTiers(table membership.Table) MembershipTiers {
	out := MembershipTiers{Items: make([]MembershipTier, 0, len(table))}
	for _, band := range table {
		out.Items = append(out.Items, MembershipTier{
			Name:     band.Name,
			MinTrips: band.MinTrips,
			MaxTrips: band.MaxTrips,
			Percent:  band.Percent,
		})
	}
	return out
}
