package dto

import (
	"time"

	domainlistings "staypricing/internal/domain/listings"
	"staypricing/internal/domain/shared/money"
)

type Listing struct {
	ID           string                 `json:"id"`
	HostID       string                 `json:"host_id"`
	Kind         string                 `json:"kind"`
	State        string                 `json:"state"`
	Title        string                 `json:"title"`
	Category     string                 `json:"category"`
	PropertyType string                 `json:"property_type,omitempty"`
	Address      domainlistings.Address `json:"address"`
	Photos       []string               `json:"photos"`
	WeekdayPrice money.Money            `json:"weekday_price"`
	WeekendPrice money.Money            `json:"weekend_price"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func NewListing(l *domainlistings.Listing) Listing {
	return Listing{
		ID:           string(l.ID),
		HostID:       string(l.Host),
		Kind:         string(l.Kind),
		State:        string(l.State),
		Title:        l.Title,
		Category:     l.Category,
		PropertyType: l.PropertyType,
		Address:      l.Address,
		Photos:       append([]string(nil), l.Photos...),
		WeekdayPrice: l.WeekdayPrice,
		WeekendPrice: l.WeekendPrice,
		UpdatedAt:    l.UpdatedAt,
	}
}

type ListingCollection struct {
	Items []Listing `json:"items"`
}
