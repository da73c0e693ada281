package listings

import (
	"time"

	"staypricing/internal/domain/pricing"
	"staypricing/internal/domain/shared/money"
)

type ListingPublishedEvent struct {
	ListingID ListingID    `json:"listing_id"`
	HostID    HostID       `json:"host_id"`
	Kind      pricing.Kind `json:"kind"`
	BasePrice money.Money  `json:"base_price"`
	At        time.Time    `json:"at"`
}

func (e ListingPublishedEvent) EventName() string     { return "listing.published" }
func (e ListingPublishedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingPublishedEvent) OccurredAt() time.Time { return e.At }

type ListingUpdatedEvent struct {
	ListingID ListingID   `json:"listing_id"`
	BasePrice money.Money `json:"base_price"`
	At        time.Time   `json:"at"`
}

func (e ListingUpdatedEvent) EventName() string     { return "listing.updated" }
func (e ListingUpdatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingUpdatedEvent) OccurredAt() time.Time { return e.At }

type ListingSuspendedEvent struct {
	ListingID ListingID `json:"listing_id"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

func (e ListingSuspendedEvent) EventName() string     { return "listing.suspended" }
func (e ListingSuspendedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingSuspendedEvent) OccurredAt() time.Time { return e.At }
