package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"staypricing/internal/domain/pricing"
	"staypricing/internal/domain/shared/events"
	"staypricing/internal/domain/shared/money"
)

var ErrHostMismatch = errors.New("listings: listing belongs to another host")

type ListingID string
type HostID string

type ListingState string

const (
	ListingActive    ListingState = "ACTIVE"
	ListingSuspended ListingState = "SUSPENDED"
)

// Listing is the published, bookable side of a draft. Its pricing
// configuration is stored separately under the same id.
type Listing struct {
	ID           ListingID    `json:"id"`
	Host         HostID       `json:"host_id"`
	Kind         pricing.Kind `json:"kind"`
	Category     string       `json:"category"`
	PropertyType string       `json:"property_type,omitempty"`
	Address      Address      `json:"address"`
	Details      Details      `json:"details"`
	Amenities    []string     `json:"amenities"`
	Photos       []string     `json:"photos"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Itinerary    []Activity   `json:"itinerary,omitempty"`
	Safety       Safety       `json:"safety"`
	WeekdayPrice money.Money  `json:"weekday_price"`
	WeekendPrice money.Money  `json:"weekend_price"`
	State        ListingState `json:"state"`
	Version      int64        `json:"version"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	events.EventRecorder
}

type ListingRepository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	ListByHost(ctx context.Context, host HostID) ([]*Listing, error)
}

// Publish turns a validated draft into a new active listing.
func Publish(id ListingID, draft *Draft, now time.Time) (*Listing, pricing.Configuration, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, pricing.Configuration{}, errors.New("listings: id is required")
	}
	if res := draft.ValidateAll(); !res.OK {
		return nil, pricing.Configuration{}, &PublishValidationError{Step: res.Step, Message: res.Message}
	}
	now = now.UTC()
	l := &Listing{ID: id, Host: draft.Host, Kind: draft.Kind, State: ListingActive, CreatedAt: now}
	l.copyFrom(draft, now)

	cfg := draft.PricingConfiguration()
	cfg.ListingID = string(id)
	cfg.UpdatedAt = now
	l.Record(ListingPublishedEvent{ListingID: l.ID, HostID: l.Host, Kind: l.Kind, BasePrice: cfg.BasePrice, At: now})
	return l, cfg, nil
}

// UpdateFromDraft republishes an existing listing from a draft opened on it.
func (l *Listing) UpdateFromDraft(draft *Draft, now time.Time) (pricing.Configuration, error) {
	if draft.Host != l.Host {
		return pricing.Configuration{}, ErrHostMismatch
	}
	if res := draft.ValidateAll(); !res.OK {
		return pricing.Configuration{}, &PublishValidationError{Step: res.Step, Message: res.Message}
	}
	now = now.UTC()
	l.copyFrom(draft, now)
	cfg := draft.PricingConfiguration()
	cfg.ListingID = string(l.ID)
	cfg.UpdatedAt = now
	l.Record(ListingUpdatedEvent{ListingID: l.ID, BasePrice: cfg.BasePrice, At: now})
	return cfg, nil
}

func (l *Listing) copyFrom(d *Draft, now time.Time) {
	l.Category = d.Category
	l.PropertyType = d.PropertyType
	l.Address = d.Location
	l.Details = d.Details
	l.Amenities = append([]string(nil), d.Amenities...)
	l.Photos = append([]string(nil), d.Photos...)
	l.Title = strings.TrimSpace(d.Title)
	l.Description = strings.TrimSpace(d.Description)
	l.Itinerary = append([]Activity(nil), d.Itinerary...)
	l.Safety = Safety{
		HouseRules:   append([]string(nil), d.Safety.HouseRules...),
		SafetyItems:  append([]string(nil), d.Safety.SafetyItems...),
		Acknowledged: d.Safety.Acknowledged,
	}
	l.WeekdayPrice = d.Pricing.BasePrice
	l.WeekendPrice = d.WeekendPrice
	l.UpdatedAt = now
}

// OpenDraft copies the listing and its live configuration into a new draft
// so edits go through the same validated paths as the first publish.
func (l *Listing) OpenDraft(id DraftID, cfg pricing.Configuration, now time.Time) (*Draft, error) {
	d, err := NewDraft(id, l.Host, l.Kind, now)
	if err != nil {
		return nil, err
	}
	d.ListingID = l.ID
	d.Category = l.Category
	d.PropertyType = l.PropertyType
	d.Location = l.Address
	d.Details = l.Details
	d.Amenities = append([]string(nil), l.Amenities...)
	d.Photos = append([]string(nil), l.Photos...)
	d.Title = l.Title
	d.Description = l.Description
	d.Itinerary = append([]Activity(nil), l.Itinerary...)
	d.Safety = l.Safety
	d.Pricing = cfg.Clone()
	d.WeekendPrice = l.WeekendPrice
	d.Touch(now)
	return d, nil
}

func (l *Listing) Suspend(now time.Time, reason string) error {
	if l.State != ListingActive {
		return ErrInvalidState
	}
	l.State = ListingSuspended
	l.UpdatedAt = now.UTC()
	l.Record(ListingSuspendedEvent{ListingID: l.ID, Reason: reason, At: l.UpdatedAt})
	return nil
}

// Bookable reports whether guests may request quotes for the listing.
func (l *Listing) Bookable() bool {
	return l.State == ListingActive
}
