package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"staypricing/internal/domain/pricing"
	"staypricing/internal/domain/shared/events"
)

var (
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrBookingNotFound = errors.New("booking: not found")
	ErrQuoteNotOwned   = errors.New("booking: quote belongs to another guest")
	ErrGuestRequired   = errors.New("booking: guest id required")
)

type BookingID string

type BookingState string

const (
	StatePending   BookingState = "PENDING"
	StateConfirmed BookingState = "CONFIRMED"
	StateCompleted BookingState = "COMPLETED"
	StateCancelled BookingState = "CANCELLED"
)

// Booking holds the quoted breakdown exactly as the guest saw it. Nothing
// downstream recomputes it.
type Booking struct {
	ID        BookingID         `json:"id"`
	QuoteID   string            `json:"quote_id"`
	ListingID string            `json:"listing_id"`
	GuestID   string            `json:"guest_id"`
	Kind      pricing.Kind      `json:"kind"`
	Params    pricing.Params    `json:"params"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	State     BookingState      `json:"state"`
	Reason    string            `json:"reason,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Version   int64             `json:"version"`
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
}

// FromQuote opens a pending booking for the guest who requested the quote.
func FromQuote(id BookingID, quote pricing.Quote, guestID string, now time.Time) (*Booking, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, errors.New("booking: id required")
	}
	if strings.TrimSpace(guestID) == "" {
		return nil, ErrGuestRequired
	}
	if quote.GuestID != "" && quote.GuestID != guestID {
		return nil, ErrQuoteNotOwned
	}
	now = now.UTC()
	if quote.Expired(now) {
		return nil, pricing.ErrQuoteExpired
	}
	b := &Booking{
		ID:        id,
		QuoteID:   quote.ID,
		ListingID: quote.ListingID,
		GuestID:   guestID,
		Kind:      quote.Kind,
		Params:    quote.Params,
		Breakdown: quote.Breakdown,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Breakdown.Applied = append([]pricing.AppliedDiscount(nil), quote.Breakdown.Applied...)
	b.Record(BookingRequested{
		BookingID: b.ID,
		QuoteID:   b.QuoteID,
		ListingID: b.ListingID,
		GuestID:   b.GuestID,
		Total:     b.Breakdown.Total,
		At:        now,
	})
	return b, nil
}

func (b *Booking) Confirm(now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, ListingID: b.ListingID, Total: b.Breakdown.Total, At: b.UpdatedAt})
	return nil
}

// Complete marks the trip as taken; completed trips feed membership tiers.
func (b *Booking) Complete(now time.Time) error {
	if b.State != StateConfirmed {
		return ErrInvalidState
	}
	b.State = StateCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, GuestID: b.GuestID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.State {
	case StatePending, StateConfirmed:
	default:
		return ErrInvalidState
	}
	b.State = StateCancelled
	b.Reason = strings.TrimSpace(reason)
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, Reason: b.Reason, At: b.UpdatedAt})
	return nil
}
