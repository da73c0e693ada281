package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/middleware"
	"staypricing/internal/app/outbox"
	"staypricing/internal/app/uow"
	domainbooking "staypricing/internal/domain/booking"
	domainlistings "staypricing/internal/domain/listings"
)

const requestBookingKey = "booking.request"

// RequestBookingCommand books a stored quote. The quote breakdown is carried
// over as-is.
type RequestBookingCommand struct {
	GuestID         string
	QuoteID         string
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

func (c RequestBookingCommand) Validate() error {
	if strings.TrimSpace(c.GuestID) == "" {
		return domainbooking.ErrGuestRequired
	}
	if strings.TrimSpace(c.QuoteID) == "" {
		return errors.New("quote id is required")
	}
	return nil
}

type RequestBookingResult struct {
	BookingID string `json:"booking_id"`
}

type RequestBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Now     func() time.Time
	NewID   func() string
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	quote, err := unit.Quotes().ByID(ctx, cmd.QuoteID)
	if err != nil {
		return nil, err
	}
	booking, err := domainbooking.FromQuote(domainbooking.BookingID(h.newID()), *quote, cmd.GuestID, h.now())
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, domainlistings.Remote("save booking", err)
	}

	r := booking.PendingEvents()
	booking.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), r); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking requested", "booking_id", booking.ID, "quote_id", quote.ID, "total", booking.Breakdown.Total.String())
	}
	return &RequestBookingResult{BookingID: string(booking.ID)}, nil
}

func (h *RequestBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *RequestBookingHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func encoderOrDefault(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
