package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/outbox"
	"staypricing/internal/app/uow"
	domainbooking "staypricing/internal/domain/booking"
	domainlistings "staypricing/internal/domain/listings"
)

const (
	confirmBookingKey  = "host.bookings.confirm"
	completeBookingKey = "host.bookings.complete"
	cancelBookingKey   = "booking.cancel"
	hostRole           = "host"
)

var ErrBookingNotOwned = errors.New("booking: not owned by caller")

type ActionResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type ConfirmBookingCommand struct {
	HostID    string
	BookingID string
}

func (c ConfirmBookingCommand) Key() string          { return confirmBookingKey }
func (c ConfirmBookingCommand) RequiredRole() string { return hostRole }

// CompleteBookingCommand marks a stay as taken. Completed bookings count
// towards the guest's membership tier.
type CompleteBookingCommand struct {
	HostID    string
	BookingID string
}

func (c CompleteBookingCommand) Key() string          { return completeBookingKey }
func (c CompleteBookingCommand) RequiredRole() string { return hostRole }

// CancelBookingCommand may be sent by the guest or by the listing's host.
type CancelBookingCommand struct {
	ActorID   string
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

// LifecycleHandler moves bookings through their states. One instance serves
// the confirm, complete and cancel commands.
type LifecycleHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Now     func() time.Time
}

func (h *LifecycleHandler) Confirm() commands.Handler[ConfirmBookingCommand, *ActionResult] {
	return commands.HandlerFunc[ConfirmBookingCommand, *ActionResult](func(ctx context.Context, cmd ConfirmBookingCommand) (*ActionResult, error) {
		return h.apply(ctx, cmd.HostID, cmd.BookingID, true, func(b *domainbooking.Booking, now time.Time) error {
			return b.Confirm(now)
		})
	})
}

func (h *LifecycleHandler) Complete() commands.Handler[CompleteBookingCommand, *ActionResult] {
	return commands.HandlerFunc[CompleteBookingCommand, *ActionResult](func(ctx context.Context, cmd CompleteBookingCommand) (*ActionResult, error) {
		return h.apply(ctx, cmd.HostID, cmd.BookingID, true, func(b *domainbooking.Booking, now time.Time) error {
			return b.Complete(now)
		})
	})
}

func (h *LifecycleHandler) Cancel() commands.Handler[CancelBookingCommand, *ActionResult] {
	return commands.HandlerFunc[CancelBookingCommand, *ActionResult](func(ctx context.Context, cmd CancelBookingCommand) (*ActionResult, error) {
		return h.apply(ctx, cmd.ActorID, cmd.BookingID, false, func(b *domainbooking.Booking, now time.Time) error {
			return b.Cancel(cmd.Reason, now)
		})
	})
}

func (h *LifecycleHandler) apply(ctx context.Context, actorID, bookingID string, hostOnly bool, fn func(*domainbooking.Booking, time.Time) error) (*ActionResult, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, errors.New("actor id is required")
	}
	if strings.TrimSpace(bookingID) == "" {
		return nil, errors.New("booking id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(bookingID))
	if err != nil {
		return nil, err
	}
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(booking.ListingID))
	if err != nil {
		return nil, err
	}
	isHost := listing.Host == domainlistings.HostID(actorID)
	if !isHost && (hostOnly || booking.GuestID != actorID) {
		return nil, ErrBookingNotOwned
	}

	if err := fn(booking, h.now()); err != nil {
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
		h.Logger.Info("booking state changed", "booking_id", booking.ID, "state", booking.State)
	}
	return &ActionResult{BookingID: string(booking.ID), Status: string(booking.State)}, nil
}

func (h *LifecycleHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}
