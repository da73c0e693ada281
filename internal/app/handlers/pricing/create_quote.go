package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/dto"
	"staypricing/internal/app/middleware"
	"staypricing/internal/app/policies"
	"staypricing/internal/app/uow"
	"staypricing/internal/domain/listings"
	"staypricing/internal/domain/membership"
	domainpricing "staypricing/internal/domain/pricing"
	"staypricing/internal/domain/shared/daterange"
)

const (
	createQuoteKey  = "pricing.quotes.create"
	defaultQuoteTTL = 30 * time.Minute
)

var ErrListingUnavailable = errors.New("pricing: listing is not bookable")

// CreateQuoteCommand prices a booking and stores the result so it can be
// booked later without recomputation.
type CreateQuoteCommand struct {
	ListingID string
	GuestID   string
	CheckIn   time.Time
	CheckOut  time.Time
	Date      time.Time
	Guests    int
	Currency  string
}

func (c CreateQuoteCommand) Key() string { return createQuoteKey }

func (c CreateQuoteCommand) Validate() error {
	if strings.TrimSpace(c.ListingID) == "" {
		return fmt.Errorf("%w: listing id is required", domainpricing.ErrInvalidParams)
	}
	if c.Guests < 1 {
		return fmt.Errorf("%w: at least one guest is required", domainpricing.ErrInvalidParams)
	}
	return nil
}

type CreateQuoteHandler struct {
	Logger     *slog.Logger
	Membership membership.Resolver
	Currency   policies.CurrencyPort
	TTL        time.Duration
	Now        func() time.Time
	NewID      func() string
}

func (h *CreateQuoteHandler) Handle(ctx context.Context, cmd CreateQuoteCommand) (*dto.Quote, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	listing, err := unit.Listings().ByID(ctx, listings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if !listing.Bookable() {
		return nil, ErrListingUnavailable
	}
	cfg, err := unit.Configurations().ByListing(ctx, string(listing.ID))
	if err != nil {
		return nil, err
	}

	now := h.now()
	params, err := bookingParams(listing.Kind, cmd, now)
	if err != nil {
		return nil, err
	}
	status, err := h.Membership.Resolve(ctx, cmd.GuestID)
	if err != nil {
		return nil, listings.Remote("resolve membership", err)
	}
	breakdown, err := domainpricing.Compute(*cfg, params, status.Percent)
	if err != nil {
		if errors.Is(err, domainpricing.ErrConfigurationInvalid) && h.Logger != nil {
			h.Logger.Error("stored configuration failed integrity checks", "listing_id", listing.ID, "error", err)
		}
		return nil, err
	}

	quote := &domainpricing.Quote{
		ID:                h.newID(),
		ListingID:         string(listing.ID),
		GuestID:           cmd.GuestID,
		Kind:              listing.Kind,
		Params:            params,
		MembershipPercent: status.Percent,
		Breakdown:         breakdown,
		ConfigVersion:     cfg.Version,
		CreatedAt:         now,
		ExpiresAt:         now.Add(h.ttl()),
	}
	if err := unit.Quotes().Save(ctx, quote); err != nil {
		return nil, listings.Remote("save quote", err)
	}

	out, err := quoteDTO(h.Currency, quote, cmd.Currency)
	if err != nil {
		return nil, err
	}
	out.MembershipTier = status.Tier
	if h.Logger != nil {
		h.Logger.Info("quote created", "quote_id", quote.ID, "listing_id", quote.ListingID, "total", breakdown.Total.String(), "membership_percent", status.Percent.String())
	}
	return out, nil
}

func bookingParams(kind domainpricing.Kind, cmd CreateQuoteCommand, now time.Time) (domainpricing.Params, error) {
	params := domainpricing.Params{Guests: cmd.Guests, BookedAt: now}
	switch kind {
	case domainpricing.KindExperience:
		if cmd.Date.IsZero() {
			return params, fmt.Errorf("%w: experience date is required", domainpricing.ErrInvalidParams)
		}
		params.Date = daterange.Day(cmd.Date)
	default:
		dr, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
		if err != nil {
			return params, fmt.Errorf("%w: %v", domainpricing.ErrInvalidParams, err)
		}
		params.Range = dr
	}
	return params, nil
}

func (h *CreateQuoteHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *CreateQuoteHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func (h *CreateQuoteHandler) ttl() time.Duration {
	if h.TTL > 0 {
		return h.TTL
	}
	return defaultQuoteTTL
}

var (
	_ commands.Handler[CreateQuoteCommand, *dto.Quote] = (*CreateQuoteHandler)(nil)
	_ middleware.SelfValidating                        = CreateQuoteCommand{}
)
