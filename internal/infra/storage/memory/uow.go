package memory

import (
	"context"
	"errors"

	"staypricing/internal/app/uow"
	domainbooking "staypricing/internal/domain/booking"
	domainlistings "staypricing/internal/domain/listings"
	domainpricing "staypricing/internal/domain/pricing"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingsRepo       domainlistings.ListingRepository
	DraftsRepo         domainlistings.DraftRepository
	ConfigurationsRepo domainpricing.ConfigurationRepository
	QuotesRepo         domainpricing.QuoteRepository
	BookingsRepo       domainbooking.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// NewFactory builds a factory over fresh empty repositories.
func NewFactory() Factory {
	return Factory{
		ListingsRepo:       NewListingRepository(),
		DraftsRepo:         NewDraftRepository(),
		ConfigurationsRepo: NewConfigurationRepository(),
		QuotesRepo:         NewQuoteRepository(),
		BookingsRepo:       NewBookingRepository(),
	}
}

// Begin starts a lightweight transaction boundary. No isolation is provided but
// the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.DraftsRepo == nil || f.ConfigurationsRepo == nil || f.QuotesRepo == nil || f.BookingsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f, readOnly: opts.ReadOnly}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	factory  Factory
	readOnly bool
	done     bool
}

func (u *Unit) Listings() domainlistings.ListingRepository            { return u.factory.ListingsRepo }
func (u *Unit) Drafts() domainlistings.DraftRepository                { return u.factory.DraftsRepo }
func (u *Unit) Configurations() domainpricing.ConfigurationRepository { return u.factory.ConfigurationsRepo }
func (u *Unit) Quotes() domainpricing.QuoteRepository                 { return u.factory.QuotesRepo }
func (u *Unit) Bookings() domainbooking.Repository                    { return u.factory.BookingsRepo }

var ErrUnitClosed = errors.New("memory: unit of work already finished")

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return ErrUnitClosed
	}
	u.done = true
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.done = true
	return nil
}

var (
	_ uow.UoWFactory  = Factory{}
	_ uow.UnitOfWork = (*Unit)(nil)
)
