package uow

import (
	"context"

	domainbooking "staypricing/internal/domain/booking"
	domainlistings "staypricing/internal/domain/listings"
	domainpricing "staypricing/internal/domain/pricing"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Listings() domainlistings.ListingRepository
	Drafts() domainlistings.DraftRepository
	Configurations() domainpricing.ConfigurationRepository
	Quotes() domainpricing.QuoteRepository
	Bookings() domainbooking.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
