package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"staypricing/internal/app/uow"
	domainbooking "staypricing/internal/domain/booking"
	domainlistings "staypricing/internal/domain/listings"
	domainpricing "staypricing/internal/domain/pricing"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	ListingsRepo       domainlistings.ListingRepository
	DraftsRepo         domainlistings.DraftRepository
	ConfigurationsRepo domainpricing.ConfigurationRepository
	QuotesRepo         domainpricing.QuoteRepository
	BookingsRepo       domainbooking.Repository
}

// NewFactory builds the default repositories over db.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:                 db,
		ListingsRepo:       NewListingRepository(db),
		DraftsRepo:         NewDraftRepository(db),
		ConfigurationsRepo: NewConfigurationRepository(db),
		QuotesRepo:         NewQuoteRepository(db),
		BookingsRepo:       NewBookingRepository(db),
	}
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Snapshot())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:        session,
		listings:       f.ListingsRepo,
		drafts:         f.DraftsRepo,
		configurations: f.ConfigurationsRepo,
		quotes:         f.QuotesRepo,
		bookings:       f.BookingsRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	listings       domainlistings.ListingRepository
	drafts         domainlistings.DraftRepository
	configurations domainpricing.ConfigurationRepository
	quotes         domainpricing.QuoteRepository
	bookings       domainbooking.Repository
}

func (u *Unit) Listings() domainlistings.ListingRepository { return u.listings }

func (u *Unit) Drafts() domainlistings.DraftRepository { return u.drafts }

func (u *Unit) Configurations() domainpricing.ConfigurationRepository { return u.configurations }

func (u *Unit) Quotes() domainpricing.QuoteRepository { return u.quotes }

func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.UoWFactory                        = Factory{}
	_ domainlistings.ListingRepository      = (*ListingRepository)(nil)
	_ domainlistings.DraftRepository        = (*DraftRepository)(nil)
	_ domainpricing.ConfigurationRepository = (*ConfigurationRepository)(nil)
	_ domainpricing.QuoteRepository         = (*QuoteRepository)(nil)
	_ domainbooking.Repository              = (*BookingRepository)(nil)
)
