// Package service assembles the command and query buses with their middleware.
package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staypricing/internal/app/commands"
	bookingapp "staypricing/internal/app/handlers/booking"
	draftapp "staypricing/internal/app/handlers/drafts"
	pricingapp "staypricing/internal/app/handlers/pricing"
	"staypricing/internal/app/middleware"
	"staypricing/internal/app/outbox"
	"staypricing/internal/app/policies"
	"staypricing/internal/app/queries"
	"staypricing/internal/app/uow"
	domainlistings "staypricing/internal/domain/listings"
	"staypricing/internal/domain/membership"
	domainpricing "staypricing/internal/domain/pricing"
)

// Deps are the ports the application needs from infrastructure.
type Deps struct {
	Logger         *slog.Logger
	UoW            uow.UoWFactory
	Outbox         outbox.Outbox
	Idempotency    middleware.IdempotencyStore
	IdempotencyTTL time.Duration
	Currency       policies.CurrencyPort
	Membership     membership.Resolver
	QuoteTTL       time.Duration
	Now            func() time.Time
	NewID          func() string
}

// Buses are the middleware-wrapped entry points handed to transports.
type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// Build registers every handler and wraps both buses. Commands run, outermost
// first, through exclusivity, idempotency, the unit of work, outbox flushing,
// validation and authorization.
func Build(d Deps) Buses {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	encoder := outbox.JSONEventEncoder{}
	base := draftapp.Base{
		Logger: d.Logger,
		Now:    d.Now,
		NewID:  d.NewID,
		Rules:  domainpricing.Validator{Now: d.Now, NewID: d.NewID},
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, pricingapp.CreateQuoteCommand{}.Key(), &pricingapp.CreateQuoteHandler{
		Logger:     d.Logger,
		Membership: d.Membership,
		Currency:   d.Currency,
		TTL:        d.QuoteTTL,
		Now:        d.Now,
		NewID:      d.NewID,
	})

	commands.RegisterHandler(commandBus, draftapp.StartDraftCommand{}.Key(), &draftapp.StartDraftHandler{Base: base})
	commands.RegisterHandler(commandBus, draftapp.OpenListingDraftCommand{}.Key(), &draftapp.OpenListingDraftHandler{Base: base})
	commands.RegisterHandler(commandBus, draftapp.UpdateSectionCommand{}.Key(), &draftapp.UpdateSectionHandler{Base: base})
	commands.RegisterHandler(commandBus, draftapp.NavigateCommand{}.Key(), &draftapp.NavigateHandler{Base: base})
	commands.RegisterHandler(commandBus, draftapp.SetLongStayCommand{}.Key(), &draftapp.SetLongStayHandler{Base: base})
	commands.RegisterHandler(commandBus, draftapp.SetPropertyDiscountCommand{}.Key(), &draftapp.SetPropertyDiscountHandler{Base: base})
	commands.RegisterHandler(commandBus, draftapp.AddSeasonalCommand{}.Key(), &draftapp.AddSeasonalHandler{Base: base})
	commands.RegisterHandler(commandBus, draftapp.RemoveSeasonalCommand{}.Key(), &draftapp.RemoveSeasonalHandler{Base: base})
	commands.RegisterHandler(commandBus, draftapp.AddEarlyBirdCommand{}.Key(), &draftapp.AddEarlyBirdHandler{Base: base})
	commands.RegisterHandler(commandBus, draftapp.RemoveEarlyBirdCommand{}.Key(), &draftapp.RemoveEarlyBirdHandler{Base: base})
	commands.RegisterHandler(commandBus, draftapp.ResetDraftCommand{}.Key(), &draftapp.ResetDraftHandler{Base: base})
	commands.RegisterHandler(commandBus, draftapp.PublishDraftCommand{}.Key(), &draftapp.PublishDraftHandler{
		Base:    base,
		Outbox:  d.Outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, draftapp.SuspendListingCommand{}.Key(), &draftapp.SuspendListingHandler{
		Base:    base,
		Outbox:  d.Outbox,
		Encoder: encoder,
	})

	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		Outbox:  d.Outbox,
		Encoder: encoder,
		Logger:  d.Logger,
		Now:     d.Now,
		NewID:   d.NewID,
	})
	lifecycle := &bookingapp.LifecycleHandler{
		Outbox:  d.Outbox,
		Encoder: encoder,
		Logger:  d.Logger,
		Now:     d.Now,
	}
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(), lifecycle.Confirm())
	commands.RegisterHandler(commandBus, bookingapp.CompleteBookingCommand{}.Key(), lifecycle.Complete())
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), lifecycle.Cancel())

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, pricingapp.GetQuoteQuery{}.Key(), &pricingapp.GetQuoteHandler{
		UoWFactory: d.UoW,
		Currency:   d.Currency,
		Logger:     d.Logger,
	})
	queries.RegisterHandler(queryBus, pricingapp.MembershipTiersQuery{}.Key(), &pricingapp.MembershipTiersHandler{
		Membership: d.Membership,
		Logger:     d.Logger,
	})
	queries.RegisterHandler(queryBus, draftapp.GetDraftQuery{}.Key(), &draftapp.GetDraftHandler{UoWFactory: d.UoW, Logger: d.Logger})
	queries.RegisterHandler(queryBus, draftapp.ValidateDraftQuery{}.Key(), &draftapp.ValidateDraftHandler{UoWFactory: d.UoW})
	queries.RegisterHandler(queryBus, draftapp.ListHostListingsQuery{}.Key(), &draftapp.ListHostListingsHandler{UoWFactory: d.UoW, Logger: d.Logger})
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(), &bookingapp.ListGuestBookingsHandler{UoWFactory: d.UoW, Logger: d.Logger})

	return Buses{
		Commands: middleware.ChainCommands(
			commandBus,
			middleware.Exclusive(domainlistings.ErrPublishInFlight),
			middleware.Idempotency(d.Idempotency, nil, d.IdempotencyTTL),
			middleware.Transaction(d.UoW, nil),
			middleware.OutboxFlush(d.Outbox),
			middleware.Validation(middleware.MessageValidator{}),
			middleware.Authorization(middleware.RoleAuthorizer{}),
		),
		Queries: middleware.ChainQueries(
			queryBus,
			middleware.QueryValidation(middleware.MessageValidator{}),
			middleware.QueryAuthorization(middleware.RoleAuthorizer{}),
		),
	}
}
