package drafts

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/dto"
	handlersupport "staypricing/internal/app/handlers/support"
	"staypricing/internal/app/outbox"
	"staypricing/internal/app/queries"
	"staypricing/internal/app/uow"
	domainlistings "staypricing/internal/domain/listings"
)

const (
	listHostListingsKey = "host.listings.list"
	suspendListingKey   = "host.listings.suspend"
)

type ListHostListingsQuery struct {
	HostScope
}

func (q ListHostListingsQuery) Key() string     { return listHostListingsKey }
func (q ListHostListingsQuery) Validate() error { return q.HostScope.validate() }

type ListHostListingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListHostListingsHandler) Handle(ctx context.Context, q ListHostListingsQuery) (dto.ListingCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Listings().ListByHost(execCtx, domainlistings.HostID(q.HostID))
	if err != nil {
		return dto.ListingCollection{}, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	out := dto.ListingCollection{Items: make([]dto.Listing, 0, len(items))}
	for _, l := range items {
		out.Items = append(out.Items, dto.NewListing(l))
	}
	if h.Logger != nil {
		h.Logger.Debug("host listings listed", "host_id", q.HostID, "count", len(out.Items))
	}
	return out, nil
}

// SuspendListingCommand takes a listing off the market. Existing quotes stay
// bookable until they expire.
type SuspendListingCommand struct {
	HostScope
	ListingID string
	Reason    string
}

func (c SuspendListingCommand) Key() string { return suspendListingKey }

func (c SuspendListingCommand) Validate() error {
	if err := c.HostScope.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ListingID) == "" {
		return errors.New("listing id is required")
	}
	return nil
}

type SuspendListingHandler struct {
	Base
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

func (h *SuspendListingHandler) Handle(ctx context.Context, cmd SuspendListingCommand) (*dto.Listing, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if listing.Host != domainlistings.HostID(cmd.HostID) {
		return nil, domainlistings.ErrNotOwner
	}
	if err := listing.Suspend(h.now(), strings.TrimSpace(cmd.Reason)); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, domainlistings.Remote("save listing", err)
	}
	evts := listing.PendingEvents()
	listing.ClearEvents()
	encoder := h.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoder, evts); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing suspended", "listing_id", listing.ID, "host_id", cmd.HostID)
	}
	out := dto.NewListing(listing)
	return &out, nil
}

var (
	_ queries.Handler[ListHostListingsQuery, dto.ListingCollection] = (*ListHostListingsHandler)(nil)
	_ commands.Handler[SuspendListingCommand, *dto.Listing]         = (*SuspendListingHandler)(nil)
)
