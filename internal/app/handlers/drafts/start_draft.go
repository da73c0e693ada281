package drafts

import (
	"context"
	"errors"
	"strings"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/dto"
	"staypricing/internal/app/middleware"
	"staypricing/internal/app/uow"
	domainlistings "staypricing/internal/domain/listings"
)

const (
	startDraftKey       = "host.drafts.start"
	openListingDraftKey = "host.drafts.open_listing"
)

type StartDraftCommand struct {
	HostScope
	Kind string
}

func (c StartDraftCommand) Key() string { return startDraftKey }

func (c StartDraftCommand) Validate() error {
	if err := c.HostScope.validate(); err != nil {
		return err
	}
	_, err := parseKind(c.Kind)
	return err
}

type StartDraftHandler struct {
	Base
}

func (h *StartDraftHandler) Handle(ctx context.Context, cmd StartDraftCommand) (*dto.Draft, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	kind, err := parseKind(cmd.Kind)
	if err != nil {
		return nil, err
	}
	draft, err := domainlistings.NewDraft(domainlistings.DraftID(h.newID()), domainlistings.HostID(cmd.HostID), kind, h.now())
	if err != nil {
		return nil, err
	}
	out, err := h.save(ctx, unit, draft)
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("draft started", "draft_id", draft.ID, "host_id", cmd.HostID, "kind", kind)
	}
	return out, nil
}

// OpenListingDraftCommand re-opens a published listing for editing.
type OpenListingDraftCommand struct {
	HostScope
	ListingID string
}

func (c OpenListingDraftCommand) Key() string { return openListingDraftKey }

func (c OpenListingDraftCommand) Validate() error {
	if err := c.HostScope.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ListingID) == "" {
		return errors.New("listing id is required")
	}
	return nil
}

type OpenListingDraftHandler struct {
	Base
}

func (h *OpenListingDraftHandler) Handle(ctx context.Context, cmd OpenListingDraftCommand) (*dto.Draft, error) {
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
	cfg, err := unit.Configurations().ByListing(ctx, string(listing.ID))
	if err != nil {
		return nil, err
	}
	draft, err := listing.OpenDraft(domainlistings.DraftID(h.newID()), *cfg, h.now())
	if err != nil {
		return nil, err
	}
	out, err := h.save(ctx, unit, draft)
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing opened for editing", "draft_id", draft.ID, "listing_id", listing.ID)
	}
	return out, nil
}

var (
	_ commands.Handler[StartDraftCommand, *dto.Draft]       = (*StartDraftHandler)(nil)
	_ commands.Handler[OpenListingDraftCommand, *dto.Draft] = (*OpenListingDraftHandler)(nil)
	_ middleware.RoleRestricted                             = StartDraftCommand{}
	_ middleware.SelfValidating                             = OpenListingDraftCommand{}
)
