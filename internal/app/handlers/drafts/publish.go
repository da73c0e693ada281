package drafts

import (
	"context"
	"errors"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/dto"
	"staypricing/internal/app/middleware"
	"staypricing/internal/app/outbox"
	"staypricing/internal/app/uow"
	domainlistings "staypricing/internal/domain/listings"
	domainpricing "staypricing/internal/domain/pricing"
)

const publishDraftKey = "host.drafts.publish"

// PublishDraftCommand sends the host's draft to the listing store.
type PublishDraftCommand struct {
	HostScope
	DraftID string
}

func (c PublishDraftCommand) Key() string          { return publishDraftKey }
func (c PublishDraftCommand) ExclusiveKey() string { return c.DraftID }
func (c PublishDraftCommand) Validate() error      { return validateDraftRef(c.HostScope, c.DraftID) }

type PublishDraftHandler struct {
	Base
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
}

// Handle validates the whole draft before touching any repository. Failures
// after that point are returned as they came, wrapped as remote errors.
func (h *PublishDraftHandler) Handle(ctx context.Context, cmd PublishDraftCommand) (*dto.PublishResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	draft, err := loadOwned(ctx, unit, cmd.HostID, cmd.DraftID)
	if err != nil {
		return nil, err
	}
	if res := draft.ValidateAll(); !res.OK {
		if h.Logger != nil {
			h.Logger.Info("publish blocked", "draft_id", draft.ID, "step", res.Step, "message", res.Message)
		}
		return nil, &domainlistings.PublishValidationError{Step: res.Step, Message: res.Message}
	}

	now := h.now()
	var (
		listing *domainlistings.Listing
		cfg     domainpricing.Configuration
	)
	if draft.ListingID == "" {
		listing, cfg, err = domainlistings.Publish(domainlistings.ListingID(h.newID()), draft, now)
		if err != nil {
			return nil, err
		}
	} else {
		listing, err = unit.Listings().ByID(ctx, draft.ListingID)
		if err != nil {
			return nil, domainlistings.Remote("load listing", err)
		}
		cfg, err = listing.UpdateFromDraft(draft, now)
		if err != nil {
			return nil, err
		}
		current, err := unit.Configurations().ByListing(ctx, string(listing.ID))
		switch {
		case err == nil:
			cfg.Version = current.Version
		case !errors.Is(err, domainpricing.ErrConfigurationNotFound):
			return nil, domainlistings.Remote("load configuration", err)
		}
	}

	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, domainlistings.Remote("save listing", err)
	}
	if err := unit.Configurations().Save(ctx, &cfg); err != nil {
		return nil, domainlistings.Remote("save configuration", err)
	}
	evts := listing.PendingEvents()
	listing.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), evts); err != nil {
		return nil, err
	}
	if err := unit.Drafts().Delete(ctx, draft.ID); err != nil {
		return nil, domainlistings.Remote("delete draft", err)
	}

	if h.Logger != nil {
		h.Logger.Info("draft published", "draft_id", draft.ID, "listing_id", listing.ID, "host_id", cmd.HostID)
	}
	return &dto.PublishResult{OK: true, ListingID: string(listing.ID), Message: "published"}, nil
}

func (h *PublishDraftHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var (
	_ commands.Handler[PublishDraftCommand, *dto.PublishResult] = (*PublishDraftHandler)(nil)
	_ middleware.ExclusiveCommand                               = PublishDraftCommand{}
)
