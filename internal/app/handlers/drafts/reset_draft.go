package drafts

import (
	"context"
	"time"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/dto"
	domainlistings "staypricing/internal/domain/listings"
)

const resetDraftKey = "host.drafts.reset"

type ResetDraftCommand struct {
	HostScope
	DraftID string
}

func (c ResetDraftCommand) Key() string     { return resetDraftKey }
func (c ResetDraftCommand) Validate() error { return validateDraftRef(c.HostScope, c.DraftID) }

type ResetDraftHandler struct {
	Base
}

func (h *ResetDraftHandler) Handle(ctx context.Context, cmd ResetDraftCommand) (*dto.Draft, error) {
	out, err := h.mutate(ctx, cmd.HostID, cmd.DraftID, func(d *domainlistings.Draft, now time.Time) error {
		d.Reset(now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("draft reset", "draft_id", cmd.DraftID)
	}
	return out, nil
}

var _ commands.Handler[ResetDraftCommand, *dto.Draft] = (*ResetDraftHandler)(nil)
