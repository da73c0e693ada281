package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/dto"
	domainlistings "staypricing/internal/domain/listings"
)

const updateSectionKey = "host.drafts.update_section"

// UpdateSectionCommand merges a JSON patch into one section of a draft.
type UpdateSectionCommand struct {
	HostScope
	DraftID string
	Section string
	Payload json.RawMessage
}

func (c UpdateSectionCommand) Key() string { return updateSectionKey }

func (c UpdateSectionCommand) Validate() error {
	return validateDraftRef(c.HostScope, c.DraftID)
}

type UpdateSectionHandler struct {
	Base
}

func (h *UpdateSectionHandler) Handle(ctx context.Context, cmd UpdateSectionCommand) (*dto.Draft, error) {
	patch, err := domainlistings.NewPatch(domainlistings.Section(cmd.Section))
	if err != nil {
		return nil, err
	}
	if len(cmd.Payload) > 0 {
		if err := json.Unmarshal(cmd.Payload, patch); err != nil {
			return nil, fmt.Errorf("decode %s patch: %w", cmd.Section, err)
		}
	}
	out, err := h.mutate(ctx, cmd.HostID, cmd.DraftID, func(d *domainlistings.Draft, now time.Time) error {
		return d.UpdateField(patch, now)
	})
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Debug("draft section updated", "draft_id", cmd.DraftID, "section", cmd.Section)
	}
	return out, nil
}

var _ commands.Handler[UpdateSectionCommand, *dto.Draft] = (*UpdateSectionHandler)(nil)
