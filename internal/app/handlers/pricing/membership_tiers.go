package pricing

import (
	"context"
	"log/slog"
	"strings"

	"staypricing/internal/app/dto"
	"staypricing/internal/app/queries"
	"staypricing/internal/domain/listings"
	"staypricing/internal/domain/membership"
)

const membershipTiersKey = "pricing.membership.tiers"

// MembershipTiersQuery lists the tier table and, for a signed-in guest, their
// current standing.
type MembershipTiersQuery struct {
	GuestID string
}

func (q MembershipTiersQuery) Key() string { return membershipTiersKey }

type MembershipTiersHandler struct {
	Membership membership.Resolver
	Logger     *slog.Logger
}

func (h *MembershipTiersHandler) Handle(ctx context.Context, q MembershipTiersQuery) (dto.MembershipTiers, error) {
	table := h.Membership.Table
	if len(table) == 0 {
		table = membership.DefaultTable
	}
	out := dto.NewMembershipTiers(table)
	guestID := strings.TrimSpace(q.GuestID)
	if guestID == "" {
		return out, nil
	}
	status, err := h.Membership.Resolve(ctx, guestID)
	if err != nil {
		return dto.MembershipTiers{}, listings.Remote("resolve membership", err)
	}
	out.Status = &status
	if h.Logger != nil {
		h.Logger.Debug("membership resolved", "guest_id", guestID, "trips", status.Trips, "tier", status.Tier)
	}
	return out, nil
}

var _ queries.Handler[MembershipTiersQuery, dto.MembershipTiers] = (*MembershipTiersHandler)(nil)
