package drafts

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/dto"
	domainlistings "staypricing/internal/domain/listings"
	domainpricing "staypricing/internal/domain/pricing"
	"staypricing/internal/domain/shared/daterange"
)

const (
	setLongStayKey         = "host.drafts.discounts.long_stay"
	setPropertyDiscountKey = "host.drafts.discounts.property"
	addSeasonalKey         = "host.drafts.discounts.seasonal.add"
	removeSeasonalKey      = "host.drafts.discounts.seasonal.remove"
	addEarlyBirdKey        = "host.drafts.discounts.early_bird.add"
	removeEarlyBirdKey     = "host.drafts.discounts.early_bird.remove"
)

type SetLongStayCommand struct {
	HostScope
	DraftID string
	Weekly  decimal.Decimal
	Monthly decimal.Decimal
}

func (c SetLongStayCommand) Key() string     { return setLongStayKey }
func (c SetLongStayCommand) Validate() error { return validateDraftRef(c.HostScope, c.DraftID) }

type SetLongStayHandler struct {
	Base
}

func (h *SetLongStayHandler) Handle(ctx context.Context, cmd SetLongStayCommand) (*dto.Draft, error) {
	return h.mutate(ctx, cmd.HostID, cmd.DraftID, func(d *domainlistings.Draft, now time.Time) error {
		if err := h.rules().SetLongStay(&d.Pricing, cmd.Weekly, cmd.Monthly); err != nil {
			return err
		}
		d.Touch(now)
		return nil
	})
}

type SetPropertyDiscountCommand struct {
	HostScope
	DraftID string
	Percent decimal.Decimal
}

func (c SetPropertyDiscountCommand) Key() string     { return setPropertyDiscountKey }
func (c SetPropertyDiscountCommand) Validate() error { return validateDraftRef(c.HostScope, c.DraftID) }

type SetPropertyDiscountHandler struct {
	Base
}

func (h *SetPropertyDiscountHandler) Handle(ctx context.Context, cmd SetPropertyDiscountCommand) (*dto.Draft, error) {
	return h.mutate(ctx, cmd.HostID, cmd.DraftID, func(d *domainlistings.Draft, now time.Time) error {
		if err := h.rules().SetPropertyDiscount(&d.Pricing, cmd.Percent); err != nil {
			return err
		}
		d.Touch(now)
		return nil
	})
}

// AddSeasonalCommand adds a seasonal rule, or edits the one with RuleID.
type AddSeasonalCommand struct {
	HostScope
	DraftID string
	RuleID  string
	From    time.Time
	To      time.Time
	Percent decimal.Decimal
}

func (c AddSeasonalCommand) Key() string     { return addSeasonalKey }
func (c AddSeasonalCommand) Validate() error { return validateDraftRef(c.HostScope, c.DraftID) }

type AddSeasonalHandler struct {
	Base
}

func (h *AddSeasonalHandler) Handle(ctx context.Context, cmd AddSeasonalCommand) (*dto.Draft, error) {
	rule := domainpricing.SeasonalDiscount{
		ID:      strings.TrimSpace(cmd.RuleID),
		Period:  daterange.Period{From: cmd.From, To: cmd.To},
		Percent: cmd.Percent,
	}
	return h.mutate(ctx, cmd.HostID, cmd.DraftID, func(d *domainlistings.Draft, now time.Time) error {
		accepted, err := h.rules().AddSeasonal(&d.Pricing, rule)
		if err != nil {
			return err
		}
		d.Touch(now)
		if h.Logger != nil {
			h.Logger.Debug("seasonal rule accepted", "draft_id", d.ID, "rule_id", accepted.ID)
		}
		return nil
	})
}

type RemoveSeasonalCommand struct {
	HostScope
	DraftID string
	RuleID  string
}

func (c RemoveSeasonalCommand) Key() string     { return removeSeasonalKey }
func (c RemoveSeasonalCommand) Validate() error { return validateDraftRef(c.HostScope, c.DraftID) }

type RemoveSeasonalHandler struct {
	Base
}

func (h *RemoveSeasonalHandler) Handle(ctx context.Context, cmd RemoveSeasonalCommand) (*dto.Draft, error) {
	return h.mutate(ctx, cmd.HostID, cmd.DraftID, func(d *domainlistings.Draft, now time.Time) error {
		if h.rules().RemoveSeasonal(&d.Pricing, cmd.RuleID) {
			d.Touch(now)
		}
		return nil
	})
}

type AddEarlyBirdCommand struct {
	HostScope
	DraftID    string
	RuleID     string
	DaysBefore int
	Percent    decimal.Decimal
}

func (c AddEarlyBirdCommand) Key() string     { return addEarlyBirdKey }
func (c AddEarlyBirdCommand) Validate() error { return validateDraftRef(c.HostScope, c.DraftID) }

type AddEarlyBirdHandler struct {
	Base
}

func (h *AddEarlyBirdHandler) Handle(ctx context.Context, cmd AddEarlyBirdCommand) (*dto.Draft, error) {
	rule := domainpricing.EarlyBirdDiscount{
		ID:         strings.TrimSpace(cmd.RuleID),
		DaysBefore: cmd.DaysBefore,
		Percent:    cmd.Percent,
	}
	return h.mutate(ctx, cmd.HostID, cmd.DraftID, func(d *domainlistings.Draft, now time.Time) error {
		if _, err := h.rules().AddEarlyBird(&d.Pricing, rule); err != nil {
			return err
		}
		d.Touch(now)
		return nil
	})
}

type RemoveEarlyBirdCommand struct {
	HostScope
	DraftID string
	RuleID  string
}

func (c RemoveEarlyBirdCommand) Key() string     { return removeEarlyBirdKey }
func (c RemoveEarlyBirdCommand) Validate() error { return validateDraftRef(c.HostScope, c.DraftID) }

type RemoveEarlyBirdHandler struct {
	Base
}

func (h *RemoveEarlyBirdHandler) Handle(ctx context.Context, cmd RemoveEarlyBirdCommand) (*dto.Draft, error) {
	return h.mutate(ctx, cmd.HostID, cmd.DraftID, func(d *domainlistings.Draft, now time.Time) error {
		if h.rules().RemoveEarlyBird(&d.Pricing, cmd.RuleID) {
			d.Touch(now)
		}
		return nil
	})
}

var (
	_ commands.Handler[SetLongStayCommand, *dto.Draft]         = (*SetLongStayHandler)(nil)
	_ commands.Handler[SetPropertyDiscountCommand, *dto.Draft] = (*SetPropertyDiscountHandler)(nil)
	_ commands.Handler[AddSeasonalCommand, *dto.Draft]         = (*AddSeasonalHandler)(nil)
	_ commands.Handler[RemoveSeasonalCommand, *dto.Draft]      = (*RemoveSeasonalHandler)(nil)
	_ commands.Handler[AddEarlyBirdCommand, *dto.Draft]        = (*AddEarlyBirdHandler)(nil)
	_ commands.Handler[RemoveEarlyBirdCommand, *dto.Draft]     = (*RemoveEarlyBirdHandler)(nil)
)
