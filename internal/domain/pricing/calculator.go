package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"staypricing/internal/domain/shared/daterange"
	"staypricing/internal/domain/shared/money"
)

const (
	weeklyMinNights  = 7
	monthlyMinNights = 28
)

// DiscountSource names where a slice of the combined discount percent came from.
type DiscountSource string

const (
	SourceProperty   DiscountSource = "property"
	SourceMembership DiscountSource = "membership"
	SourceWeekly     DiscountSource = "weekly"
	SourceMonthly    DiscountSource = "monthly"
	SourceSeasonal   DiscountSource = "seasonal"
	SourceEarlyBird  DiscountSource = "early_bird"
)

// Params are the live booking inputs of one quote.
type Params struct {
	Range    daterange.DateRange `json:"range"`
	Date     time.Time           `json:"date"`
	Guests   int                 `json:"guests"`
	BookedAt time.Time           `json:"booked_at"`
}

// Validate checks the params carry the date shape required by kind.
func (p Params) Validate(kind Kind) error {
	switch kind {
	case KindStay:
		if err := p.Range.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		if p.Guests < 1 {
			return fmt.Errorf("%w: at least one guest is required", ErrInvalidParams)
		}
	case KindExperience:
		if p.Date.IsZero() {
			return fmt.Errorf("%w: experience date is required", ErrInvalidParams)
		}
	default:
		return invalid("kind", fmt.Sprintf("unknown listing kind %q", kind))
	}
	return nil
}

// StartDate is the first day the booking covers.
func (p Params) StartDate(kind Kind) time.Time {
	if kind == KindExperience {
		return daterange.Day(p.Date)
	}
	return p.Range.CheckIn
}

// Units is nights for a stay and guests for an experience.
func (p Params) Units(kind Kind) int {
	if kind == KindExperience {
		return p.Guests
	}
	return p.Range.Nights()
}

// AppliedDiscount itemizes one contribution to the combined discount percent.
type AppliedDiscount struct {
	Source  DiscountSource  `json:"source"`
	RuleID  string          `json:"rule_id,omitempty"`
	Percent decimal.Decimal `json:"percent"`
}

// Breakdown is the immutable result of a quote, in the canonical currency.
type Breakdown struct {
	Units           int               `json:"units"`
	Subtotal        money.Money       `json:"subtotal"`
	DiscountPercent decimal.Decimal   `json:"discount_percent"`
	Discount        money.Money       `json:"discount"`
	CleaningFee     money.Money       `json:"cleaning_fee"`
	ExtraGuestFee   money.Money       `json:"extra_guest_fee"`
	ServiceFee      money.Money       `json:"service_fee"`
	TaxFee          money.Money       `json:"tax_fee"`
	Total           money.Money       `json:"total"`
	Applied         []AppliedDiscount `json:"applied,omitempty"`
}

// Equal compares every amount numerically.
func (b Breakdown) Equal(other Breakdown) bool {
	if b.Units != other.Units || !b.DiscountPercent.Equal(other.DiscountPercent) || len(b.Applied) != len(other.Applied) {
		return false
	}
	pairs := [][2]money.Money{
		{b.Subtotal, other.Subtotal},
		{b.Discount, other.Discount},
		{b.CleaningFee, other.CleaningFee},
		{b.ExtraGuestFee, other.ExtraGuestFee},
		{b.ServiceFee, other.ServiceFee},
		{b.TaxFee, other.TaxFee},
		{b.Total, other.Total},
	}
	for _, p := range pairs {
		if !p[0].Equal(p[1]) {
			return false
		}
	}
	for i := range b.Applied {
		a, o := b.Applied[i], other.Applied[i]
		if a.Source != o.Source || a.RuleID != o.RuleID || !a.Percent.Equal(o.Percent) {
			return false
		}
	}
	return true
}

// Compute derives the price breakdown for one booking. It is a pure function
// of its inputs and never mutates cfg.
func Compute(cfg Configuration, params Params, membershipPercent decimal.Decimal) (Breakdown, error) {
	if err := cfg.Validate(); err != nil {
		return Breakdown{}, err
	}
	if membershipPercent.IsNegative() {
		return Breakdown{}, invalid("membership_percent", "must not be negative")
	}
	if err := params.Validate(cfg.Kind); err != nil {
		return Breakdown{}, err
	}
	units := params.Units(cfg.Kind)
	if units < 1 {
		return Breakdown{}, invalid("units", "at least one unit is required")
	}
	if cfg.MaxOccupancy > 0 && params.Guests > cfg.MaxOccupancy {
		return Breakdown{}, fmt.Errorf("%w: %d guests, max %d", ErrTooManyGuests, params.Guests, cfg.MaxOccupancy)
	}

	subtotal := canonical(cfg.BasePrice).Multiply(int64(units))

	applied := collectDiscounts(cfg, params, membershipPercent)
	percent := decimal.Zero
	for _, a := range applied {
		percent = percent.Add(a.Percent)
	}
	percent = clampPercent(percent)
	discount := subtotal.Percent(percent)

	cleaning := canonical(cfg.CleaningFee)
	extra := money.Zero(money.Canonical)
	if params.Guests > cfg.ExtraGuestThreshold {
		extra = canonical(cfg.ExtraGuestFee).Multiply(int64(params.Guests - cfg.ExtraGuestThreshold))
	}
	service := cfg.ServiceFee.Resolve(subtotal)
	tax := cfg.TaxFee.Resolve(subtotal)

	total := subtotal.Amount.
		Sub(discount.Amount).
		Add(cleaning.Amount).
		Add(extra.Amount).
		Add(service.Amount).
		Add(tax.Amount)

	return Breakdown{
		Units:           units,
		Subtotal:        subtotal,
		DiscountPercent: percent,
		Discount:        discount,
		CleaningFee:     cleaning,
		ExtraGuestFee:   extra,
		ServiceFee:      service,
		TaxFee:          tax,
		Total:           money.Money{Amount: total, Currency: money.Canonical},
		Applied:         applied,
	}, nil
}

func collectDiscounts(cfg Configuration, params Params, membershipPercent decimal.Decimal) []AppliedDiscount {
	var applied []AppliedDiscount
	add := func(source DiscountSource, ruleID string, p decimal.Decimal) {
		if p.IsPositive() {
			applied = append(applied, AppliedDiscount{Source: source, RuleID: ruleID, Percent: p})
		}
	}

	d := cfg.Discounts
	add(SourceProperty, "", d.PropertyPercent)
	add(SourceMembership, "", membershipPercent)

	if cfg.Kind == KindStay {
		nights := params.Range.Nights()
		switch {
		case nights >= monthlyMinNights && d.Monthly.IsPositive():
			add(SourceMonthly, "", d.Monthly)
		case nights >= weeklyMinNights:
			add(SourceWeekly, "", d.Weekly)
		}
	}

	start := params.StartDate(cfg.Kind)
	for _, s := range d.Seasonal {
		if s.Period.Contains(start) {
			add(SourceSeasonal, s.ID, s.Percent)
			break
		}
	}

	if !params.BookedAt.IsZero() {
		lead := daterange.DaysBetween(params.BookedAt, start)
		var best *EarlyBirdDiscount
		for i := range d.EarlyBird {
			rule := &d.EarlyBird[i]
			if rule.DaysBefore > lead {
				continue
			}
			if best == nil || rule.DaysBefore > best.DaysBefore {
				best = rule
			}
		}
		if best != nil {
			add(SourceEarlyBird, best.ID, best.Percent)
		}
	}
	return applied
}

func clampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundredPercent) {
		return hundredPercent
	}
	return p
}
