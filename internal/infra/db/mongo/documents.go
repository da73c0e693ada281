package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domainpricing "staypricing/internal/domain/pricing"
	"staypricing/internal/domain/shared/daterange"
	"staypricing/internal/domain/shared/money"
)

// Decimals are stored as strings so amounts survive without float rounding.

type moneyDocument struct {
	Amount   string `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount.String(), Currency: m.Currency}
}

func (d moneyDocument) toMoney() (money.Money, error) {
	amount, err := parseDecimal(d.Amount)
	if err != nil {
		return money.Money{}, err
	}
	return money.Money{Amount: amount, Currency: d.Currency}, nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("mongo: corrupt decimal %q: %w", raw, err)
	}
	return d, nil
}

type feeDocument struct {
	Kind    string        `bson:"kind"`
	Amount  moneyDocument `bson:"amount"`
	Percent string        `bson:"percent"`
}

func newFeeDocument(f domainpricing.FeeRule) feeDocument {
	return feeDocument{Kind: string(f.Kind), Amount: newMoneyDocument(f.Amount), Percent: f.Percent.String()}
}

func (d feeDocument) toFee() (domainpricing.FeeRule, error) {
	amount, err := d.Amount.toMoney()
	if err != nil {
		return domainpricing.FeeRule{}, err
	}
	percent, err := parseDecimal(d.Percent)
	if err != nil {
		return domainpricing.FeeRule{}, err
	}
	return domainpricing.FeeRule{Kind: domainpricing.FeeKind(d.Kind), Amount: amount, Percent: percent}, nil
}

type seasonalDocument struct {
	ID      string    `bson:"id"`
	From    time.Time `bson:"from"`
	To      time.Time `bson:"to"`
	Percent string    `bson:"percent"`
}

type earlyBirdDocument struct {
	ID         string `bson:"id"`
	DaysBefore int    `bson:"days_before"`
	Percent    string `bson:"percent"`
}

type discountsDocument struct {
	Weekly          string              `bson:"weekly"`
	Monthly         string              `bson:"monthly"`
	PropertyPercent string              `bson:"property_percent"`
	Seasonal        []seasonalDocument  `bson:"seasonal"`
	EarlyBird       []earlyBirdDocument `bson:"early_bird"`
}

type configurationDocument struct {
	ListingID           string            `bson:"_id"`
	Kind                string            `bson:"kind"`
	BasePrice           moneyDocument     `bson:"base_price"`
	CleaningFee         moneyDocument     `bson:"cleaning_fee"`
	ExtraGuestFee       moneyDocument     `bson:"extra_guest_fee"`
	ExtraGuestThreshold int               `bson:"extra_guest_threshold"`
	MaxOccupancy        int               `bson:"max_occupancy"`
	ServiceFee          feeDocument       `bson:"service_fee"`
	TaxFee              feeDocument       `bson:"tax_fee"`
	Discounts           discountsDocument `bson:"discounts"`
	Version             int64             `bson:"version"`
	UpdatedAt           time.Time         `bson:"updated_at"`
}

func newConfigurationDocument(c domainpricing.Configuration) configurationDocument {
	doc := configurationDocument{
		ListingID:           c.ListingID,
		Kind:                string(c.Kind),
		BasePrice:           newMoneyDocument(c.BasePrice),
		CleaningFee:         newMoneyDocument(c.CleaningFee),
		ExtraGuestFee:       newMoneyDocument(c.ExtraGuestFee),
		ExtraGuestThreshold: c.ExtraGuestThreshold,
		MaxOccupancy:        c.MaxOccupancy,
		ServiceFee:          newFeeDocument(c.ServiceFee),
		TaxFee:              newFeeDocument(c.TaxFee),
		Discounts: discountsDocument{
			Weekly:          c.Discounts.Weekly.String(),
			Monthly:         c.Discounts.Monthly.String(),
			PropertyPercent: c.Discounts.PropertyPercent.String(),
		},
		Version:   c.Version,
		UpdatedAt: c.UpdatedAt,
	}
	for _, s := range c.Discounts.Seasonal {
		doc.Discounts.Seasonal = append(doc.Discounts.Seasonal, seasonalDocument{
			ID: s.ID, From: s.Period.From, To: s.Period.To, Percent: s.Percent.String(),
		})
	}
	for _, e := range c.Discounts.EarlyBird {
		doc.Discounts.EarlyBird = append(doc.Discounts.EarlyBird, earlyBirdDocument{
			ID: e.ID, DaysBefore: e.DaysBefore, Percent: e.Percent.String(),
		})
	}
	return doc
}

func (d configurationDocument) toConfiguration() (domainpricing.Configuration, error) {
	var (
		cfg = domainpricing.Configuration{
			ListingID:           d.ListingID,
			Kind:                domainpricing.Kind(d.Kind),
			ExtraGuestThreshold: d.ExtraGuestThreshold,
			MaxOccupancy:        d.MaxOccupancy,
			Version:             d.Version,
			UpdatedAt:           d.UpdatedAt,
		}
		err error
	)
	if cfg.BasePrice, err = d.BasePrice.toMoney(); err != nil {
		return cfg, err
	}
	if cfg.CleaningFee, err = d.CleaningFee.toMoney(); err != nil {
		return cfg, err
	}
	if cfg.ExtraGuestFee, err = d.ExtraGuestFee.toMoney(); err != nil {
		return cfg, err
	}
	if cfg.ServiceFee, err = d.ServiceFee.toFee(); err != nil {
		return cfg, err
	}
	if cfg.TaxFee, err = d.TaxFee.toFee(); err != nil {
		return cfg, err
	}
	if cfg.Discounts.Weekly, err = parseDecimal(d.Discounts.Weekly); err != nil {
		return cfg, err
	}
	if cfg.Discounts.Monthly, err = parseDecimal(d.Discounts.Monthly); err != nil {
		return cfg, err
	}
	if cfg.Discounts.PropertyPercent, err = parseDecimal(d.Discounts.PropertyPercent); err != nil {
		return cfg, err
	}
	for _, s := range d.Discounts.Seasonal {
		percent, err := parseDecimal(s.Percent)
		if err != nil {
			return cfg, err
		}
		cfg.Discounts.Seasonal = append(cfg.Discounts.Seasonal, domainpricing.SeasonalDiscount{
			ID:      s.ID,
			Period:  daterange.Period{From: s.From.UTC(), To: s.To.UTC()},
			Percent: percent,
		})
	}
	for _, e := range d.Discounts.EarlyBird {
		percent, err := parseDecimal(e.Percent)
		if err != nil {
			return cfg, err
		}
		cfg.Discounts.EarlyBird = append(cfg.Discounts.EarlyBird, domainpricing.EarlyBirdDiscount{
			ID: e.ID, DaysBefore: e.DaysBefore, Percent: percent,
		})
	}
	return cfg, nil
}

type paramsDocument struct {
	CheckIn  time.Time `bson:"check_in"`
	CheckOut time.Time `bson:"check_out"`
	Date     time.Time `bson:"date"`
	Guests   int       `bson:"guests"`
	BookedAt time.Time `bson:"booked_at"`
}

func newParamsDocument(p domainpricing.Params) paramsDocument {
	return paramsDocument{
		CheckIn:  p.Range.CheckIn,
		CheckOut: p.Range.CheckOut,
		Date:     p.Date,
		Guests:   p.Guests,
		BookedAt: p.BookedAt,
	}
}

func (d paramsDocument) toParams() domainpricing.Params {
	return domainpricing.Params{
		Range:    daterange.DateRange{CheckIn: utcOrZero(d.CheckIn), CheckOut: utcOrZero(d.CheckOut)},
		Date:     utcOrZero(d.Date),
		Guests:   d.Guests,
		BookedAt: utcOrZero(d.BookedAt),
	}
}

type appliedDocument struct {
	Source  string `bson:"source"`
	RuleID  string `bson:"rule_id,omitempty"`
	Percent string `bson:"percent"`
}

type breakdownDocument struct {
	Units           int               `bson:"units"`
	Subtotal        moneyDocument     `bson:"subtotal"`
	DiscountPercent string            `bson:"discount_percent"`
	Discount        moneyDocument     `bson:"discount"`
	CleaningFee     moneyDocument     `bson:"cleaning_fee"`
	ExtraGuestFee   moneyDocument     `bson:"extra_guest_fee"`
	ServiceFee      moneyDocument     `bson:"service_fee"`
	TaxFee          moneyDocument     `bson:"tax_fee"`
	Total           moneyDocument     `bson:"total"`
	Applied         []appliedDocument `bson:"applied"`
}

func newBreakdownDocument(b domainpricing.Breakdown) breakdownDocument {
	doc := breakdownDocument{
		Units:           b.Units,
		Subtotal:        newMoneyDocument(b.Subtotal),
		DiscountPercent: b.DiscountPercent.String(),
		Discount:        newMoneyDocument(b.Discount),
		CleaningFee:     newMoneyDocument(b.CleaningFee),
		ExtraGuestFee:   newMoneyDocument(b.ExtraGuestFee),
		ServiceFee:      newMoneyDocument(b.ServiceFee),
		TaxFee:          newMoneyDocument(b.TaxFee),
		Total:           newMoneyDocument(b.Total),
	}
	for _, a := range b.Applied {
		doc.Applied = append(doc.Applied, appliedDocument{Source: string(a.Source), RuleID: a.RuleID, Percent: a.Percent.String()})
	}
	return doc
}

func (d breakdownDocument) toBreakdown() (domainpricing.Breakdown, error) {
	out := domainpricing.Breakdown{Units: d.Units}
	var err error
	if out.DiscountPercent, err = parseDecimal(d.DiscountPercent); err != nil {
		return out, err
	}
	amounts := []struct {
		src moneyDocument
		dst *money.Money
	}{
		{d.Subtotal, &out.Subtotal},
		{d.Discount, &out.Discount},
		{d.CleaningFee, &out.CleaningFee},
		{d.ExtraGuestFee, &out.ExtraGuestFee},
		{d.ServiceFee, &out.ServiceFee},
		{d.TaxFee, &out.TaxFee},
		{d.Total, &out.Total},
	}
	for _, a := range amounts {
		if *a.dst, err = a.src.toMoney(); err != nil {
			return out, err
		}
	}
	for _, a := range d.Applied {
		percent, err := parseDecimal(a.Percent)
		if err != nil {
			return out, err
		}
		out.Applied = append(out.Applied, domainpricing.AppliedDiscount{
			Source:  domainpricing.DiscountSource(a.Source),
			RuleID:  a.RuleID,
			Percent: percent,
		})
	}
	return out, nil
}

func utcOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC()
}
