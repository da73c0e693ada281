package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"staypricing/internal/domain/shared/daterange"
	"staypricing/internal/domain/shared/money"
)

var (
	zeroPercent    = decimal.Zero
	hundredPercent = decimal.NewFromInt(100)
)

// Kind distinguishes the two listing flows; it decides what a pricing unit is.
type Kind string

const (
	KindStay       Kind = "stay"
	KindExperience Kind = "experience"
)

func (k Kind) Valid() bool {
	return k == KindStay || k == KindExperience
}

// FeeKind tags a FeeRule.
type FeeKind string

const (
	FeeNone       FeeKind = ""
	FeeFixed      FeeKind = "fixed"
	FeePercentage FeeKind = "percentage"
)

// FeeRule is either a fixed amount or a percentage of the pre-discount subtotal.
type FeeRule struct {
	Kind    FeeKind         `json:"kind"`
	Amount  money.Money     `json:"amount"`
	Percent decimal.Decimal `json:"percent"`
}

// Fixed builds a fixed-amount fee.
func Fixed(amount money.Money) FeeRule {
	return FeeRule{Kind: FeeFixed, Amount: amount}
}

// Percentage builds a percentage fee.
func Percentage(percent decimal.Decimal) FeeRule {
	return FeeRule{Kind: FeePercentage, Percent: percent}
}

// Resolve returns the fee amount for the given undiscounted subtotal.
func (f FeeRule) Resolve(subtotal money.Money) money.Money {
	switch f.Kind {
	case FeeFixed:
		return canonical(f.Amount)
	case FeePercentage:
		return subtotal.Percent(f.Percent)
	default:
		return money.Zero(money.Canonical)
	}
}

// Validate checks the fee against its kind. field prefixes the reported field name.
func (f FeeRule) Validate(field string) error {
	switch f.Kind {
	case FeeNone:
		return nil
	case FeeFixed:
		return checkMoney(field+".amount", f.Amount)
	case FeePercentage:
		return checkPercent(field+".percent", f.Percent)
	default:
		return invalid(field+".kind", fmt.Sprintf("unknown fee kind %q", f.Kind))
	}
}

// SeasonalDiscount applies to stays/experiences starting inside Period.
type SeasonalDiscount struct {
	ID      string           `json:"id"`
	Period  daterange.Period `json:"period"`
	Percent decimal.Decimal  `json:"percent"`
}

// EarlyBirdDiscount unlocks when booking at least DaysBefore days ahead.
type EarlyBirdDiscount struct {
	ID         string          `json:"id"`
	DaysBefore int             `json:"days_before"`
	Percent    decimal.Decimal `json:"percent"`
}

// Discounts groups all host-authored discount rules of a listing.
type Discounts struct {
	Weekly          decimal.Decimal     `json:"weekly"`
	Monthly         decimal.Decimal     `json:"monthly"`
	Seasonal        []SeasonalDiscount  `json:"seasonal"`
	EarlyBird       []EarlyBirdDiscount `json:"early_bird"`
	PropertyPercent decimal.Decimal     `json:"property_percent"`
}

func (d Discounts) clone() Discounts {
	out := d
	out.Seasonal = append([]SeasonalDiscount(nil), d.Seasonal...)
	out.EarlyBird = append([]EarlyBirdDiscount(nil), d.EarlyBird...)
	return out
}

func (d *Discounts) sortSeasonal() {
	sort.SliceStable(d.Seasonal, func(i, j int) bool {
		return d.Seasonal[i].Period.From.Before(d.Seasonal[j].Period.From)
	})
}

// Configuration is the set of fees and discounts a host attaches to a listing.
type Configuration struct {
	ListingID           string      `json:"listing_id"`
	Kind                Kind        `json:"kind"`
	BasePrice           money.Money `json:"base_price"`
	CleaningFee         money.Money `json:"cleaning_fee"`
	ExtraGuestFee       money.Money `json:"extra_guest_fee"`
	ExtraGuestThreshold int         `json:"extra_guest_threshold"`
	MaxOccupancy        int         `json:"max_occupancy"`
	ServiceFee          FeeRule     `json:"service_fee"`
	TaxFee              FeeRule     `json:"tax_fee"`
	Discounts           Discounts   `json:"discounts"`
	Version             int64       `json:"version"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// NewConfiguration returns an empty configuration for a listing of the given kind.
func NewConfiguration(listingID string, kind Kind) Configuration {
	return Configuration{
		ListingID:           listingID,
		Kind:                kind,
		BasePrice:           money.Zero(money.Canonical),
		CleaningFee:         money.Zero(money.Canonical),
		ExtraGuestFee:       money.Zero(money.Canonical),
		ExtraGuestThreshold: 1,
		Discounts: Discounts{
			Weekly:          decimal.Zero,
			Monthly:         decimal.Zero,
			PropertyPercent: decimal.Zero,
		},
	}
}

// Clone deep-copies the configuration.
func (c Configuration) Clone() Configuration {
	out := c
	out.Discounts = c.Discounts.clone()
	return out
}

// Validate runs the integrity checks the calculator relies on.
func (c Configuration) Validate() error {
	if !c.Kind.Valid() {
		return invalid("kind", fmt.Sprintf("unknown listing kind %q", c.Kind))
	}
	for field, m := range map[string]money.Money{
		"base_price":      c.BasePrice,
		"cleaning_fee":    c.CleaningFee,
		"extra_guest_fee": c.ExtraGuestFee,
	} {
		if err := checkMoney(field, m); err != nil {
			return err
		}
	}
	if c.ExtraGuestThreshold < 1 {
		return invalid("extra_guest_threshold", "must be at least 1")
	}
	if c.MaxOccupancy > 0 && c.ExtraGuestThreshold > c.MaxOccupancy {
		return invalid("extra_guest_threshold", "exceeds max occupancy")
	}
	if err := c.ServiceFee.Validate("service_fee"); err != nil {
		return err
	}
	if err := c.TaxFee.Validate("tax_fee"); err != nil {
		return err
	}
	return c.Discounts.Validate(c.Kind)
}

// Validate checks the rule set on its own, independent of the rest of the configuration.
func (d Discounts) Validate(kind Kind) error {
	for field, p := range map[string]decimal.Decimal{
		"discounts.weekly":           d.Weekly,
		"discounts.monthly":          d.Monthly,
		"discounts.property_percent": d.PropertyPercent,
	} {
		if err := checkPercent(field, p); err != nil {
			return err
		}
	}
	if kind == KindExperience && (d.Weekly.IsPositive() || d.Monthly.IsPositive()) {
		return invalid("discounts", "long-stay discounts apply to stays only")
	}
	for i, s := range d.Seasonal {
		if err := checkPercent("discounts.seasonal.percent", s.Percent); err != nil {
			return err
		}
		if s.Period.To.Before(s.Period.From) {
			return invalid("discounts.seasonal.period", "end precedes start")
		}
		for _, other := range d.Seasonal[i+1:] {
			if s.Period.Overlaps(other.Period) {
				return invalid("discounts.seasonal", "periods overlap")
			}
		}
	}
	seen := make(map[int]struct{}, len(d.EarlyBird))
	for _, e := range d.EarlyBird {
		if err := checkPercent("discounts.early_bird.percent", e.Percent); err != nil {
			return err
		}
		if e.DaysBefore < 1 {
			return invalid("discounts.early_bird.days_before", "must be positive")
		}
		if _, dup := seen[e.DaysBefore]; dup {
			return invalid("discounts.early_bird.days_before", "duplicate rule")
		}
		seen[e.DaysBefore] = struct{}{}
	}
	return nil
}

func checkMoney(field string, m money.Money) error {
	if m.IsNegative() {
		return invalid(field, "must not be negative")
	}
	if m.Currency != "" && m.Currency != money.Canonical {
		return invalid(field, "must be in "+money.Canonical)
	}
	return nil
}

func checkPercent(field string, p decimal.Decimal) error {
	if p.LessThan(zeroPercent) {
		return invalid(field, "must not be negative")
	}
	if p.GreaterThan(hundredPercent) {
		return invalid(field, "must not exceed 100")
	}
	return nil
}

func canonical(m money.Money) money.Money {
	if m.Currency == "" {
		m.Currency = money.Canonical
	}
	return m
}

// ConfigurationRepository persists published configurations.
type ConfigurationRepository interface {
	ByListing(ctx context.Context, listingID string) (*Configuration, error)
	Save(ctx context.Context, cfg *Configuration) error
}
