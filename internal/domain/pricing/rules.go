package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"staypricing/internal/domain/shared/daterange"
)

const (
	maxRuleSpanDays   = 365
	maxLeadDays       = 365
	maxEarlyBirdDays  = 365
	minEarlyBirdDays  = 1
	longStayStaysOnly = "long-stay discounts apply to stays only"
)

// Validator guards every edit a host makes to the discount rules of a draft.
// A rejected edit leaves the target untouched.
type Validator struct {
	Now   func() time.Time
	NewID func() string
}

// NewValidator returns a validator using the wall clock and random uuids.
func NewValidator() Validator {
	return Validator{}
}

func (v Validator) today() time.Time {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return daterange.Day(now())
}

func (v Validator) newID() string {
	if v.NewID != nil {
		return v.NewID()
	}
	return uuid.NewString()
}

// SetLongStay replaces the weekly and monthly percents together.
func (v Validator) SetLongStay(cfg *Configuration, weekly, monthly decimal.Decimal) error {
	if err := inclusivePercent("weekly", weekly); err != nil {
		return err
	}
	if err := inclusivePercent("monthly", monthly); err != nil {
		return err
	}
	if cfg.Kind == KindExperience && (weekly.IsPositive() || monthly.IsPositive()) {
		return NewRuleRejectedError(KindOutOfRange, longStayStaysOnly)
	}
	cfg.Discounts.Weekly = weekly
	cfg.Discounts.Monthly = monthly
	return nil
}

// SetPropertyDiscount sets the flat discount applied regardless of membership.
func (v Validator) SetPropertyDiscount(cfg *Configuration, percent decimal.Decimal) error {
	if err := inclusivePercent("property discount", percent); err != nil {
		return err
	}
	cfg.Discounts.PropertyPercent = percent
	return nil
}

// AddSeasonal appends rule, or replaces the rule with the same ID.
// The rule being replaced is ignored for the overlap check.
func (v Validator) AddSeasonal(cfg *Configuration, rule SeasonalDiscount) (SeasonalDiscount, error) {
	if err := exclusivePercent("seasonal", rule.Percent); err != nil {
		return SeasonalDiscount{}, err
	}
	if rule.Period.From.IsZero() || rule.Period.To.IsZero() {
		return SeasonalDiscount{}, NewRuleRejectedError(KindOutOfRange, "seasonal discount dates required: both a start and an end date")
	}
	from, to := daterange.Day(rule.Period.From), daterange.Day(rule.Period.To)
	today := v.today()
	if from.Before(today) || to.Before(today) {
		return SeasonalDiscount{}, NewRuleRejectedError(KindPastDate, "seasonal dates must not be in the past")
	}
	if to.Before(from) {
		return SeasonalDiscount{}, NewRuleRejectedError(KindInvertedRange, "seasonal end date %s precedes start date %s", isoDay(to), isoDay(from))
	}
	if daterange.DaysBetween(from, to) > maxRuleSpanDays {
		return SeasonalDiscount{}, NewRuleRejectedError(KindRangeTooLong, "seasonal discount may span at most %d days", maxRuleSpanDays)
	}
	if from.After(daterange.AddDays(today, maxLeadDays)) {
		return SeasonalDiscount{}, NewRuleRejectedError(KindTooFarInFuture, "seasonal discount must start within %d days", maxLeadDays)
	}
	candidate := daterange.Period{From: from, To: to}
	for _, existing := range cfg.Discounts.Seasonal {
		if rule.ID != "" && existing.ID == rule.ID {
			continue
		}
		if candidate.Overlaps(existing.Period) {
			return SeasonalDiscount{}, NewRuleRejectedError(KindOverlap, "overlaps the seasonal discount from %s to %s", isoDay(existing.Period.From), isoDay(existing.Period.To))
		}
	}

	accepted := SeasonalDiscount{ID: rule.ID, Period: candidate, Percent: rule.Percent}
	if accepted.ID == "" {
		accepted.ID = v.newID()
	}
	discounts := cfg.Discounts.clone()
	if i := seasonalIndex(discounts.Seasonal, accepted.ID); i >= 0 {
		discounts.Seasonal[i] = accepted
	} else {
		discounts.Seasonal = append(discounts.Seasonal, accepted)
	}
	discounts.sortSeasonal()
	cfg.Discounts = discounts
	return accepted, nil
}

// AddEarlyBird appends rule, or replaces the rule with the same ID.
func (v Validator) AddEarlyBird(cfg *Configuration, rule EarlyBirdDiscount) (EarlyBirdDiscount, error) {
	if err := exclusivePercent("early-bird", rule.Percent); err != nil {
		return EarlyBirdDiscount{}, err
	}
	if rule.DaysBefore < minEarlyBirdDays || rule.DaysBefore > maxEarlyBirdDays {
		return EarlyBirdDiscount{}, NewRuleRejectedError(KindOutOfRange, "days before must be between %d and %d", minEarlyBirdDays, maxEarlyBirdDays)
	}
	for _, existing := range cfg.Discounts.EarlyBird {
		if rule.ID != "" && existing.ID == rule.ID {
			continue
		}
		if existing.DaysBefore == rule.DaysBefore {
			return EarlyBirdDiscount{}, NewRuleRejectedError(KindDuplicateRule, "an early-bird discount for %d days already exists", rule.DaysBefore)
		}
	}

	accepted := rule
	if accepted.ID == "" {
		accepted.ID = v.newID()
	}
	discounts := cfg.Discounts.clone()
	if i := earlyBirdIndex(discounts.EarlyBird, accepted.ID); i >= 0 {
		discounts.EarlyBird[i] = accepted
	} else {
		discounts.EarlyBird = append(discounts.EarlyBird, accepted)
	}
	cfg.Discounts = discounts
	return accepted, nil
}

// RemoveSeasonal drops the rule with the given id. Unknown ids are ignored.
func (v Validator) RemoveSeasonal(cfg *Configuration, id string) bool {
	i := seasonalIndex(cfg.Discounts.Seasonal, id)
	if i < 0 {
		return false
	}
	discounts := cfg.Discounts.clone()
	discounts.Seasonal = append(discounts.Seasonal[:i], discounts.Seasonal[i+1:]...)
	cfg.Discounts = discounts
	return true
}

// RemoveEarlyBird drops the rule with the given id. Unknown ids are ignored.
func (v Validator) RemoveEarlyBird(cfg *Configuration, id string) bool {
	i := earlyBirdIndex(cfg.Discounts.EarlyBird, id)
	if i < 0 {
		return false
	}
	discounts := cfg.Discounts.clone()
	discounts.EarlyBird = append(discounts.EarlyBird[:i], discounts.EarlyBird[i+1:]...)
	cfg.Discounts = discounts
	return true
}

func seasonalIndex(rules []SeasonalDiscount, id string) int {
	if id == "" {
		return -1
	}
	for i, r := range rules {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func earlyBirdIndex(rules []EarlyBirdDiscount, id string) int {
	if id == "" {
		return -1
	}
	for i, r := range rules {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func inclusivePercent(name string, p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundredPercent) {
		return NewRuleRejectedError(KindOutOfRange, "%s percent must be between 0 and 100", name)
	}
	return nil
}

func exclusivePercent(name string, p decimal.Decimal) error {
	if !p.IsPositive() || p.GreaterThan(hundredPercent) {
		return NewRuleRejectedError(KindOutOfRange, "%s percent must be greater than 0 and at most 100", name)
	}
	return nil
}

func isoDay(t time.Time) string {
	return t.Format(time.DateOnly)
}
