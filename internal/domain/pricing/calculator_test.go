package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypricing/internal/domain/shared/daterange"
	"staypricing/internal/domain/shared/money"
)

func pct(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func stayParams(checkIn, checkOut string, guests int) Params {
	return Params{
		Range:  daterange.DateRange{CheckIn: day(checkIn), CheckOut: day(checkOut)},
		Guests: guests,
	}
}

func scenarioA() Configuration {
	cfg := NewConfiguration("listing-1", KindStay)
	cfg.BasePrice = money.USD("100")
	cfg.CleaningFee = money.USD("20")
	cfg.ServiceFee = Percentage(pct(10))
	cfg.TaxFee = Fixed(money.USD("5"))
	return cfg
}

func assertMoney(t *testing.T, want string, got money.Money) {
	t.Helper()
	assert.True(t, money.USD(want).Equal(got), "want %s, got %s", want, got)
}

func TestComputeScenarioA(t *testing.T) {
	b, err := Compute(scenarioA(), stayParams("2025-07-01", "2025-07-04", 2), pct(5))
	require.NoError(t, err)

	assert.Equal(t, 3, b.Units)
	assertMoney(t, "300", b.Subtotal)
	assertMoney(t, "15", b.Discount)
	assertMoney(t, "20", b.CleaningFee)
	assertMoney(t, "30", b.ServiceFee)
	assertMoney(t, "5", b.TaxFee)
	assertMoney(t, "0", b.ExtraGuestFee)
	assertMoney(t, "340", b.Total)
}

func TestComputeScenarioBExtraGuests(t *testing.T) {
	cfg := scenarioA()
	cfg.ExtraGuestThreshold = 4
	cfg.ExtraGuestFee = money.USD("10")

	b, err := Compute(cfg, stayParams("2025-07-01", "2025-07-04", 6), pct(5))
	require.NoError(t, err)

	assertMoney(t, "20", b.ExtraGuestFee)
	assertMoney(t, "360", b.Total)
}

func TestComputeIsIdempotent(t *testing.T) {
	cfg := scenarioA()
	cfg.Discounts.PropertyPercent = pct(7)
	params := stayParams("2025-07-01", "2025-07-09", 3)
	before := cfg.Clone()

	first, err := Compute(cfg, params, pct(10))
	require.NoError(t, err)
	second, err := Compute(cfg, params, pct(10))
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first, second)
	assert.Equal(t, before, cfg)
}

func TestComputeClampsCombinedDiscount(t *testing.T) {
	tests := []struct {
		name       string
		property   int64
		membership int64
	}{
		{"just over", 90, 15},
		{"both full", 100, 100},
		{"exactly hundred", 85, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := scenarioA()
			cfg.Discounts.PropertyPercent = pct(tt.property)

			b, err := Compute(cfg, stayParams("2025-07-01", "2025-07-04", 2), pct(tt.membership))
			require.NoError(t, err)

			assert.True(t, b.DiscountPercent.Equal(pct(100)), "got %s", b.DiscountPercent)
			assert.True(t, b.Subtotal.Amount.Sub(b.Discount.Amount).IsZero())
			assertMoney(t, "55", b.Total)
		})
	}
}

func TestComputeFeesIgnoreDiscount(t *testing.T) {
	cfg := scenarioA()
	cfg.TaxFee = Percentage(pct(8))
	params := stayParams("2025-07-01", "2025-07-04", 2)

	base, err := Compute(cfg, params, decimal.Zero)
	require.NoError(t, err)

	for _, p := range []int64{0, 10, 50, 100} {
		cfg.Discounts.PropertyPercent = pct(p)
		b, err := Compute(cfg, params, pct(5))
		require.NoError(t, err)
		assert.True(t, base.ServiceFee.Equal(b.ServiceFee), "service fee changed at %d%%", p)
		assert.True(t, base.TaxFee.Equal(b.TaxFee), "tax fee changed at %d%%", p)
	}
}

func TestComputeExperienceUsesGuestsAsUnits(t *testing.T) {
	cfg := NewConfiguration("exp-1", KindExperience)
	cfg.BasePrice = money.USD("45.50")
	cfg.Discounts.PropertyPercent = pct(10)

	b, err := Compute(cfg, Params{Date: day("2025-08-10"), Guests: 4}, pct(5))
	require.NoError(t, err)

	assert.Equal(t, 4, b.Units)
	assertMoney(t, "182", b.Subtotal)
	assertMoney(t, "27.3", b.Discount)
	assertMoney(t, "154.7", b.Total)
}

func TestComputeRuleDiscounts(t *testing.T) {
	cfg := scenarioA()
	cfg.Discounts.Weekly = pct(10)
	cfg.Discounts.Monthly = pct(20)
	cfg.Discounts.Seasonal = []SeasonalDiscount{
		{ID: "summer", Period: daterange.Period{From: day("2025-07-01"), To: day("2025-07-31")}, Percent: pct(5)},
	}
	cfg.Discounts.EarlyBird = []EarlyBirdDiscount{
		{ID: "eb30", DaysBefore: 30, Percent: pct(3)},
		{ID: "eb60", DaysBefore: 60, Percent: pct(6)},
	}

	tests := []struct {
		name     string
		params   Params
		percent  int64
		applied  []DiscountSource
		earlyBID string
	}{
		{
			name:    "short stay in season",
			params:  stayParams("2025-07-10", "2025-07-12", 1),
			percent: 5,
			applied: []DiscountSource{SourceSeasonal},
		},
		{
			name:    "weekly out of season",
			params:  stayParams("2025-09-01", "2025-09-08", 1),
			percent: 10,
			applied: []DiscountSource{SourceWeekly},
		},
		{
			name:    "monthly beats weekly",
			params:  stayParams("2025-09-01", "2025-09-29", 1),
			percent: 20,
			applied: []DiscountSource{SourceMonthly},
		},
		{
			name: "largest satisfied early bird",
			params: Params{
				Range:    daterange.DateRange{CheckIn: day("2025-09-01"), CheckOut: day("2025-09-03")},
				Guests:   1,
				BookedAt: day("2025-06-15"),
			},
			percent:  6,
			applied:  []DiscountSource{SourceEarlyBird},
			earlyBID: "eb60",
		},
		{
			name: "lead time too short",
			params: Params{
				Range:    daterange.DateRange{CheckIn: day("2025-09-01"), CheckOut: day("2025-09-03")},
				Guests:   1,
				BookedAt: day("2025-08-20"),
			},
			percent: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Compute(cfg, tt.params, decimal.Zero)
			require.NoError(t, err)
			assert.True(t, b.DiscountPercent.Equal(pct(tt.percent)), "got %s", b.DiscountPercent)

			var sources []DiscountSource
			for _, a := range b.Applied {
				sources = append(sources, a.Source)
				if a.Source == SourceEarlyBird {
					assert.Equal(t, tt.earlyBID, a.RuleID)
				}
			}
			assert.Equal(t, tt.applied, sources)
		})
	}
}

func TestComputeRejectsCorruptConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Configuration)
	}{
		{"negative base", func(c *Configuration) { c.BasePrice = money.USD("-1") }},
		{"negative cleaning", func(c *Configuration) { c.CleaningFee = money.USD("-5") }},
		{"negative property percent", func(c *Configuration) { c.Discounts.PropertyPercent = pct(-1) }},
		{"zero threshold", func(c *Configuration) { c.ExtraGuestThreshold = 0 }},
		{"negative fee percent", func(c *Configuration) { c.ServiceFee = Percentage(pct(-3)) }},
		{"foreign currency", func(c *Configuration) { c.BasePrice = money.Must(pct(10), "EUR") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := scenarioA()
			tt.mutate(&cfg)
			_, err := Compute(cfg, stayParams("2025-07-01", "2025-07-04", 2), pct(5))
			assert.ErrorIs(t, err, ErrConfigurationInvalid)
		})
	}
}

func TestComputeRejectsZeroUnits(t *testing.T) {
	cfg := NewConfiguration("exp-1", KindExperience)
	cfg.BasePrice = money.USD("10")

	_, err := Compute(cfg, Params{Date: day("2025-08-10"), Guests: 0}, decimal.Zero)
	assert.ErrorIs(t, err, ErrConfigurationInvalid)
}

func TestComputeRejectsBadParams(t *testing.T) {
	cfg := scenarioA()

	_, err := Compute(cfg, Params{Guests: 2}, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidParams)

	cfg.MaxOccupancy = 4
	_, err = Compute(cfg, stayParams("2025-07-01", "2025-07-04", 5), decimal.Zero)
	assert.ErrorIs(t, err, ErrTooManyGuests)
}

func TestComputeRejectsNegativeMembershipPercent(t *testing.T) {
	cfg := scenarioA()
	cfg.Discounts.PropertyPercent = pct(10)

	_, err := Compute(cfg, stayParams("2025-07-01", "2025-07-04", 2), pct(-5))
	var invalidCfg *ConfigurationInvalidError
	require.ErrorAs(t, err, &invalidCfg)
	assert.Equal(t, "membership_percent", invalidCfg.Field)
	assert.ErrorIs(t, err, ErrConfigurationInvalid)

	b, err := Compute(cfg, stayParams("2025-07-01", "2025-07-04", 2), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, b.DiscountPercent.Equal(pct(10)))
}
