package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypricing/internal/domain/shared/daterange"
	"staypricing/internal/domain/shared/money"
)

func TestFeeRuleResolve(t *testing.T) {
	subtotal := money.USD("250")

	assertMoney(t, "12.5", Percentage(pct(5)).Resolve(subtotal))
	assertMoney(t, "7", Fixed(money.USD("7")).Resolve(subtotal))
	assertMoney(t, "0", FeeRule{}.Resolve(subtotal))
}

func TestConfigurationValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Configuration)
		field  string
	}{
		{"unknown kind", func(c *Configuration) { c.Kind = "boat" }, "kind"},
		{"threshold above occupancy", func(c *Configuration) { c.MaxOccupancy = 2; c.ExtraGuestThreshold = 3 }, "extra_guest_threshold"},
		{"unknown fee kind", func(c *Configuration) { c.TaxFee = FeeRule{Kind: "tiered"} }, "tax_fee.kind"},
		{"fee percent over hundred", func(c *Configuration) { c.ServiceFee = Percentage(pct(150)) }, "service_fee.percent"},
		{"overlapping seasons", func(c *Configuration) {
			c.Discounts.Seasonal = []SeasonalDiscount{
				{ID: "a", Period: daterange.Period{From: day("2025-07-01"), To: day("2025-07-10")}, Percent: pct(5)},
				{ID: "b", Period: daterange.Period{From: day("2025-07-10"), To: day("2025-07-12")}, Percent: pct(5)},
			}
		}, "discounts.seasonal"},
		{"duplicate early bird", func(c *Configuration) {
			c.Discounts.EarlyBird = []EarlyBirdDiscount{{DaysBefore: 7, Percent: pct(1)}, {DaysBefore: 7, Percent: pct(2)}}
		}, "discounts.early_bird.days_before"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := scenarioA()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrConfigurationInvalid)

			var invalidErr *ConfigurationInvalidError
			require.ErrorAs(t, err, &invalidErr)
			assert.Equal(t, tt.field, invalidErr.Field)
		})
	}
}

func TestExperienceRejectsLongStay(t *testing.T) {
	cfg := NewConfiguration("e-1", KindExperience)
	cfg.Discounts.Weekly = pct(10)
	assert.ErrorIs(t, cfg.Validate(), ErrConfigurationInvalid)
}

func TestCloneIsDeep(t *testing.T) {
	cfg := scenarioA()
	cfg.Discounts.EarlyBird = []EarlyBirdDiscount{{ID: "a", DaysBefore: 10, Percent: pct(5)}}

	clone := cfg.Clone()
	clone.Discounts.EarlyBird[0].Percent = pct(50)

	assert.True(t, cfg.Discounts.EarlyBird[0].Percent.Equal(pct(5)))
}

func TestQuoteExpired(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	q := Quote{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, q.Expired(now))
	assert.True(t, q.Expired(now.Add(time.Minute)))
	assert.False(t, Quote{}.Expired(now))
}
