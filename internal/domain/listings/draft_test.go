package listings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypricing/internal/domain/pricing"
	"staypricing/internal/domain/shared/money"
)

var now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newStayDraft(t *testing.T) *Draft {
	t.Helper()
	d, err := NewDraft("draft-1", "host-1", pricing.KindStay, now)
	require.NoError(t, err)
	return d
}

func completeStay(t *testing.T, d *Draft) {
	t.Helper()
	patches := []Patch{
		&CategoryPatch{Category: ptr("cabin")},
		&TypePatch{PropertyType: ptr("entire_place")},
		&LocationPatch{Line1: ptr("1 Lake Rd"), City: ptr("Tahoe"), Country: ptr("US")},
		&DetailsPatch{Accommodates: ptr(6), Bedrooms: ptr(3), Beds: ptr(4), Bathrooms: ptr(2)},
		&AmenitiesPatch{Amenities: ptr([]string{"wifi", "sauna"})},
		&PhotosPatch{Photos: ptr([]string{"https://img/1.jpg"})},
		&TitlePatch{Title: ptr("Lakeside cabin")},
		&DescriptionPatch{Description: ptr("Quiet cabin by the lake.")},
		&FeesPatch{
			CleaningFee:         ptr(money.USD("20")),
			ExtraGuestFee:       ptr(money.USD("10")),
			ExtraGuestThreshold: ptr(4),
			ServiceFee:          ptr(pricing.Percentage(money.USD("10").Amount)),
			TaxFee:              ptr(pricing.Fixed(money.USD("5"))),
		},
		&PricePatch{WeekdayPrice: ptr(money.USD("100")), WeekendPrice: ptr(money.USD("120"))},
		&SafetyPatch{HouseRules: ptr([]string{"no parties"}), Acknowledged: ptr(true)},
	}
	for _, p := range patches {
		require.NoError(t, d.UpdateField(p, now))
	}
}

func TestNewDraftStartsOnFirstStep(t *testing.T) {
	d := newStayDraft(t)
	assert.Equal(t, StepCategory, d.Step)
	assert.Equal(t, pricing.KindStay, d.Pricing.Kind)

	_, err := NewDraft("d", "h", "castle", now)
	assert.Error(t, err)
}

func TestUpdateFieldMergesOneSection(t *testing.T) {
	d := newStayDraft(t)
	require.NoError(t, d.UpdateField(&LocationPatch{Line1: ptr("1 Main"), City: ptr("Austin")}, now))
	require.NoError(t, d.UpdateField(&TitlePatch{Title: ptr("  Loft  ")}, now))
	require.NoError(t, d.UpdateField(&LocationPatch{Country: ptr("US")}, now))

	assert.Equal(t, Address{Line1: "1 Main", City: "Austin", Country: "US"}, d.Location)
	assert.Equal(t, "Loft", d.Title)
}

func TestUpdateFieldRejectsForeignSections(t *testing.T) {
	d := newStayDraft(t)
	err := d.UpdateField(&ItineraryPatch{Activities: ptr([]Activity{{Title: "Hike"}})}, now)
	assert.ErrorIs(t, err, ErrSectionNotInFlow)

	err = d.UpdateField(&PricePatch{WeekdayPrice: ptr(money.Must(money.USD("1").Amount, "EUR"))}, now)
	assert.ErrorIs(t, err, ErrNotCanonical)
}

func TestCanMoveToStep(t *testing.T) {
	d := newStayDraft(t)

	assert.True(t, d.CanMoveToStep(StepCategory))
	assert.False(t, d.CanMoveToStep(StepType), "category not chosen yet")

	require.NoError(t, d.UpdateField(&CategoryPatch{Category: ptr("cabin")}, now))
	assert.True(t, d.CanMoveToStep(StepType))
	assert.False(t, d.CanMoveToStep(StepPhotos))
	assert.False(t, d.CanMoveToStep("nowhere"))
}

func TestBackwardNavigationAlwaysAllowed(t *testing.T) {
	d := newStayDraft(t)
	completeStay(t, d)
	require.NoError(t, d.MoveTo(StepPreview, now))

	require.NoError(t, d.UpdateField(&PhotosPatch{Photos: ptr([]string{})}, now))
	assert.True(t, d.CanMoveToStep(StepCategory))
	require.NoError(t, d.Back(now))
	assert.Equal(t, StepSafety, d.Step)
}

func TestNextBlockedByIncompleteStep(t *testing.T) {
	d := newStayDraft(t)
	err := d.Next(now)

	var incomplete *StepIncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, StepCategory, incomplete.Step)
	assert.ErrorIs(t, err, ErrStepIncomplete)
	assert.Equal(t, StepCategory, d.Step)

	assert.ErrorIs(t, d.Back(now), ErrInvalidState)
}

func TestWalkWholeStayFlow(t *testing.T) {
	d := newStayDraft(t)
	completeStay(t, d)

	var visited []StepID
	for {
		visited = append(visited, d.Step)
		if d.Flow().IsLast(d.Step) {
			break
		}
		require.NoError(t, d.Next(now), "stuck at %s", d.Step)
	}
	assert.Equal(t, []StepID{
		StepCategory, StepType, StepLocation, StepDetails, StepAmenities, StepPhotos, StepTitle,
		StepDescription, StepFees, StepWeekdayPrice, StepWeekendPrice, StepDiscounts, StepSafety, StepPreview,
	}, visited)
	assert.ErrorIs(t, d.Next(now), ErrInvalidState)
}

func TestValidateStep(t *testing.T) {
	d := newStayDraft(t)
	assert.ErrorIs(t, d.ValidateStep(StepPhotos), ErrStepIncomplete)
	assert.NoError(t, d.ValidateStep(StepAmenities))
	assert.ErrorIs(t, d.ValidateStep("bogus"), ErrUnknownStep)

	require.NoError(t, d.UpdateField(&PhotosPatch{Photos: ptr([]string{"a.jpg", " ", "a.jpg"})}, now))
	assert.NoError(t, d.ValidateStep(StepPhotos))
	assert.Equal(t, []string{"a.jpg"}, d.Photos)
}

func TestValidateAllNamesPhotosStep(t *testing.T) {
	d := newStayDraft(t)
	completeStay(t, d)
	require.NoError(t, d.UpdateField(&PhotosPatch{Photos: ptr([]string{})}, now))

	res := d.ValidateAll()
	assert.False(t, res.OK)
	assert.Equal(t, StepPhotos, res.Step)
	assert.Contains(t, res.Message, "Photos")
}

func TestValidateAllCrossFieldThreshold(t *testing.T) {
	d := newStayDraft(t)
	completeStay(t, d)
	require.NoError(t, d.UpdateField(&FeesPatch{ExtraGuestThreshold: ptr(8)}, now))

	res := d.ValidateAll()
	assert.False(t, res.OK)
	assert.Equal(t, StepFees, res.Step)
	assert.Contains(t, res.Message, "threshold")
}

func TestValidateAllPasses(t *testing.T) {
	d := newStayDraft(t)
	completeStay(t, d)
	assert.Equal(t, ValidationResult{OK: true}, d.ValidateAll())
}

func TestExperienceFlow(t *testing.T) {
	d, err := NewDraft("draft-2", "host-1", pricing.KindExperience, now)
	require.NoError(t, err)

	assert.ErrorIs(t, d.UpdateField(&TypePatch{PropertyType: ptr("entire_place")}, now), ErrSectionNotInFlow)

	require.NoError(t, d.UpdateField(&CategoryPatch{Category: ptr("food")}, now))
	require.NoError(t, d.UpdateField(&LocationPatch{Line1: ptr("Market St"), City: ptr("Lisbon"), Country: ptr("PT")}, now))
	require.NoError(t, d.MoveTo(StepItinerary, now))
	assert.False(t, d.CanMoveToStep(StepDetails), "itinerary needs an activity")

	require.NoError(t, d.UpdateField(&ItineraryPatch{Activities: ptr([]Activity{{Title: "Tasting", DurationMinutes: 90}})}, now))
	require.NoError(t, d.Next(now))
	assert.Equal(t, StepDetails, d.Step)

	prev, _ := d.Flow().Prev(StepDetails)
	assert.Equal(t, StepItinerary, prev)
}

func TestResetClearsDraft(t *testing.T) {
	d := newStayDraft(t)
	completeStay(t, d)
	require.NoError(t, d.MoveTo(StepFees, now))

	d.Reset(now.Add(time.Hour))

	assert.Equal(t, DraftID("draft-1"), d.ID)
	assert.Equal(t, StepCategory, d.Step)
	assert.Empty(t, d.Title)
	assert.Empty(t, d.Photos)
	assert.True(t, d.Pricing.BasePrice.IsZero())
	assert.False(t, d.ValidateAll().OK)
}

func TestStepsView(t *testing.T) {
	d := newStayDraft(t)
	views := d.Steps()
	require.Len(t, views, 14)
	assert.Empty(t, views[0].Prev)
	assert.Equal(t, StepType, views[0].Next)
	assert.True(t, views[13].IsLast)
	assert.Empty(t, views[13].Next)
	assert.True(t, views[0].Enabled)
	assert.False(t, views[1].Enabled)
}

func TestDiscountStepReflectsRuleValidity(t *testing.T) {
	d := newStayDraft(t)
	completeStay(t, d)

	v := pricing.Validator{Now: func() time.Time { return now }}
	_, err := v.AddEarlyBird(&d.Pricing, pricing.EarlyBirdDiscount{DaysBefore: 30, Percent: money.USD("5").Amount})
	require.NoError(t, err)
	d.Touch(now)
	assert.NoError(t, d.ValidateStep(StepDiscounts))
	assert.True(t, d.ValidateAll().OK)
}

func TestFeesStepChecksFeeRules(t *testing.T) {
	d := newStayDraft(t)
	completeStay(t, d)
	require.NoError(t, d.UpdateField(&FeesPatch{ServiceFee: ptr(pricing.Percentage(money.USD("-50").Amount))}, now))

	err := d.ValidateStep(StepFees)
	var incomplete *StepIncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, StepFees, incomplete.Step)
	assert.Contains(t, incomplete.Reason, "service fee")
	assert.False(t, d.CanMoveToStep(StepWeekdayPrice))

	require.NoError(t, d.UpdateField(&FeesPatch{ServiceFee: ptr(pricing.Percentage(money.USD("10").Amount))}, now))
	assert.NoError(t, d.ValidateStep(StepFees))
}

func TestDiscountsStepSeesBadRulesBehindOtherFailures(t *testing.T) {
	d := newStayDraft(t)
	completeStay(t, d)
	require.NoError(t, d.UpdateField(&FeesPatch{ExtraGuestThreshold: ptr(8)}, now))
	require.Error(t, d.Pricing.Validate(), "threshold above occupancy fails first")

	d.Pricing.Discounts.Weekly = money.USD("-5").Amount
	err := d.ValidateStep(StepDiscounts)
	assert.ErrorIs(t, err, ErrStepIncomplete)
	assert.Contains(t, err.Error(), "discounts.weekly")

	d.Pricing.Discounts.Weekly = money.USD("10").Amount
	assert.NoError(t, d.ValidateStep(StepDiscounts))
}
