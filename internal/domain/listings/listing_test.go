package listings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypricing/internal/domain/shared/money"
)

func TestPublishFromDraft(t *testing.T) {
	d := newStayDraft(t)
	completeStay(t, d)

	l, cfg, err := Publish("listing-1", d, now)
	require.NoError(t, err)

	assert.Equal(t, ListingActive, l.State)
	assert.Equal(t, "Lakeside cabin", l.Title)
	assert.True(t, l.WeekendPrice.Equal(money.USD("120")))
	assert.Equal(t, "listing-1", cfg.ListingID)
	assert.Equal(t, 6, cfg.MaxOccupancy)
	assert.True(t, cfg.BasePrice.Equal(money.USD("100")))

	evts := l.PendingEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, "listing.published", evts[0].EventName())
}

func TestPublishRejectsIncompleteDraft(t *testing.T) {
	d := newStayDraft(t)
	completeStay(t, d)
	require.NoError(t, d.UpdateField(&PhotosPatch{Photos: ptr([]string{})}, now))

	_, _, err := Publish("listing-1", d, now)
	var pve *PublishValidationError
	require.ErrorAs(t, err, &pve)
	assert.Equal(t, StepPhotos, pve.Step)
	assert.ErrorIs(t, err, ErrPublishValidation)
}

func TestOpenDraftRoundTrip(t *testing.T) {
	d := newStayDraft(t)
	completeStay(t, d)
	l, cfg, err := Publish("listing-1", d, now)
	require.NoError(t, err)
	l.ClearEvents()

	edit, err := l.OpenDraft("draft-9", cfg, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, ListingID("listing-1"), edit.ListingID)
	assert.True(t, edit.ValidateAll().OK)

	require.NoError(t, edit.UpdateField(&PricePatch{WeekdayPrice: ptr(money.USD("140"))}, now))
	updated, err := l.UpdateFromDraft(edit, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, updated.BasePrice.Equal(money.USD("140")))
	assert.True(t, l.WeekdayPrice.Equal(money.USD("140")))
	assert.Equal(t, "listing.updated", l.PendingEvents()[0].EventName())

	edit.Host = "someone-else"
	_, err = l.UpdateFromDraft(edit, now)
	assert.ErrorIs(t, err, ErrHostMismatch)
}

func TestSuspend(t *testing.T) {
	d := newStayDraft(t)
	completeStay(t, d)
	l, _, err := Publish("listing-1", d, now)
	require.NoError(t, err)

	require.NoError(t, l.Suspend(now, "complaints"))
	assert.False(t, l.Bookable())
	assert.ErrorIs(t, l.Suspend(now, "again"), ErrInvalidState)
}

func TestRemoteErrorWrapping(t *testing.T) {
	assert.NoError(t, Remote("save", nil))

	err := Remote("save listing", assert.AnError)
	assert.ErrorIs(t, err, ErrRemoteFailure)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Same(t, err, Remote("again", err))
}
