package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypricing/internal/app/middleware"
	appoutbox "staypricing/internal/app/outbox"
	"staypricing/internal/app/uow"
	domainbooking "staypricing/internal/domain/booking"
	domainlistings "staypricing/internal/domain/listings"
	domainpricing "staypricing/internal/domain/pricing"
	"staypricing/internal/domain/shared/money"
)

var now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestDraftRepositoryReadAfterWrite(t *testing.T) {
	ctx := context.Background()
	repo := NewDraftRepository()
	d, err := domainlistings.NewDraft("draft-1", "host-1", domainpricing.KindStay, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, d))
	assert.Equal(t, int64(1), d.Version)

	title := "Loft"
	require.NoError(t, d.UpdateField(&domainlistings.TitlePatch{Title: &title}, now))
	loaded, err := repo.ByID(ctx, "draft-1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Title, "store must not alias caller state")

	require.NoError(t, repo.Save(ctx, d))
	loaded, err = repo.ByID(ctx, "draft-1")
	require.NoError(t, err)
	assert.Equal(t, "Loft", loaded.Title)
	assert.True(t, loaded.Pricing.BasePrice.Equal(money.Zero(money.Canonical)))

	require.NoError(t, repo.Delete(ctx, "draft-1"))
	_, err = repo.ByID(ctx, "draft-1")
	assert.ErrorIs(t, err, domainlistings.ErrDraftNotFound)
	assert.NoError(t, repo.Delete(ctx, "draft-1"))
}

func TestConfigurationRepositoryVersions(t *testing.T) {
	ctx := context.Background()
	repo := NewConfigurationRepository()
	_, err := repo.ByListing(ctx, "listing-1")
	assert.ErrorIs(t, err, domainpricing.ErrConfigurationNotFound)

	cfg := domainpricing.NewConfiguration("listing-1", domainpricing.KindStay)
	cfg.BasePrice = money.USD("100")
	require.NoError(t, repo.Save(ctx, &cfg))
	require.NoError(t, repo.Save(ctx, &cfg))

	loaded, err := repo.ByListing(ctx, "listing-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
	assert.True(t, loaded.BasePrice.Equal(money.USD("100")))
}

func TestBookingRepositoryCountsCompletedTrips(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	repo.SeedCompletedTrips("guest-1", 4)

	for i, state := range []domainbooking.BookingState{domainbooking.StateCompleted, domainbooking.StatePending, domainbooking.StateCompleted} {
		b := &domainbooking.Booking{
			ID:        domainbooking.BookingID([]string{"b1", "b2", "b3"}[i]),
			GuestID:   "guest-1",
			State:     state,
			CreatedAt: now,
		}
		require.NoError(t, repo.Save(ctx, b))
	}
	require.NoError(t, repo.Save(ctx, &domainbooking.Booking{ID: "b4", GuestID: "guest-2", State: domainbooking.StateCompleted}))

	trips, err := repo.CompletedTrips(ctx, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, 6, trips)

	list, err := repo.ListByGuest(ctx, "guest-1")
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestListingRepositoryListByHost(t *testing.T) {
	ctx := context.Background()
	repo := NewListingRepository()
	require.NoError(t, repo.Save(ctx, &domainlistings.Listing{ID: "l1", Host: "h1"}))
	require.NoError(t, repo.Save(ctx, &domainlistings.Listing{ID: "l2", Host: "h2"}))

	mine, err := repo.ListByHost(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, domainlistings.ListingID("l1"), mine[0].ID)

	_, err = repo.ByID(ctx, "nope")
	assert.ErrorIs(t, err, domainlistings.ErrListingNotFound)
}

func TestFactoryBegin(t *testing.T) {
	_, err := Factory{}.Begin(context.Background(), uow.TxOptions{})
	assert.ErrorIs(t, err, ErrFactoryMisconfigured)

	unit, err := NewFactory().Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Commit(context.Background()))
	assert.ErrorIs(t, unit.Commit(context.Background()), ErrUnitClosed)
}

func TestOutboxFlushDelivers(t *testing.T) {
	ctx := context.Background()
	box := NewOutbox()
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "1", Name: "listing.published"}))
	assert.Empty(t, box.Delivered())
	require.NoError(t, box.Flush(ctx))
	require.Len(t, box.Delivered(), 1)
	assert.Equal(t, "listing.published", box.Delivered()[0].Name)
}

func TestIdempotencyPurge(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore()
	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{Key: "old", OccurredAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{Key: "new", OccurredAt: now}))

	assert.Equal(t, 1, store.Purge(now.Add(-24*time.Hour)))
	_, found, err := store.Get(ctx, "old")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, _ = store.Get(ctx, "new")
	assert.True(t, found)
}
