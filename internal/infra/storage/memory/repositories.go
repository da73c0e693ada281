package memory

import (
	"context"
	"encoding/json"
	"sync"

	domainbooking "staypricing/internal/domain/booking"
	domainlistings "staypricing/internal/domain/listings"
	domainpricing "staypricing/internal/domain/pricing"
)

// clone deep-copies through JSON so callers never share state with the store.
// Pending domain events are not carried over.
func clone[T any](v *T) (*T, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListingRepository is an in-memory implementation for demo purposes.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

// NewListingRepository builds an empty repository.
func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

// ByID returns a copy of the listing or domainlistings.ErrListingNotFound.
func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrListingNotFound
	}
	return clone(listing)
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing.Version++
	stored, err := clone(listing)
	if err != nil {
		return err
	}
	r.items[listing.ID] = stored
	return nil
}

func (r *ListingRepository) ListByHost(ctx context.Context, host domainlistings.HostID) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainlistings.Listing
	for _, listing := range r.items {
		if listing.Host != host {
			continue
		}
		cp, err := clone(listing)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

// DraftRepository keeps host drafts. Every Save is visible to the next ByID.
type DraftRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.DraftID]*domainlistings.Draft
}

func NewDraftRepository() *DraftRepository {
	return &DraftRepository{items: make(map[domainlistings.DraftID]*domainlistings.Draft)}
}

func (r *DraftRepository) ByID(ctx context.Context, id domainlistings.DraftID) (*domainlistings.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	draft, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrDraftNotFound
	}
	return clone(draft)
}

func (r *DraftRepository) Save(ctx context.Context, draft *domainlistings.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	draft.Version++
	stored, err := clone(draft)
	if err != nil {
		return err
	}
	r.items[draft.ID] = stored
	return nil
}

// Delete is a no-op for unknown ids.
func (r *DraftRepository) Delete(ctx context.Context, id domainlistings.DraftID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

// ConfigurationRepository holds the live pricing configuration per listing.
type ConfigurationRepository struct {
	mu    sync.RWMutex
	items map[string]*domainpricing.Configuration
}

func NewConfigurationRepository() *ConfigurationRepository {
	return &ConfigurationRepository{items: make(map[string]*domainpricing.Configuration)}
}

func (r *ConfigurationRepository) ByListing(ctx context.Context, listingID string) (*domainpricing.Configuration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.items[listingID]
	if !ok {
		return nil, domainpricing.ErrConfigurationNotFound
	}
	return clone(cfg)
}

func (r *ConfigurationRepository) Save(ctx context.Context, cfg *domainpricing.Configuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg.Version++
	stored, err := clone(cfg)
	if err != nil {
		return err
	}
	r.items[cfg.ListingID] = stored
	return nil
}

type QuoteRepository struct {
	mu    sync.RWMutex
	items map[string]*domainpricing.Quote
}

func NewQuoteRepository() *QuoteRepository {
	return &QuoteRepository{items: make(map[string]*domainpricing.Quote)}
}

func (r *QuoteRepository) ByID(ctx context.Context, id string) (*domainpricing.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quote, ok := r.items[id]
	if !ok {
		return nil, domainpricing.ErrQuoteNotFound
	}
	return clone(quote)
}

func (r *QuoteRepository) Save(ctx context.Context, quote *domainpricing.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, err := clone(quote)
	if err != nil {
		return err
	}
	r.items[quote.ID] = stored
	return nil
}

// BookingRepository stores bookings in memory and doubles as the trip
// history source in memory mode.
type BookingRepository struct {
	mu       sync.RWMutex
	items    map[domainbooking.BookingID]*domainbooking.Booking
	baseline map[string]int
}

// NewBookingRepository builds an empty booking repo.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items:    make(map[domainbooking.BookingID]*domainbooking.Booking),
		baseline: make(map[string]int),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return clone(booking)
}

// Save stores the current booking state.
func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.Version++
	stored, err := clone(booking)
	if err != nil {
		return err
	}
	r.items[booking.ID] = stored
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, booking := range r.items {
		if booking.GuestID != guestID {
			continue
		}
		cp, err := clone(booking)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

// SeedCompletedTrips records trips taken before this process started.
func (r *BookingRepository) SeedCompletedTrips(guestID string, trips int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseline[guestID] = trips
}

// CompletedTrips counts the seeded trips plus completed bookings.
func (r *BookingRepository) CompletedTrips(ctx context.Context, guestID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	trips := r.baseline[guestID]
	for _, booking := range r.items {
		if booking.GuestID == guestID && booking.State == domainbooking.StateCompleted {
			trips++
		}
	}
	return trips, nil
}

var (
	_ domainlistings.ListingRepository      = (*ListingRepository)(nil)
	_ domainlistings.DraftRepository        = (*DraftRepository)(nil)
	_ domainpricing.ConfigurationRepository = (*ConfigurationRepository)(nil)
	_ domainpricing.QuoteRepository         = (*QuoteRepository)(nil)
	_ domainbooking.Repository              = (*BookingRepository)(nil)
)
