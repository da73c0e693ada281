// Package membership maps a guest's completed-trip count to a loyalty discount.
package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyTable    = errors.New("membership: tier table is empty")
	ErrTableGap      = errors.New("membership: tier bands must be contiguous from one trip")
	ErrOpenBandOrder = errors.New("membership: only the last band may be open ended")
	ErrBandPercent   = errors.New("membership: band percent must be between 0 and 100")
)

// Band covers MinTrips..MaxTrips inclusive. MaxTrips == 0 means no upper bound.
type Band struct {
	Name     string          `json:"name"`
	MinTrips int             `json:"min_trips"`
	MaxTrips int             `json:"max_trips,omitempty"`
	Percent  decimal.Decimal `json:"percent"`
}

func (b Band) contains(trips int) bool {
	if trips < b.MinTrips {
		return false
	}
	return b.MaxTrips == 0 || trips <= b.MaxTrips
}

// Table is an ordered list of bands.
type Table []Band

// DefaultTable is the process-wide loyalty schedule.
var DefaultTable = Table{
	{Name: "explorer", MinTrips: 1, MaxTrips: 5, Percent: decimal.NewFromInt(5)},
	{Name: "voyager", MinTrips: 6, MaxTrips: 10, Percent: decimal.NewFromInt(10)},
	{Name: "globetrotter", MinTrips: 11, Percent: decimal.NewFromInt(15)},
}

// Validate checks the bands start at one trip, leave no gaps and end open.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	next := 1
	for i, band := range t {
		if band.MinTrips != next {
			return fmt.Errorf("%w: band %q starts at %d, want %d", ErrTableGap, band.Name, band.MinTrips, next)
		}
		if band.Percent.IsNegative() || band.Percent.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: band %q", ErrBandPercent, band.Name)
		}
		last := i == len(t)-1
		if band.MaxTrips == 0 {
			if !last {
				return ErrOpenBandOrder
			}
			return nil
		}
		if band.MaxTrips < band.MinTrips {
			return fmt.Errorf("%w: band %q ends before it starts", ErrTableGap, band.Name)
		}
		next = band.MaxTrips + 1
	}
	return ErrOpenBandOrder
}

// Band returns the band containing tripCount, if any.
func (t Table) Band(tripCount int) (Band, bool) {
	for _, band := range t {
		if band.contains(tripCount) {
			return band, true
		}
	}
	return Band{}, false
}

// ResolveDiscountPercent returns the loyalty percent for a guest.
func (t Table) ResolveDiscountPercent(tripCount int, isAuthenticated bool) decimal.Decimal {
	if !isAuthenticated || tripCount < 1 {
		return decimal.Zero
	}
	band, ok := t.Band(tripCount)
	if !ok {
		return decimal.Zero
	}
	return band.Percent
}

// ResolveDiscountPercent resolves against DefaultTable.
func ResolveDiscountPercent(tripCount int, isAuthenticated bool) decimal.Decimal {
	return DefaultTable.ResolveDiscountPercent(tripCount, isAuthenticated)
}

// TripHistory reports how many bookings a guest has completed.
type TripHistory interface {
	CompletedTrips(ctx context.Context, guestID string) (int, error)
}

// Resolver looks up trip history before resolving the band.
type Resolver struct {
	Table   Table
	History TripHistory
}

// Status is the resolved membership of one guest.
type Status struct {
	GuestID       string          `json:"guest_id,omitempty"`
	Authenticated bool            `json:"authenticated"`
	Trips         int             `json:"trips"`
	Tier          string          `json:"tier,omitempty"`
	Percent       decimal.Decimal `json:"percent"`
}

var ErrHistoryMissing = errors.New("membership: trip history source missing")

// Resolve returns a zero status for anonymous guests without touching the history source.
func (r Resolver) Resolve(ctx context.Context, guestID string) (Status, error) {
	table := r.Table
	if len(table) == 0 {
		table = DefaultTable
	}
	if guestID == "" {
		return Status{Percent: decimal.Zero}, nil
	}
	if r.History == nil {
		return Status{}, ErrHistoryMissing
	}
	trips, err := r.History.CompletedTrips(ctx, guestID)
	if err != nil {
		return Status{}, err
	}
	status := Status{
		GuestID:       guestID,
		Authenticated: true,
		Trips:         trips,
		Percent:       table.ResolveDiscountPercent(trips, true),
	}
	if band, ok := table.Band(trips); ok && trips >= 1 {
		status.Tier = band.Name
	}
	return status, nil
}
