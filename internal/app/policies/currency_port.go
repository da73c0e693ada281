package policies

import (
	"context"

	"staypricing/internal/domain/membership"
	"staypricing/internal/domain/shared/money"
)

// CurrencyPort renders canonical amounts in a guest's display currency.
type CurrencyPort interface {
	ToDisplay(amount money.Money, code string) (money.Money, error)
	ToCanonical(amount money.Money, code string) (money.Money, error)
	Format(amount money.Money, code string) (string, error)
}

// TripHistoryPort reports completed bookings per guest.
type TripHistoryPort interface {
	membership.TripHistory
}

// TripHistoryFunc adapts a function to TripHistoryPort.
type TripHistoryFunc func(ctx context.Context, guestID string) (int, error)

func (f TripHistoryFunc) CompletedTrips(ctx context.Context, guestID string) (int, error) {
	return f(ctx, guestID)
}
