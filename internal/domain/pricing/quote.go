package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a stored breakdown; booking consumes it as-is.
type Quote struct {
	ID                string          `json:"id"`
	ListingID         string          `json:"listing_id"`
	GuestID           string          `json:"guest_id,omitempty"`
	Kind              Kind            `json:"kind"`
	Params            Params          `json:"params"`
	MembershipPercent decimal.Decimal `json:"membership_percent"`
	Breakdown         Breakdown       `json:"breakdown"`
	ConfigVersion     int64           `json:"config_version"`
	CreatedAt         time.Time       `json:"created_at"`
	ExpiresAt         time.Time       `json:"expires_at"`
}

// Expired reports whether the quote can no longer be booked at now.
func (q Quote) Expired(now time.Time) bool {
	return !q.ExpiresAt.IsZero() && !now.Before(q.ExpiresAt)
}

type QuoteRepository interface {
	ByID(ctx context.Context, id string) (*Quote, error)
	Save(ctx context.Context, quote *Quote) error
}
