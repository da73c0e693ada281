package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainpricing "staypricing/internal/domain/pricing"
)

type ConfigurationRepository struct {
	col *mongo.Collection
}

func NewConfigurationRepository(db *mongo.Database) *ConfigurationRepository {
	return &ConfigurationRepository{col: db.Collection("pricing_configuration")}
}

func (r *ConfigurationRepository) ByListing(ctx context.Context, listingID string) (*domainpricing.Configuration, error) {
	var doc configurationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": listingID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpricing.ErrConfigurationNotFound
		}
		return nil, err
	}
	cfg, err := doc.toConfiguration()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *ConfigurationRepository) Save(ctx context.Context, cfg *domainpricing.Configuration) error {
	doc := newConfigurationDocument(*cfg)
	next, err := saveVersioned(ctx, r.col, doc.ListingID, cfg.Version, func(version int64) any {
		doc.Version = version
		return doc
	})
	if err != nil {
		return err
	}
	cfg.Version = next
	return nil
}

// QuoteRepository stores quotes; an index on expires_at lets Mongo drop stale ones.
type QuoteRepository struct {
	col *mongo.Collection
}

func NewQuoteRepository(db *mongo.Database) *QuoteRepository {
	return &QuoteRepository{col: db.Collection("pricing_quote")}
}

func (r *QuoteRepository) ByID(ctx context.Context, id string) (*domainpricing.Quote, error) {
	var doc quoteDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpricing.ErrQuoteNotFound
		}
		return nil, err
	}
	return doc.toQuote()
}

// Save inserts or replaces the quote. Quotes are immutable so no version check.
func (r *QuoteRepository) Save(ctx context.Context, q *domainpricing.Quote) error {
	doc := newQuoteDocument(q)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

type quoteDocument struct {
	ID                string            `bson:"_id"`
	ListingID         string            `bson:"listing_id"`
	GuestID           string            `bson:"guest_id,omitempty"`
	Kind              string            `bson:"kind"`
	Params            paramsDocument    `bson:"params"`
	MembershipPercent string            `bson:"membership_percent"`
	Breakdown         breakdownDocument `bson:"breakdown"`
	ConfigVersion     int64             `bson:"config_version"`
	CreatedAt         int64             `bson:"created_at"`
	ExpiresAt         time.Time         `bson:"expires_at"`
}

func newQuoteDocument(q *domainpricing.Quote) quoteDocument {
	return quoteDocument{
		ID:                q.ID,
		ListingID:         q.ListingID,
		GuestID:           q.GuestID,
		Kind:              string(q.Kind),
		Params:            newParamsDocument(q.Params),
		MembershipPercent: q.MembershipPercent.String(),
		Breakdown:         newBreakdownDocument(q.Breakdown),
		ConfigVersion:     q.ConfigVersion,
		CreatedAt:         q.CreatedAt.UnixMilli(),
		ExpiresAt:         q.ExpiresAt,
	}
}

func (d quoteDocument) toQuote() (*domainpricing.Quote, error) {
	breakdown, err := d.Breakdown.toBreakdown()
	if err != nil {
		return nil, err
	}
	membership, err := parseDecimal(d.MembershipPercent)
	if err != nil {
		return nil, err
	}
	return &domainpricing.Quote{
		ID:                d.ID,
		ListingID:         d.ListingID,
		GuestID:           d.GuestID,
		Kind:              domainpricing.Kind(d.Kind),
		Params:            d.Params.toParams(),
		MembershipPercent: membership,
		Breakdown:         breakdown,
		ConfigVersion:     d.ConfigVersion,
		CreatedAt:         timestampToTime(d.CreatedAt),
		ExpiresAt:         utcOrZero(d.ExpiresAt),
	}, nil
}
