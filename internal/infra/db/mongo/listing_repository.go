package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "staypricing/internal/domain/listings"
	domainpricing "staypricing/internal/domain/pricing"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrListingNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	next, err := saveVersioned(ctx, r.col, doc.ID, l.Version, func(version int64) any {
		doc.Version = version
		return doc
	})
	if err != nil {
		return err
	}
	l.Version = next
	return nil
}

func (r *ListingRepository) ListByHost(ctx context.Context, host domainlistings.HostID) ([]*domainlistings.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"host_id": string(host)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainlistings.Listing
	for cur.Next(ctx) {
		var doc listingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		l, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, cur.Err()
}

type listingDocument struct {
	ID           string                    `bson:"_id"`
	HostID       string                    `bson:"host_id"`
	Kind         string                    `bson:"kind"`
	Category     string                    `bson:"category"`
	PropertyType string                    `bson:"property_type"`
	Address      domainlistings.Address    `bson:"address"`
	Details      domainlistings.Details    `bson:"details"`
	Amenities    []string                  `bson:"amenities"`
	Photos       []string                  `bson:"photos"`
	Title        string                    `bson:"title"`
	Description  string                    `bson:"description"`
	Itinerary    []domainlistings.Activity `bson:"itinerary"`
	Safety       domainlistings.Safety     `bson:"safety"`
	WeekdayPrice moneyDocument             `bson:"weekday_price"`
	WeekendPrice moneyDocument             `bson:"weekend_price"`
	State        string                    `bson:"state"`
	CreatedAt    int64                     `bson:"created_at"`
	UpdatedAt    int64                     `bson:"updated_at"`
	Version      int64                     `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:           string(l.ID),
		HostID:       string(l.Host),
		Kind:         string(l.Kind),
		Category:     l.Category,
		PropertyType: l.PropertyType,
		Address:      l.Address,
		Details:      l.Details,
		Amenities:    l.Amenities,
		Photos:       l.Photos,
		Title:        l.Title,
		Description:  l.Description,
		Itinerary:    l.Itinerary,
		Safety:       l.Safety,
		WeekdayPrice: newMoneyDocument(l.WeekdayPrice),
		WeekendPrice: newMoneyDocument(l.WeekendPrice),
		State:        string(l.State),
		CreatedAt:    l.CreatedAt.UnixMilli(),
		UpdatedAt:    l.UpdatedAt.UnixMilli(),
		Version:      l.Version,
	}
}

func (d listingDocument) toAggregate() (*domainlistings.Listing, error) {
	weekday, err := d.WeekdayPrice.toMoney()
	if err != nil {
		return nil, err
	}
	weekend, err := d.WeekendPrice.toMoney()
	if err != nil {
		return nil, err
	}
	return &domainlistings.Listing{
		ID:           domainlistings.ListingID(d.ID),
		Host:         domainlistings.HostID(d.HostID),
		Kind:         domainpricing.Kind(d.Kind),
		Category:     d.Category,
		PropertyType: d.PropertyType,
		Address:      d.Address,
		Details:      d.Details,
		Amenities:    d.Amenities,
		Photos:       d.Photos,
		Title:        d.Title,
		Description:  d.Description,
		Itinerary:    d.Itinerary,
		Safety:       d.Safety,
		WeekdayPrice: weekday,
		WeekendPrice: weekend,
		State:        domainlistings.ListingState(d.State),
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
		Version:      d.Version,
	}, nil
}

// DraftRepository keeps in-progress listing drafts.
type DraftRepository struct {
	col *mongo.Collection
}

func NewDraftRepository(db *mongo.Database) *DraftRepository {
	return &DraftRepository{col: db.Collection("agg_listing_draft")}
}

func (r *DraftRepository) ByID(ctx context.Context, id domainlistings.DraftID) (*domainlistings.Draft, error) {
	var doc draftDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrDraftNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *DraftRepository) Save(ctx context.Context, d *domainlistings.Draft) error {
	doc := newDraftDocument(d)
	next, err := saveVersioned(ctx, r.col, doc.ID, d.Version, func(version int64) any {
		doc.Version = version
		return doc
	})
	if err != nil {
		return err
	}
	d.Version = next
	return nil
}

func (r *DraftRepository) Delete(ctx context.Context, id domainlistings.DraftID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrDraftNotFound
	}
	return nil
}

type draftDocument struct {
	ID           string                    `bson:"_id"`
	HostID       string                    `bson:"host_id"`
	Kind         string                    `bson:"kind"`
	ListingID    string                    `bson:"listing_id,omitempty"`
	Step         string                    `bson:"step"`
	Category     string                    `bson:"category"`
	PropertyType string                    `bson:"property_type"`
	Location     domainlistings.Address    `bson:"location"`
	Details      domainlistings.Details    `bson:"details"`
	Amenities    []string                  `bson:"amenities"`
	Photos       []string                  `bson:"photos"`
	Title        string                    `bson:"title"`
	Description  string                    `bson:"description"`
	Itinerary    []domainlistings.Activity `bson:"itinerary"`
	Pricing      configurationDocument     `bson:"pricing"`
	WeekendPrice moneyDocument             `bson:"weekend_price"`
	Safety       domainlistings.Safety     `bson:"safety"`
	CreatedAt    int64                     `bson:"created_at"`
	UpdatedAt    int64                     `bson:"updated_at"`
	Version      int64                     `bson:"version"`
}

func newDraftDocument(d *domainlistings.Draft) draftDocument {
	return draftDocument{
		ID:           string(d.ID),
		HostID:       string(d.Host),
		Kind:         string(d.Kind),
		ListingID:    string(d.ListingID),
		Step:         string(d.Step),
		Category:     d.Category,
		PropertyType: d.PropertyType,
		Location:     d.Location,
		Details:      d.Details,
		Amenities:    d.Amenities,
		Photos:       d.Photos,
		Title:        d.Title,
		Description:  d.Description,
		Itinerary:    d.Itinerary,
		Pricing:      newConfigurationDocument(d.Pricing),
		WeekendPrice: newMoneyDocument(d.WeekendPrice),
		Safety:       d.Safety,
		CreatedAt:    d.CreatedAt.UnixMilli(),
		UpdatedAt:    d.UpdatedAt.UnixMilli(),
		Version:      d.Version,
	}
}

func (d draftDocument) toAggregate() (*domainlistings.Draft, error) {
	cfg, err := d.Pricing.toConfiguration()
	if err != nil {
		return nil, err
	}
	weekend, err := d.WeekendPrice.toMoney()
	if err != nil {
		return nil, err
	}
	return &domainlistings.Draft{
		ID:           domainlistings.DraftID(d.ID),
		Host:         domainlistings.HostID(d.HostID),
		Kind:         domainpricing.Kind(d.Kind),
		ListingID:    domainlistings.ListingID(d.ListingID),
		Step:         domainlistings.StepID(d.Step),
		Category:     d.Category,
		PropertyType: d.PropertyType,
		Location:     d.Location,
		Details:      d.Details,
		Amenities:    d.Amenities,
		Photos:       d.Photos,
		Title:        d.Title,
		Description:  d.Description,
		Itinerary:    d.Itinerary,
		Pricing:      cfg,
		WeekendPrice: weekend,
		Safety:       d.Safety,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
		Version:      d.Version,
	}, nil
}

func timestampToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
