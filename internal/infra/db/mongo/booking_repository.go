package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staypricing/internal/domain/booking"
	domainpricing "staypricing/internal/domain/pricing"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

// saveVersioned upserts doc only if the stored version still equals current.
// build receives the next version and returns the document to write.
func saveVersioned(ctx context.Context, col *mongo.Collection, id string, current int64, build func(next int64) any) (int64, error) {
	next := current + 1
	filter := bson.M{"_id": id, "version": current}
	res, err := col.UpdateOne(ctx, filter, bson.M{"$set": build(next)}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return current, ErrConcurrentUpdate
		}
		return current, err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return current, ErrConcurrentUpdate
	}
	return next, nil
}

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	next, err := saveVersioned(ctx, r.col, doc.ID, b.Version, func(version int64) any {
		doc.Version = version
		return doc
	})
	if err != nil {
		return err
	}
	b.Version = next
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"guest_id": guestID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		b, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, cur.Err()
}

// CompletedTrips counts the guest's completed bookings.
func (r *BookingRepository) CompletedTrips(ctx context.Context, guestID string) (int, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"guest_id": guestID, "state": string(domainbooking.StateCompleted)})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

type bookingDocument struct {
	ID        string            `bson:"_id"`
	QuoteID   string            `bson:"quote_id"`
	ListingID string            `bson:"listing_id"`
	GuestID   string            `bson:"guest_id"`
	Kind      string            `bson:"kind"`
	Params    paramsDocument    `bson:"params"`
	Breakdown breakdownDocument `bson:"breakdown"`
	State     string            `bson:"state"`
	Reason    string            `bson:"reason,omitempty"`
	CreatedAt int64             `bson:"created_at"`
	UpdatedAt int64             `bson:"updated_at"`
	Version   int64             `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:        string(b.ID),
		QuoteID:   b.QuoteID,
		ListingID: b.ListingID,
		GuestID:   b.GuestID,
		Kind:      string(b.Kind),
		Params:    newParamsDocument(b.Params),
		Breakdown: newBreakdownDocument(b.Breakdown),
		State:     string(b.State),
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
		Version:   b.Version,
	}
}

func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	breakdown, err := d.Breakdown.toBreakdown()
	if err != nil {
		return nil, err
	}
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		QuoteID:   d.QuoteID,
		ListingID: d.ListingID,
		GuestID:   d.GuestID,
		Kind:      domainpricing.Kind(d.Kind),
		Params:    d.Params.toParams(),
		Breakdown: breakdown,
		State:     domainbooking.BookingState(d.State),
		Reason:    d.Reason,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}, nil
}
