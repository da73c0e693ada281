package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TripStats is the per-guest completed trip projection fed by booking events.
type TripStats struct {
	col *mongo.Collection
}

func NewTripStats(db *mongo.Database) *TripStats {
	return &TripStats{col: db.Collection("proj_guest_trips")}
}

func (s *TripStats) RecordCompletedTrip(ctx context.Context, guestID string, at time.Time) error {
	update := bson.M{
		"$inc": bson.M{"trips": 1},
		"$max": bson.M{"last_trip_at": at.UTC()},
	}
	_, err := s.col.UpdateByID(ctx, guestID, update, options.Update().SetUpsert(true))
	return err
}

func (s *TripStats) CompletedTrips(ctx context.Context, guestID string) (int, error) {
	var doc struct {
		Trips int `bson:"trips"`
	}
	if err := s.col.FindOne(ctx, bson.M{"_id": guestID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return doc.Trips, nil
}
