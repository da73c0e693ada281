// Package tripstats maintains the completed-trip counts that membership
// tiers are resolved from.
package tripstats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

const completedType = "booking.completed.v1"

// Inbox deduplicates redelivered events.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// Recorder applies one completed trip to the projection.
type Recorder interface {
	RecordCompletedTrip(ctx context.Context, guestID string, at time.Time) error
}

var ErrMalformedEvent = errors.New("tripstats: malformed event")

// Projector consumes booking CloudEvents and counts completed trips per guest.
type Projector struct {
	Inbox  Inbox
	Stats  Recorder
	Logger *slog.Logger
}

type envelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type completedData struct {
	BookingID string    `json:"booking_id"`
	GuestID   string    `json:"guest_id"`
	At        time.Time `json:"at"`
}

// Handle ignores event types other than booking.completed. Malformed
// messages are logged and acknowledged so they do not block the partition.
func (p *Projector) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt envelope
	if err := json.Unmarshal(msg.Value, &evt); err != nil || evt.ID == "" {
		p.logger().Warn("tripstats: dropping malformed message", "topic", msg.Topic, "offset", msg.Offset)
		return nil
	}
	if evt.Type != completedType {
		return nil
	}
	var data completedData
	if err := json.Unmarshal(evt.Data, &data); err != nil || data.GuestID == "" {
		p.logger().Warn("tripstats: dropping event without guest", "event_id", evt.ID)
		return nil
	}
	return p.apply(ctx, evt.ID, data)
}

func (p *Projector) apply(ctx context.Context, eventID string, data completedData) error {
	seen, err := p.Inbox.Seen(ctx, eventID)
	if err != nil {
		return fmt.Errorf("tripstats: inbox: %w", err)
	}
	if seen {
		p.logger().Debug("tripstats: duplicate event", "event_id", eventID)
		return nil
	}
	if err := p.Stats.RecordCompletedTrip(ctx, data.GuestID, data.At); err != nil {
		if releaseErr := p.Inbox.Release(ctx, eventID); releaseErr != nil {
			p.logger().Error("tripstats: inbox release failed", "event_id", eventID, "error", releaseErr)
		}
		return fmt.Errorf("tripstats: record trip: %w", err)
	}
	p.logger().Info("completed trip recorded", "guest_id", data.GuestID, "booking_id", data.BookingID)
	return nil
}

func (p *Projector) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
