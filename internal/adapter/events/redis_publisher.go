package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/farhn21/tripshare/internal/core/domain"
)

const DefaultChannel = "tripshare.events"

// RedisPublisher hands domain events to the external notifier over a Redis
// pub/sub channel. Emission is best effort: a publish failure is logged and
// never fails the business operation that produced the event.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

type payload struct {
	Type          string    `json:"type"`
	TripID        string    `json:"trip_id"`
	ReservationID string    `json:"reservation_id,omitempty"`
	OwnerID       string    `json:"owner_id,omitempty"`
	PassengerID   string    `json:"passenger_id,omitempty"`
	OldStatus     string    `json:"old_status,omitempty"`
	NewStatus     string    `json:"new_status,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (p *RedisPublisher) Emit(ctx context.Context, ev domain.Event) {
	body := payload{
		Type:          string(ev.Type),
		TripID:        ev.TripID.String(),
		ReservationID: uuidOrEmpty(ev.ReservationID),
		OwnerID:       uuidOrEmpty(ev.OwnerID),
		PassengerID:   uuidOrEmpty(ev.PassengerID),
		OldStatus:     ev.OldStatus,
		NewStatus:     ev.NewStatus,
		Reason:        ev.Reason,
		OccurredAt:    ev.OccurredAt,
	}

	b, err := json.Marshal(body)
	if err != nil {
		log.Printf("events: marshal %s: %v", ev.Type, err)
		return
	}

	if err := p.client.Publish(ctx, p.channel, b).Err(); err != nil {
		log.Printf("events: publish %s: %v", ev.Type, err)
	}
}

func uuidOrEmpty(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
