package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/farhn21/tripshare/internal/core/domain"
)

func TestRedisPublisherEmit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	pub := NewRedisPublisher(client, "tripshare.events")

	occurredAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ev := domain.Event{
		Type:          domain.EventReservationConfirmed,
		TripID:        uuid.MustParse("6b1e4a1e-0c2f-4a86-9f6e-3d1f7f9be001"),
		ReservationID: uuid.MustParse("6b1e4a1e-0c2f-4a86-9f6e-3d1f7f9be002"),
		OwnerID:       uuid.MustParse("6b1e4a1e-0c2f-4a86-9f6e-3d1f7f9be003"),
		PassengerID:   uuid.MustParse("6b1e4a1e-0c2f-4a86-9f6e-3d1f7f9be004"),
		OccurredAt:    occurredAt,
	}

	expected, err := json.Marshal(payload{
		Type:          string(ev.Type),
		TripID:        ev.TripID.String(),
		ReservationID: ev.ReservationID.String(),
		OwnerID:       ev.OwnerID.String(),
		PassengerID:   ev.PassengerID.String(),
		OccurredAt:    occurredAt,
	})
	require.NoError(t, err)

	mock.ExpectPublish("tripshare.events", expected).SetVal(1)

	pub.Emit(context.Background(), ev)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPublisherDefaultChannel(t *testing.T) {
	client, mock := redismock.NewClientMock()
	pub := NewRedisPublisher(client, "")

	ev := domain.Event{
		Type:       domain.EventTripStatusChanged,
		TripID:     uuid.MustParse("6b1e4a1e-0c2f-4a86-9f6e-3d1f7f9be005"),
		OldStatus:  string(domain.TripOpen),
		NewStatus:  string(domain.TripFull),
		OccurredAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	expected, err := json.Marshal(payload{
		Type:       string(ev.Type),
		TripID:     ev.TripID.String(),
		OldStatus:  ev.OldStatus,
		NewStatus:  ev.NewStatus,
		OccurredAt: ev.OccurredAt,
	})
	require.NoError(t, err)

	mock.ExpectPublish(DefaultChannel, expected).SetVal(1)

	pub.Emit(context.Background(), ev)

	require.NoError(t, mock.ExpectationsWereMet())
}
