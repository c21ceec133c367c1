package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/routewave-backend/pkg/enums"
)

// Server-issued event names. Payload field names are camelCase: they are the
// wire protocol the web clients already speak, independent of the REST API's
// snake_case envelopes.
const (
	EventStatusUpdated   = "order:status_updated"
	EventLocationUpdated = "location:updated"
)

// Client-issued event names.
const (
	EventJoin           = "order:join"
	EventLeave          = "order:leave"
	EventLocationUpdate = "location:update"
)

// Event is a single fan-out message published to one or more channels.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// StatusUpdatedPayload notifies subscribers of a committed status transition.
type StatusUpdatedPayload struct {
	OrderID   uuid.UUID         `json:"orderId"`
	Status    enums.OrderStatus `json:"status"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// LocationUpdatedPayload notifies subscribers of a new courier position.
type LocationUpdatedPayload struct {
	OrderID   uuid.UUID `json:"orderId"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// NewStatusUpdated builds the status broadcast event.
func NewStatusUpdated(orderID uuid.UUID, status enums.OrderStatus, updatedAt time.Time) Event {
	return Event{
		Name: EventStatusUpdated,
		Data: StatusUpdatedPayload{
			OrderID:   orderID,
			Status:    status,
			UpdatedAt: updatedAt,
		},
	}
}

// NewLocationUpdated builds the location broadcast event.
func NewLocationUpdated(orderID uuid.UUID, lat, lng float64, timestamp time.Time) Event {
	return Event{
		Name: EventLocationUpdated,
		Data: LocationUpdatedPayload{
			OrderID:   orderID,
			Lat:       lat,
			Lng:       lng,
			Timestamp: timestamp,
		},
	}
}
