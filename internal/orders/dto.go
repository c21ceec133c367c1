package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateovidal/routewave-backend/pkg/enums"
	"github.com/mateovidal/routewave-backend/pkg/types"
)

// CreateItemInput is one ordered line on a new order.
type CreateItemInput struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreateOrderInput captures everything a vendor submits to open an order.
type CreateOrderInput struct {
	VendorID          uuid.UUID
	CustomerID        uuid.UUID
	Items             []CreateItemInput
	TotalAmount       decimal.Decimal
	PaymentMethod     enums.PaymentMethod
	PickupAddress     types.Address
	DeliveryAddress   types.Address
	EstimatedDelivery *time.Time
}

// AssignInput captures a vendor handing an accepted order to a courier.
type AssignInput struct {
	OrderID           uuid.UUID
	DeliveryPartnerID uuid.UUID
	ActorID           uuid.UUID
	ActorRole         enums.ActorRole
}

// UpdateStatusInput captures a requested status transition.
type UpdateStatusInput struct {
	OrderID   uuid.UUID
	Target    enums.OrderStatus
	ActorID   uuid.UUID
	ActorRole enums.ActorRole
}
