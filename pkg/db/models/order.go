package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateovidal/routewave-backend/pkg/enums"
	"github.com/mateovidal/routewave-backend/pkg/types"
)

// Order is the central delivery order record. Rows are never deleted;
// terminal orders stay around for history queries.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber       string              `gorm:"column:order_number;not null;uniqueIndex"`
	VendorID          uuid.UUID           `gorm:"column:vendor_id;type:uuid;not null;index"`
	CustomerID        uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	DeliveryPartnerID *uuid.UUID          `gorm:"column:delivery_partner_id;type:uuid;index"`
	Status            enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'cash'"`
	TotalAmount       decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PickupAddress     types.Address       `gorm:"column:pickup_address;type:jsonb;serializer:json"`
	DeliveryAddress   types.Address       `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	EstimatedDelivery *time.Time          `gorm:"column:estimated_delivery_at"`
	ActualDelivery    *time.Time          `gorm:"column:actual_delivery_at"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// IsOwnedBy reports whether the given user is the order's vendor, customer,
// or assigned delivery partner.
func (o Order) IsOwnedBy(userID uuid.UUID) bool {
	if o.VendorID == userID || o.CustomerID == userID {
		return true
	}
	return o.DeliveryPartnerID != nil && *o.DeliveryPartnerID == userID
}
