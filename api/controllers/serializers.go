package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateovidal/routewave-backend/pkg/db/models"
	"github.com/mateovidal/routewave-backend/pkg/enums"
	"github.com/mateovidal/routewave-backend/pkg/types"
)

// UserView is the public shape of a user. The password hash never leaves
// the service layer.
type UserView struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      enums.ActorRole `json:"role"`
	Phone     *string         `json:"phone,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewUserView(user *models.User) UserView {
	return UserView{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
	}
}

type OrderItemView struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderView struct {
	ID                uuid.UUID           `json:"id"`
	OrderNumber       string              `json:"order_number"`
	VendorID          uuid.UUID           `json:"vendor_id"`
	CustomerID        uuid.UUID           `json:"customer_id"`
	DeliveryPartnerID *uuid.UUID          `json:"delivery_partner_id,omitempty"`
	Status            enums.OrderStatus   `json:"status"`
	PaymentStatus     enums.PaymentStatus `json:"payment_status"`
	PaymentMethod     enums.PaymentMethod `json:"payment_method"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	PickupAddress     types.Address       `json:"pickup_address"`
	DeliveryAddress   types.Address       `json:"delivery_address"`
	EstimatedDelivery *time.Time          `json:"estimated_delivery_at,omitempty"`
	ActualDelivery    *time.Time          `json:"actual_delivery_at,omitempty"`
	Items             []OrderItemView     `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func NewOrderView(order *models.Order) OrderView {
	items := make([]OrderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemView{
			ID:        item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return OrderView{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		VendorID:          order.VendorID,
		CustomerID:        order.CustomerID,
		DeliveryPartnerID: order.DeliveryPartnerID,
		Status:            order.Status,
		PaymentStatus:     order.PaymentStatus,
		PaymentMethod:     order.PaymentMethod,
		TotalAmount:       order.TotalAmount,
		PickupAddress:     order.PickupAddress,
		DeliveryAddress:   order.DeliveryAddress,
		EstimatedDelivery: order.EstimatedDelivery,
		ActualDelivery:    order.ActualDelivery,
		Items:             items,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

func NewOrderViews(orders []models.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, NewOrderView(&orders[i]))
	}
	return views
}

type LocationView struct {
	OrderID           uuid.UUID `json:"order_id"`
	DeliveryPartnerID uuid.UUID `json:"delivery_partner_id"`
	Lat               float64   `json:"lat"`
	Lng               float64   `json:"lng"`
	Timestamp         time.Time `json:"timestamp"`
}

func NewLocationView(sample *models.LocationSample) LocationView {
	return LocationView{
		OrderID:           sample.OrderID,
		DeliveryPartnerID: sample.DeliveryPartnerID,
		Lat:               sample.Lat,
		Lng:               sample.Lng,
		Timestamp:         sample.Timestamp,
	}
}

func NewLocationViews(samples []models.LocationSample) []LocationView {
	views := make([]LocationView, 0, len(samples))
	for i := range samples {
		views = append(views, NewLocationView(&samples[i]))
	}
	return views
}
