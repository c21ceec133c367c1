package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mateovidal/routewave-backend/api/responses"
	"github.com/mateovidal/routewave-backend/api/validators"
	"github.com/mateovidal/routewave-backend/internal/orders"
	"github.com/mateovidal/routewave-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/routewave-backend/pkg/errors"
	"github.com/mateovidal/routewave-backend/pkg/logger"
	"github.com/mateovidal/routewave-backend/pkg/types"
)

type orderItemRequest struct {
	Name      string          `json:"name" validate:"required,max=200"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

type createOrderRequest struct {
	CustomerID        uuid.UUID          `json:"customer_id" validate:"required"`
	Items             []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalAmount       decimal.Decimal    `json:"total_amount" validate:"required"`
	PaymentMethod     string             `json:"payment_method" validate:"required,oneof=cash card online"`
	PickupAddress     types.Address      `json:"pickup_address" validate:"required"`
	DeliveryAddress   types.Address      `json:"delivery_address" validate:"required"`
	EstimatedDelivery *time.Time         `json:"estimated_delivery_at"`
}

type assignOrderRequest struct {
	DeliveryPartnerID uuid.UUID `json:"delivery_partner_id" validate:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateOrder opens a new order on behalf of the calling vendor.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(body.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method"))
			return
		}

		items := make([]orders.CreateItemInput, 0, len(body.Items))
		for _, item := range body.Items {
			items = append(items, orders.CreateItemInput{
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}

		order, err := svc.Create(r.Context(), orders.CreateOrderInput{
			VendorID:          vendorID,
			CustomerID:        body.CustomerID,
			Items:             items,
			TotalAmount:       body.TotalAmount,
			PaymentMethod:     method,
			PickupAddress:     body.PickupAddress,
			DeliveryAddress:   body.DeliveryAddress,
			EstimatedDelivery: body.EstimatedDelivery,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, NewOrderView(order))
	}
}

// ListOrders returns the caller's orders scoped by their role.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForActor(r.Context(), actorID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, NewOrderViews(list))
	}
}

// GetOrder returns a single order the caller participates in.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID, actorID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, NewOrderView(order))
	}
}

// AssignOrder hands an accepted order to a delivery partner.
func AssignOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body assignOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Assign(r.Context(), orders.AssignInput{
			OrderID:           orderID,
			DeliveryPartnerID: body.DeliveryPartnerID,
			ActorID:           actorID,
			ActorRole:         role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, NewOrderView(order))
	}
}

// UpdateOrderStatus moves an order along its lifecycle.
func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, role, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orders.UpdateStatusInput{
			OrderID:   orderID,
			Target:    target,
			ActorID:   actorID,
			ActorRole: role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, NewOrderView(order))
	}
}
