package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/routewave-backend/internal/realtime"
	"github.com/mateovidal/routewave-backend/pkg/clock"
	"github.com/mateovidal/routewave-backend/pkg/db/models"
	"github.com/mateovidal/routewave-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/routewave-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service owns the order lifecycle: creation, assignment, and status
// transitions. Every successful mutation is committed before its broadcast
// fires; a failed commit never reaches the bus.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Assign(ctx context.Context, input AssignInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	Get(ctx context.Context, orderID, actorID uuid.UUID, role enums.ActorRole) (*models.Order, error)
	ListForActor(ctx context.Context, actorID uuid.UUID, role enums.ActorRole) ([]models.Order, error)
}

type service struct {
	repo    Repository
	users   userDirectory
	tx      txRunner
	bus     realtime.Bus
	clock   clock.Clock
	numbers *NumberGenerator
}

// NewService builds the order service with its required dependencies.
func NewService(repo Repository, users userDirectory, tx txRunner, bus realtime.Bus, clk clock.Clock, numbers *NumberGenerator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user directory required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock required")
	}
	if numbers == nil {
		return nil, fmt.Errorf("number generator required")
	}
	return &service{
		repo:    repo,
		users:   users,
		tx:      tx,
		bus:     bus,
		clock:   clk,
		numbers: numbers,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for _, item := range input.Items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
		if item.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item unit price cannot be negative")
		}
	}
	if input.TotalAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total amount cannot be negative")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if !input.PickupAddress.Validate() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup address incomplete")
	}
	if !input.DeliveryAddress.Validate() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address incomplete")
	}

	customer, err := s.users.FindByID(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer.Role != enums.ActorRoleCustomer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id does not reference a customer account")
	}

	number, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate order number")
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, models.OrderItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order := &models.Order{
		OrderNumber:       number,
		VendorID:          input.VendorID,
		CustomerID:        input.CustomerID,
		Status:            enums.OrderStatusPending,
		PaymentStatus:     enums.PaymentStatusPending,
		PaymentMethod:     input.PaymentMethod,
		TotalAmount:       input.TotalAmount,
		PickupAddress:     input.PickupAddress,
		DeliveryAddress:   input.DeliveryAddress,
		EstimatedDelivery: input.EstimatedDelivery,
		Items:             items,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStatus(ctx, order)
	return order, nil
}

func (s *service) Assign(ctx context.Context, input AssignInput) (*models.Order, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.DeliveryPartnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery partner id required")
	}
	if input.ActorRole != enums.ActorRoleVendor {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only vendors assign delivery partners")
	}

	partner, err := s.users.FindByID(ctx, input.DeliveryPartnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery partner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery partner")
	}
	if partner.Role != enums.ActorRoleDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee does not hold the delivery role")
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err = repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.VendorID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
		}
		if order.DeliveryPartnerID != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already has a delivery partner")
		}
		if !TransitionAllowed(input.ActorRole, order.Status, enums.OrderStatusAssigned) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "assignment allowed only for accepted orders").
				WithDetails(map[string]any{"from": order.Status, "to": enums.OrderStatusAssigned})
		}

		now := s.clock.Now()
		updates := map[string]any{
			"delivery_partner_id": input.DeliveryPartnerID,
			"status":              enums.OrderStatusAssigned,
			"updated_at":          now,
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign delivery partner")
		}

		partnerID := input.DeliveryPartnerID
		order.DeliveryPartnerID = &partnerID
		order.Status = enums.OrderStatusAssigned
		order.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStatus(ctx, order)
	return order, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if input.Target == enums.OrderStatusAssigned {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the assign operation to set a delivery partner")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		switch input.ActorRole {
		case enums.ActorRoleVendor:
			if order.VendorID != input.ActorID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
			}
		case enums.ActorRoleDelivery:
			if order.DeliveryPartnerID == nil || *order.DeliveryPartnerID != input.ActorID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to this delivery partner")
			}
		default:
			return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot update order status")
		}

		if !TransitionAllowed(input.ActorRole, order.Status, input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
				WithDetails(map[string]any{"from": order.Status, "to": input.Target, "role": input.ActorRole})
		}

		now := s.clock.Now()
		updates := map[string]any{"status": input.Target, "updated_at": now}
		if input.Target == enums.OrderStatusDelivered && order.ActualDelivery == nil {
			updates["actual_delivery_at"] = now
			order.ActualDelivery = &now
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		order.Status = input.Target
		order.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStatus(ctx, order)
	return order, nil
}

func (s *service) Get(ctx context.Context, orderID, actorID uuid.UUID, role enums.ActorRole) (*models.Order, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if role != enums.ActorRoleAdmin && !order.IsOwnedBy(actorID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
	}
	return order, nil
}

func (s *service) ListForActor(ctx context.Context, actorID uuid.UUID, role enums.ActorRole) ([]models.Order, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var (
		orders []models.Order
		err    error
	)
	switch role {
	case enums.ActorRoleVendor:
		orders, err = s.repo.ListByVendor(ctx, actorID)
	case enums.ActorRoleDelivery:
		orders, err = s.repo.ListByDeliveryPartner(ctx, actorID)
	case enums.ActorRoleCustomer:
		orders, err = s.repo.ListByCustomer(ctx, actorID)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role has no order list")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// broadcastStatus notifies every interested channel of a committed status.
// It runs strictly after the transaction so subscribers only ever observe
// persisted facts; the event carries the row's committed updated_at.
func (s *service) broadcastStatus(ctx context.Context, order *models.Order) {
	evt := realtime.NewStatusUpdated(order.ID, order.Status, order.UpdatedAt)
	s.bus.Publish(ctx, realtime.StatusTargets(order), evt)
}
