package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/routewave-backend/internal/realtime"
	"github.com/mateovidal/routewave-backend/pkg/clock"
	"github.com/mateovidal/routewave-backend/pkg/db/models"
	"github.com/mateovidal/routewave-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/routewave-backend/pkg/errors"
)

type orderLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// Service ingests courier positions and serves tracking reads. Writes are
// last-write-wins on the live view; the full history stays queryable.
type Service interface {
	realtime.LocationSink
	Report(ctx context.Context, orderID, partnerID uuid.UUID, lat, lng float64, at time.Time) (*models.LocationSample, error)
	Latest(ctx context.Context, orderID, actorID uuid.UUID, role enums.ActorRole) (*models.LocationSample, error)
	History(ctx context.Context, orderID, actorID uuid.UUID, role enums.ActorRole) ([]models.LocationSample, error)
}

type service struct {
	repo   Repository
	orders orderLoader
	bus    realtime.Bus
	clock  clock.Clock
}

// NewService builds the tracking service.
func NewService(repo Repository, orders orderLoader, bus realtime.Bus, clk clock.Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tracking repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	if bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock required")
	}
	return &service{repo: repo, orders: orders, bus: bus, clock: clk}, nil
}

// Ingest satisfies the realtime sink contract. It shares the exact pipeline
// with the REST path so both entry points enforce identical rules.
func (s *service) Ingest(ctx context.Context, orderID, partnerID uuid.UUID, lat, lng float64, at time.Time) error {
	_, err := s.Report(ctx, orderID, partnerID, lat, lng, at)
	return err
}

func (s *service) Report(ctx context.Context, orderID, partnerID uuid.UUID, lat, lng float64, at time.Time) (*models.LocationSample, error) {
	if partnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if lat < -90 || lat > 90 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "latitude out of range").
			WithDetails(map[string]any{"lat": lat})
	}
	if lng < -180 || lng > 180 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "longitude out of range").
			WithDetails(map[string]any{"lng": lng})
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.DeliveryPartnerID == nil || *order.DeliveryPartnerID != partnerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to this delivery partner")
	}

	if at.IsZero() {
		at = s.clock.Now()
	}

	sample := &models.LocationSample{
		OrderID:           orderID,
		DeliveryPartnerID: partnerID,
		Lat:               lat,
		Lng:               lng,
		Timestamp:         at,
	}
	if err := s.repo.Append(ctx, sample); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append location sample")
	}

	evt := realtime.NewLocationUpdated(orderID, lat, lng, at)
	s.bus.Publish(ctx, realtime.LocationTargets(order), evt)
	return sample, nil
}

func (s *service) Latest(ctx context.Context, orderID, actorID uuid.UUID, role enums.ActorRole) (*models.LocationSample, error) {
	if _, err := s.authorizeRead(ctx, orderID, actorID, role); err != nil {
		return nil, err
	}

	sample, err := s.repo.LatestByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no location reported yet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest location")
	}
	return sample, nil
}

func (s *service) History(ctx context.Context, orderID, actorID uuid.UUID, role enums.ActorRole) ([]models.LocationSample, error) {
	if _, err := s.authorizeRead(ctx, orderID, actorID, role); err != nil {
		return nil, err
	}

	samples, err := s.repo.HistoryByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location history")
	}
	return samples, nil
}

func (s *service) authorizeRead(ctx context.Context, orderID, actorID uuid.UUID, role enums.ActorRole) (*models.Order, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.orders.FindByID(ctx, orderID)
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
