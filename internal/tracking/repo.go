package tracking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mateovidal/routewave-backend/pkg/db/models"
)

// Repository persists location samples. The table is append-only; there is no
// update or delete path.
type Repository interface {
	Append(ctx context.Context, sample *models.LocationSample) error
	LatestByOrder(ctx context.Context, orderID uuid.UUID) (*models.LocationSample, error)
	HistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]models.LocationSample, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a tracking repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Append(ctx context.Context, sample *models.LocationSample) error {
	return r.db.WithContext(ctx).Create(sample).Error
}

func (r *repository) LatestByOrder(ctx context.Context, orderID uuid.UUID) (*models.LocationSample, error) {
	var sample models.LocationSample
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("timestamp DESC").
		First(&sample).Error
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

func (r *repository) HistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]models.LocationSample, error) {
	var samples []models.LocationSample
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("timestamp ASC").
		Find(&samples).Error
	if err != nil {
		return nil, err
	}
	return samples, nil
}
