package models

import (
	"time"

	"github.com/google/uuid"
)

// LocationSample is an append-only position report from the assigned delivery
// partner. Samples are never updated or deleted.
type LocationSample struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID `gorm:"column:order_id;type:uuid;not null;index:idx_location_samples_order_ts"`
	DeliveryPartnerID uuid.UUID `gorm:"column:delivery_partner_id;type:uuid;not null"`
	Lat               float64   `gorm:"column:lat;not null"`
	Lng               float64   `gorm:"column:lng;not null"`
	Timestamp         time.Time `gorm:"column:timestamp;not null;index:idx_location_samples_order_ts"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}
