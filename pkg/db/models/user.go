package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mateovidal/routewave-backend/pkg/enums"
)

// User is a registered actor. The role is fixed at registration and never changes.
type User struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Email        string          `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Role         enums.ActorRole `gorm:"column:role;type:text;not null"`
	Phone        *string         `gorm:"column:phone"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
