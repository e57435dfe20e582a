package models

import (
	"time"

	"github.com/google/uuid"
)

// CartRecord is the authoritative server-side cart for an authenticated user.
// One record per user; the guest cart lives in Redis until merge-on-login.
type CartRecord struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     []CartItem `gorm:"foreignKey:CartID"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
