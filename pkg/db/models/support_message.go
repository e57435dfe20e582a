package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
)

// SupportMessage is a storefront contact-form submission. UserID is nil when
// the sender was not signed in.
type SupportMessage struct {
	ID         uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     *uuid.UUID          `gorm:"column:user_id;type:uuid;index"`
	Email      string              `gorm:"column:email;not null"`
	Name       string              `gorm:"column:name;not null"`
	Subject    string              `gorm:"column:subject;not null"`
	Body       string              `gorm:"column:body;not null"`
	Status     enums.SupportStatus `gorm:"column:status;type:text;not null;default:'open'"`
	ResolvedAt *time.Time          `gorm:"column:resolved_at"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
