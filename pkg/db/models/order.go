package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
	"github.com/neonshoplabs/neonshop-backend/pkg/types"
)

// Order is a confirmed checkout snapshot. Line items copy the product name
// and unit price at confirmation time so later catalog edits do not rewrite
// history.
type Order struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Number          string            `gorm:"column:number;type:text;not null;uniqueIndex"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	SubtotalCents   int               `gorm:"column:subtotal_cents;not null"`
	ShippingCents   int               `gorm:"column:shipping_cents;not null;default:0"`
	TotalCents      int               `gorm:"column:total_cents;not null"`
	Currency        enums.Currency    `gorm:"column:currency;type:text;not null;default:'USD'"`
	ShippingAddress types.Address     `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID"`
	ConfirmedAt     *time.Time        `gorm:"column:confirmed_at"`
	CanceledAt      *time.Time        `gorm:"column:canceled_at"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
