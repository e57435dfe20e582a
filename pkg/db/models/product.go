package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
)

// Product is a sellable catalog entry. Prices are stored in cents.
type Product struct {
	ID                  uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SKU                 string              `gorm:"column:sku;type:text;not null;uniqueIndex"`
	Name                string              `gorm:"column:name;not null"`
	Slug                string              `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Description         *string             `gorm:"column:description"`
	CategoryID          uuid.UUID           `gorm:"column:category_id;type:uuid;not null;index"`
	PriceCents          int                 `gorm:"column:price_cents;not null"`
	CompareAtPriceCents *int                `gorm:"column:compare_at_price_cents"`
	Currency            enums.Currency      `gorm:"column:currency;type:text;not null;default:'USD'"`
	Stock               int                 `gorm:"column:stock;not null;default:0"`
	Status              enums.ProductStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	Tags                pq.StringArray      `gorm:"column:tags;type:text[]"`
	ImageURL            *string             `gorm:"column:image_url"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
