package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
)

// ProductDTO is the storefront projection of a catalog product.
type ProductDTO struct {
	ID                  uuid.UUID           `json:"id"`
	SKU                 string              `json:"sku"`
	Name                string              `json:"name"`
	Slug                string              `json:"slug"`
	Description         *string             `json:"description,omitempty"`
	CategoryID          uuid.UUID           `json:"category_id"`
	PriceCents          int                 `json:"price_cents"`
	Price               string              `json:"price"`
	CompareAtPriceCents *int                `json:"compare_at_price_cents,omitempty"`
	CompareAtPrice      *string             `json:"compare_at_price,omitempty"`
	Currency            enums.Currency      `json:"currency"`
	Stock               int                 `json:"stock"`
	InStock             bool                `json:"in_stock"`
	Status              enums.ProductStatus `json:"status"`
	Tags                []string            `json:"tags"`
	ImageURL            *string             `json:"image_url,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// ToDTO converts a product model to its storefront projection.
func ToDTO(product *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:                  product.ID,
		SKU:                 product.SKU,
		Name:                product.Name,
		Slug:                product.Slug,
		Description:         product.Description,
		CategoryID:          product.CategoryID,
		PriceCents:          product.PriceCents,
		Price:               FormatCents(product.PriceCents),
		CompareAtPriceCents: product.CompareAtPriceCents,
		Currency:            product.Currency,
		Stock:               product.Stock,
		InStock:             product.Stock > 0,
		Status:              product.Status,
		Tags:                product.Tags,
		ImageURL:            product.ImageURL,
		CreatedAt:           product.CreatedAt,
		UpdatedAt:           product.UpdatedAt,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	if product.CompareAtPriceCents != nil {
		display := FormatCents(*product.CompareAtPriceCents)
		dto.CompareAtPrice = &display
	}
	return dto
}

// FormatCents renders a cent amount as a decimal string with two places.
func FormatCents(cents int) string {
	return decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// ProductPageDTO is a cursor-paginated catalog slice.
type ProductPageDTO struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
	Total      int64        `json:"total"`
}

// ListFilter narrows the catalog browse query.
type ListFilter struct {
	CategoryID *uuid.UUID
	Status     *enums.ProductStatus
	Search     string
	Cursor     string
	Limit      int
}

// CreateProductInput is the admin payload for a new product.
type CreateProductInput struct {
	SKU                 string
	Name                string
	Slug                string
	Description         *string
	CategoryID          uuid.UUID
	PriceCents          int
	CompareAtPriceCents *int
	Currency            enums.Currency
	Stock               int
	Status              enums.ProductStatus
	Tags                []string
	ImageURL            *string
}

// UpdateProductInput carries partial updates; nil fields are left untouched.
type UpdateProductInput struct {
	Name                *string
	Slug                *string
	Description         *string
	CategoryID          *uuid.UUID
	PriceCents          *int
	CompareAtPriceCents *int
	Currency            *enums.Currency
	Stock               *int
	Status              *enums.ProductStatus
	Tags                []string
	ImageURL            *string
}
