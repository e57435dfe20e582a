package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/neonshoplabs/neonshop-backend/internal/products"
	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
)

// CartItemDTO is one line of the authenticated cart.
type CartItemDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int       `json:"unit_price_cents"`
	UnitPrice      string    `json:"unit_price"`
	LineTotalCents int       `json:"line_total_cents"`
	LineTotal      string    `json:"line_total"`
	AddedAt        time.Time `json:"added_at"`
}

// CartDTO is the authenticated cart projection.
type CartDTO struct {
	ID            uuid.UUID     `json:"id"`
	Items         []CartItemDTO `json:"items"`
	Count         int           `json:"count"`
	SubtotalCents int           `json:"subtotal_cents"`
	Subtotal      string        `json:"subtotal"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func toCartDTO(record *models.CartRecord, names map[uuid.UUID]string) CartDTO {
	dto := CartDTO{
		ID:        record.ID,
		Items:     make([]CartItemDTO, 0, len(record.Items)),
		UpdatedAt: record.UpdatedAt,
	}
	for _, item := range record.Items {
		line := item.Quantity * item.UnitPriceCents
		dto.Items = append(dto.Items, CartItemDTO{
			ProductID:      item.ProductID,
			ProductName:    names[item.ProductID],
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			UnitPrice:      products.FormatCents(item.UnitPriceCents),
			LineTotalCents: line,
			LineTotal:      products.FormatCents(line),
			AddedAt:        item.AddedAt,
		})
		dto.Count += item.Quantity
		dto.SubtotalCents += line
	}
	dto.Subtotal = products.FormatCents(dto.SubtotalCents)
	return dto
}
