package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/neonshoplabs/neonshop-backend/internal/products"
	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
	"github.com/neonshoplabs/neonshop-backend/pkg/types"
)

// OrderItemDTO is a checkout-time line snapshot.
type OrderItemDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int       `json:"unit_price_cents"`
	UnitPrice      string    `json:"unit_price"`
	LineTotalCents int       `json:"line_total_cents"`
	LineTotal      string    `json:"line_total"`
}

// OrderDTO is the API projection of an order.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	Number          string            `json:"number"`
	Status          enums.OrderStatus `json:"status"`
	SubtotalCents   int               `json:"subtotal_cents"`
	Subtotal        string            `json:"subtotal"`
	ShippingCents   int               `json:"shipping_cents"`
	Shipping        string            `json:"shipping"`
	TotalCents      int               `json:"total_cents"`
	Total           string            `json:"total"`
	Currency        enums.Currency    `json:"currency"`
	ShippingAddress types.Address     `json:"shipping_address"`
	Items           []OrderItemDTO    `json:"items"`
	ConfirmedAt     *time.Time        `json:"confirmed_at,omitempty"`
	CanceledAt      *time.Time        `json:"canceled_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// OrderPageDTO is a cursor-paginated order listing.
type OrderPageDTO struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
	Total      int64      `json:"total"`
}

// ListFilter narrows admin order listings.
type ListFilter struct {
	Status *enums.OrderStatus
	Cursor string
	Limit  int
}

// ToDTO converts an order model into its API projection.
func ToDTO(order *models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			UnitPrice:      products.FormatCents(item.UnitPriceCents),
			LineTotalCents: item.LineTotalCents,
			LineTotal:      products.FormatCents(item.LineTotalCents),
		})
	}
	return OrderDTO{
		ID:              order.ID,
		Number:          order.Number,
		Status:          order.Status,
		SubtotalCents:   order.SubtotalCents,
		Subtotal:        products.FormatCents(order.SubtotalCents),
		ShippingCents:   order.ShippingCents,
		Shipping:        products.FormatCents(order.ShippingCents),
		TotalCents:      order.TotalCents,
		Total:           products.FormatCents(order.TotalCents),
		Currency:        order.Currency,
		ShippingAddress: order.ShippingAddress,
		Items:           items,
		ConfirmedAt:     order.ConfirmedAt,
		CanceledAt:      order.CanceledAt,
		CreatedAt:       order.CreatedAt,
	}
}
