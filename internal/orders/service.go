package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
	pkgerrors "github.com/neonshoplabs/neonshop-backend/pkg/errors"
	"github.com/neonshoplabs/neonshop-backend/pkg/logger"
	"github.com/neonshoplabs/neonshop-backend/pkg/types"
)

const (
	flatShippingCents          = 500
	freeShippingThresholdCents = 5000
)

type cartSource interface {
	GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	ClearItems(ctx context.Context, cartID uuid.UUID) error
}

type productSource interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes checkout and order management.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, address types.Address) (OrderDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) (OrderPageDTO, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (OrderDTO, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (OrderDTO, error)
	AdminList(ctx context.Context, filter ListFilter) (OrderPageDTO, error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (OrderDTO, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (OrderDTO, error)
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo     OrdersRepository
	Carts    cartSource
	Products productSource
	Tx       txRunner
	Logger   *logger.Logger
}

type service struct {
	repo     OrdersRepository
	carts    cartSource
	products productSource
	tx       txRunner
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repo is required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart source is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product source is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{
		repo:     params.Repo,
		carts:    params.Carts,
		products: params.Products,
		tx:       params.Tx,
		logg:     params.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Checkout converts the user's active cart into a confirmed order. Line items
// snapshot the product name and current price, stock is decremented inside
// the same transaction, and the cart is emptied once the order is committed.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, address types.Address) (OrderDTO, error) {
	if userID == uuid.Nil {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if field, ok := address.Validate(); !ok {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("shipping address %s is required", field))
	}

	record, err := s.carts.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(record.Items) == 0 {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	productIDs := make([]uuid.UUID, 0, len(record.Items))
	for _, item := range record.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	loaded, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(loaded))
	for i := range loaded {
		byID[loaded[i].ID] = &loaded[i]
	}

	now := s.now()
	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(record.Items))
	for _, line := range record.Items {
		product, ok := byID[line.ProductID]
		if !ok || product.Status != enums.ProductStatusActive {
			return OrderDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("product %s is no longer available", line.ProductID))
		}
		lineTotal := decimal.NewFromInt(int64(product.PriceCents)).Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, models.OrderItem{
			ProductID:      line.ProductID,
			ProductName:    product.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: product.PriceCents,
			LineTotalCents: int(lineTotal.IntPart()),
		})
	}

	subtotalCents := int(subtotal.IntPart())
	shippingCents := flatShippingCents
	if subtotalCents >= freeShippingThresholdCents {
		shippingCents = 0
	}
	totalCents := int(subtotal.Add(decimal.NewFromInt(int64(shippingCents))).IntPart())

	order := &models.Order{
		Number:          newOrderNumber(now),
		UserID:          userID,
		Status:          enums.OrderStatusConfirmed,
		SubtotalCents:   subtotalCents,
		ShippingCents:   shippingCents,
		TotalCents:      totalCents,
		Currency:        enums.CurrencyUSD,
		ShippingAddress: address,
		Items:           items,
		ConfirmedAt:     &now,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for _, line := range record.Items {
			if err := s.products.DecrementStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("insufficient stock for product %s", line.ProductID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
		}
		return s.repo.Create(ctx, tx, order)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return OrderDTO{}, err
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	// The order exists at this point. A failed cart clear is recoverable and
	// must not surface as a checkout failure.
	if err := s.carts.ClearItems(ctx, record.ID); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("cart clear after checkout failed for order %s: %v", order.Number, err))
	}

	return ToDTO(order), nil
}

// ListForUser returns the user's order history.
func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) (OrderPageDTO, error) {
	if userID == uuid.Nil {
		return OrderPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	entries, nextCursor, total, err := s.repo.ListByUser(ctx, userID, cursor, limit)
	if err != nil {
		return OrderPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toPage(entries, nextCursor, total), nil
}

// GetForUser returns a single order owned by the user.
func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (OrderDTO, error) {
	order, err := s.repo.FindByIDForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return ToDTO(order), nil
}

// Cancel lets a customer cancel their own order while the state machine
// still allows it.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (OrderDTO, error) {
	order, err := s.repo.FindByIDForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return s.transition(ctx, order, enums.OrderStatusCanceled)
}

// AdminList returns orders across all customers.
func (s *service) AdminList(ctx context.Context, filter ListFilter) (OrderPageDTO, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return OrderPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}
	entries, nextCursor, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return OrderPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toPage(entries, nextCursor, total), nil
}

// AdminGet returns any order by ID.
func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return ToDTO(order), nil
}

// AdminUpdateStatus advances an order along the status state machine.
func (s *service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (OrderDTO, error) {
	if !next.IsValid() {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return s.transition(ctx, order, next)
}

func (s *service) transition(ctx context.Context, order *models.Order, next enums.OrderStatus) (OrderDTO, error) {
	if !order.Status.CanTransitionTo(next) {
		return OrderDTO{}, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot move from %s to %s", order.Status, next),
		)
	}

	now := s.now()
	var confirmedAt, canceledAt *time.Time
	switch next {
	case enums.OrderStatusConfirmed:
		confirmedAt = &now
	case enums.OrderStatusCanceled:
		canceledAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, next, confirmedAt, canceledAt); err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	order.Status = next
	if confirmedAt != nil {
		order.ConfirmedAt = confirmedAt
	}
	if canceledAt != nil {
		order.CanceledAt = canceledAt
	}
	return ToDTO(order), nil
}

func toPage(entries []models.Order, nextCursor string, total int64) OrderPageDTO {
	page := OrderPageDTO{
		Orders:     make([]OrderDTO, 0, len(entries)),
		NextCursor: nextCursor,
		Total:      total,
	}
	for i := range entries {
		page.Orders = append(page.Orders, ToDTO(&entries[i]))
	}
	return page
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("NS-%s-%s", now.Format("20060102"), suffix)
}
